package realtime

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// FetchFunc re-fetches one authoritative value from the backend and stores
// it. The poller never interprets the value; last write from the server wins.
type FetchFunc func(ctx context.Context) error

// Poller is the correctness net behind push delivery: a fixed-interval
// re-fetch that runs regardless of transport state. A fetch error leaves the
// consumer's last value untouched until the next successful tick.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc
	logger   *slog.Logger

	inFlight atomic.Bool
}

func NewPoller(name string, interval time.Duration, fetch FetchFunc, logger *slog.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		logger:   logger.With("component", "poller", "poller", name),
	}
}

// Run fetches once immediately, then on every tick until ctx is cancelled.
// Ticks that fire while a fetch is still in flight are skipped rather than
// stacked.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("previous fetch still in flight, skipping tick")
		return
	}

	go func() {
		defer p.inFlight.Store(false)
		if err := p.fetch(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("fetch failed, keeping stale value", "error", err)
		}
	}()
}
