package realtime

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	apperrors "github.com/subops/console-realtime/internal/core/errors"
)

// Maximum message size allowed from the server. Pushed events are small
// JSON objects; anything larger is a protocol violation.
const maxMessageSize = 4096

// FrameSink receives each raw inbound frame. The transport calls it
// synchronously from its read loop, so one frame's processing completes
// before the next frame is read.
type FrameSink func(ctx context.Context, frame []byte)

// TransportConfig holds the push transport configuration.
type TransportConfig struct {
	URL   string
	Token string

	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration

	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Transport owns the single websocket connection to the backend. It dials,
// authenticates with the pre-issued bearer token, reads frames into the
// sink, and redials with capped exponential backoff on unexpected close.
// The only externally observable signal is the connected flag; individual
// retry attempts are not surfaced to consumers.
type Transport struct {
	cfg     TransportConfig
	onFrame FrameSink
	logger  *slog.Logger

	mu           sync.Mutex
	conn         *websocket.Conn
	connected    bool
	running      bool
	attempts     int // consecutive failed dials since the last open
	onConnect    []func()
	onDisconnect []func()
}

func NewTransport(cfg TransportConfig, onFrame FrameSink, logger *slog.Logger) *Transport {
	return &Transport{
		cfg:     cfg,
		onFrame: onFrame,
		logger:  logger.With("component", "transport"),
	}
}

// OnConnect registers a callback fired once per disconnected→connected
// transition. Register before Run.
func (t *Transport) OnConnect(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConnect = append(t.onConnect, fn)
}

// OnDisconnect registers a callback fired once per connected→disconnected
// transition. Register before Run.
func (t *Transport) OnDisconnect(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDisconnect = append(t.onDisconnect, fn)
}

// IsConnected reports whether the connection is currently open.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Attempts returns the number of consecutive failed dials since the last
// successful connect.
func (t *Transport) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Run dials and re-dials until ctx is cancelled. Backoff doubles per failed
// dial up to MaxBackoff, with ±20% jitter, and resets after a successful
// connect. Returns ctx.Err on cancellation or ErrAlreadyRunning if called
// twice.
func (t *Transport) Run(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return apperrors.ErrAlreadyRunning
	}
	t.running = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
	}()

	backoff := t.cfg.InitialBackoff
	for {
		conn, err := t.dial(ctx)
		switch {
		case err == nil:
			backoff = t.cfg.InitialBackoff
			t.session(ctx, conn)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			t.mu.Lock()
			t.attempts++
			attempt := t.attempts
			t.mu.Unlock()
			t.logger.Warn("dial failed",
				"error", err,
				"attempt", attempt,
				"retry_in", backoff,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(withJitter(backoff)):
		}

		backoff *= 2
		if backoff > t.cfg.MaxBackoff {
			backoff = t.cfg.MaxBackoff
		}
	}
}

func (t *Transport) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: t.cfg.HandshakeTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.cfg.Token)

	conn, _, err := dialer.DialContext(ctx, t.cfg.URL, header)
	return conn, err
}

// session runs one open connection to completion: marks the transport
// connected, pumps inbound frames into the sink, and keeps the connection
// alive with pings.
func (t *Transport) session(ctx context.Context, conn *websocket.Conn) {
	t.mu.Lock()
	t.conn = conn
	t.attempts = 0
	t.mu.Unlock()

	t.setConnected(true)
	defer t.setConnected(false)
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	defer close(done)
	go t.keepAlive(ctx, conn, done)

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(t.cfg.PongWait)); err != nil {
		t.logger.Error("failed to set read deadline", "error", err)
		return
	}

	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(t.cfg.PongWait)); err != nil {
			t.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	t.logger.Info("connected")

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				t.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		// Synchronous: the full fan-out for this frame completes before
		// the next inbound frame is read.
		t.onFrame(ctx, frame)
	}
}

// keepAlive sends periodic pings and closes the connection when ctx is
// cancelled so the read loop unblocks.
func (t *Transport) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(t.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			deadline := time.Now().Add(t.cfg.WriteWait)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = conn.Close()
			return
		case <-ticker.C:
			deadline := time.Now().Add(t.cfg.WriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				t.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// setConnected flips the connected flag and fires the transition callbacks.
// Edge-triggered: callbacks fire once per transition, never while the state
// is unchanged.
func (t *Transport) setConnected(on bool) {
	t.mu.Lock()
	if t.connected == on {
		t.mu.Unlock()
		return
	}
	t.connected = on

	var callbacks []func()
	if on {
		callbacks = append(callbacks, t.onConnect...)
	} else {
		callbacks = append(callbacks, t.onDisconnect...)
	}
	t.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func withJitter(d time.Duration) time.Duration {
	// ±20%
	factor := 1 + (rand.Float64()*0.4 - 0.2)
	return time.Duration(float64(d) * factor)
}
