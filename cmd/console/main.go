package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpAdapter "github.com/subops/console-realtime/internal/adapters/primary/http"
	mw "github.com/subops/console-realtime/internal/adapters/primary/http/middleware"
	"github.com/subops/console-realtime/internal/adapters/secondary/restapi"
	"github.com/subops/console-realtime/internal/auth"
	"github.com/subops/console-realtime/internal/cache"
	"github.com/subops/console-realtime/internal/config"
	"github.com/subops/console-realtime/internal/core/domain"
	"github.com/subops/console-realtime/internal/infrastructure/logging"
	"github.com/subops/console-realtime/internal/notify"
	"github.com/subops/console-realtime/internal/realtime"
	"github.com/subops/console-realtime/internal/ui"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting console realtime core",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"admin", cfg.App.Admin,
	)

	// 3. Inspect the pre-issued access token. The server is the authority
	// on validity; a stale token just gets a precise warning up front.
	inspector := auth.NewInspector()
	if info, err := inspector.Inspect(cfg.API.Token); err != nil {
		logger.Warn("access token is not a readable JWT", "error", err)
	} else if !info.Valid(time.Now()) {
		logger.Warn("access token looks expired, push handshake will likely fail",
			"subject", info.Subject,
			"expired_at", info.ExpiresAt,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Stores and cache
	queryCache := cache.NewStore(logger)
	toasts := ui.NewToastStore(cfg.Toast.Capacity, logger)
	modal := ui.NewModalStore(logger)

	// 5. REST boundary client
	apiClient := restapi.New(restapi.Config{
		BaseURL:           cfg.API.BaseURL,
		Token:             cfg.API.Token,
		RequestTimeout:    cfg.API.RequestTimeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	}, logger)

	// 6. Consumers
	refresher := notify.NewUserRefresher(queryCache, apiClient, logger)
	router := notify.NewRouter(queryCache, toasts, modal, refresher, logger)
	bell := notify.NewTicketBell(cfg.App.Admin, apiClient, queryCache, toasts, nil, logger)

	// 7. Bus, decoder, transport
	bus := realtime.NewBus(logger)
	decoder := realtime.NewDecoder(logger)

	unsubscribeRouter := router.Bind(bus)
	defer unsubscribeRouter()
	unsubscribeBell := bell.Bind(bus)
	defer unsubscribeBell()

	transport := realtime.NewTransport(realtime.TransportConfig{
		URL:              cfg.WebSocket.URL,
		Token:            cfg.API.Token,
		HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
		PingInterval:     cfg.WebSocket.PingInterval,
		PongWait:         cfg.WebSocket.PongWait,
		WriteWait:        cfg.WebSocket.WriteWait,
		InitialBackoff:   cfg.WebSocket.InitialBackoff,
		MaxBackoff:       cfg.WebSocket.MaxBackoff,
	}, func(ctx context.Context, frame []byte) {
		msg, err := decoder.Decode(frame)
		if err != nil {
			// Malformed frames stop here; consumers never see them.
			return
		}
		bus.Publish(ctx, msg)
	}, logger)

	transport.OnConnect(func() {
		logger.Info("push transport connected")
		// Catch up on anything missed while disconnected.
		if err := bell.Refresh(ctx); err != nil {
			logger.Warn("unread refresh after reconnect failed", "error", err)
		}
	})
	transport.OnDisconnect(func() {
		logger.Warn("push transport disconnected, degrading to polling")
	})

	// 8. Fallback poller for the unread counter
	poller := realtime.NewPoller("ticket-unread", cfg.Poll.Interval, bell.Refresh, logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := transport.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("transport stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()

	// 9. Ops HTTP endpoint
	statusHandler := httpAdapter.NewStatusHandler(transport, toasts, modal, bell, cfg.App.Version)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	if len(cfg.Ops.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Ops.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Accept", "Content-Type", mw.RequestIDHeader},
		}))
	}
	if cfg.Ops.RateLimitEnabled {
		limiter := mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.Ops.RateLimitRPS,
			BurstSize:         cfg.Ops.RateLimitBurst,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		r.Use(limiter.Middleware)
	}

	r.Get("/health", statusHandler.HandleReadiness)
	r.Get("/health/live", statusHandler.HandleLiveness)
	r.Get("/status", statusHandler.HandleStatus)
	r.Post("/notifications/read-all", statusHandler.HandleMarkAllRead)

	srv := &http.Server{
		Addr:         cfg.Ops.Port,
		Handler:      r,
		ReadTimeout:  cfg.Ops.ReadTimeout,
		WriteTimeout: cfg.Ops.WriteTimeout,
		IdleTimeout:  cfg.Ops.IdleTimeout,
	}

	go func() {
		logger.Info("ops endpoint starting", "port", cfg.Ops.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops endpoint error", "error", err)
			os.Exit(1)
		}
	}()

	// Optional: log every toast so a headless console still shows events.
	toasts.OnChange(func(visible []domain.Toast) {
		logger.Debug("toast list changed", "visible", len(visible))
	})

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	cancel()
	wg.Wait()
	toasts.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Ops.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops endpoint shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
