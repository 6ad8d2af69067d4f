package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markussiebert/dnscope/internal/auth"
	"github.com/markussiebert/dnscope/internal/handler"
	"github.com/markussiebert/dnscope/internal/logger"
	"github.com/markussiebert/dnscope/internal/runner"
	"github.com/markussiebert/dnscope/internal/state"
)

// RunServer serves an authenticated endpoint that triggers runs, until SIGINT or SIGTERM.
// The state file stays open, and locked, for the lifetime of the server.
func RunServer(port int, config *Config, serverConfig *ServerConfig, userAgent string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, fmt.Sprintf(":%d", port), config, serverConfig, userAgent)
}

// serve runs the trigger endpoint on addr until ctx is done or the listener fails.
func serve(ctx context.Context, addr string, config *Config, serverConfig *ServerConfig, userAgent string) error {
	store, err := state.OpenBolt(config.StateFile)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	defer closeStore(store)

	p, err := newUpdater(ctx, config, userAgent)
	if err != nil {
		return err
	}

	r := runner.New(config.Runner(), newProber(config, store, userAgent), newResolver(config), p)

	server := &http.Server{
		Addr:         addr,
		Handler:      newMux(r, store, serverConfig),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: handler.DefaultRunTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting trigger endpoint on %s (HTTP, no TLS)", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		logger.Error("Server error: %v", serveErr)
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.Close(shutdownCtx); err != nil {
		logger.Warn("Error closing provider: %v", err)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return serveErr
}

func newMux(r handler.Runner, store handler.StateReader, serverConfig *ServerConfig) *http.ServeMux {
	trigger := handler.NewTriggerHandler(handler.Config{
		Runner: r,
		State:  store,
	})

	authMiddleware := auth.Middleware(auth.Config{
		Username:     serverConfig.Username,
		PasswordHash: serverConfig.PasswordHash,
	})

	mux := http.NewServeMux()
	mux.Handle("/run", authMiddleware(http.HandlerFunc(trigger.Run)))
	mux.Handle("/status", authMiddleware(http.HandlerFunc(trigger.Status)))
	mux.HandleFunc("/health", handler.Health)
	return mux
}
