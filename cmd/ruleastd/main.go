// Command ruleastd serves the rule API over HTTP.
//
// Usage:
//
//	ruleastd [-config ruleastd.yaml] [-addr :8080]
//
// Rules saved through POST /rules are kept in SQLite at db_path, or in
// memory when db_path is empty. With metrics or tracing enabled, telemetry
// is exported to stdout as JSON; logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/randalmurphal/ruleast/pkg/ruleast"
	"github.com/randalmurphal/ruleast/pkg/ruleast/config"
	"github.com/randalmurphal/ruleast/pkg/ruleast/server"
	"github.com/randalmurphal/ruleast/pkg/ruleast/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ruleastd:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		settings.Addr = *addr
	}

	logger := newLogger(settings, os.Stderr)
	slog.SetDefault(logger)

	st, err := openStore(settings)
	if err != nil {
		return err
	}
	defer st.Close()

	shutdownTelemetry, err := setupTelemetry(settings, os.Stdout)
	if err != nil {
		return err
	}

	manager := ruleast.New(
		ruleast.WithLogger(logger),
		ruleast.WithMetrics(settings.Metrics),
		ruleast.WithTracing(settings.Tracing),
		ruleast.WithCache(1024),
	)

	httpServer := &http.Server{
		Addr:              settings.Addr,
		Handler:           server.New(manager, st, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", settings.Addr, "db_path", settings.DBPath)
		errCh <- httpServer.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down", "timeout", settings.ShutdownTimeout.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err)
	}
	return serveErr
}

func newLogger(s config.Settings, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	if s.LogFormat == config.FormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func openStore(s config.Settings) (store.Store, error) {
	if s.DBPath == "" {
		return store.NewMemoryStore(), nil
	}
	var opts []store.SQLiteOption
	if s.Compress {
		opts = append(opts, store.WithCompression())
	}
	st, err := store.NewSQLiteStore(s.DBPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
