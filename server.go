// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/onlyfringe/cliparse"
	"github.com/danielhkuo/onlyfringe/db"
	"github.com/danielhkuo/onlyfringe/factcheck"
	"github.com/danielhkuo/onlyfringe/idempotency"
	"github.com/danielhkuo/onlyfringe/metrics"
	"github.com/danielhkuo/onlyfringe/router"
	"github.com/danielhkuo/onlyfringe/store"
)

func serve(ctx context.Context, cfg cliparse.Config) error {
	// Connect and bring the schema up to date
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
		return err
	}
	slog.Info("database schema ready", "type", cfg.DatabaseType)

	m := metrics.New()

	judge := factcheck.New(factcheck.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.AIBaseURL,
		Model:       cfg.AIModel,
		Temperature: cfg.AITemperature,
		Timeout:     cfg.AITimeout,
	}, m)
	if !judge.Enabled() {
		slog.Warn("no OpenAI API key configured, every submission will be rejected",
			"key_file", cfg.KeyFile, "env", cliparse.APIKeyName)
	}

	keys, closeKeys, err := idempotencyStore(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closeKeys()

	handler := router.NewRouter(cfg, router.Deps{
		Store:       store.New(conn, cfg.DatabaseType),
		Judge:       judge,
		Idempotency: keys,
		Metrics:     m,
	})

	server := http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(ctrlc)
	go func() {
		select {
		case <-ctrlc:
		case <-ctx.Done():
		}
		// In-flight submissions may be waiting on the judge
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout+5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	slog.Info("Listening", "port", cfg.Port, "ai_enabled", judge.Enabled(), "version", version)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}

// idempotencyStore picks Redis when a URL is configured and the in-process
// cache otherwise
func idempotencyStore(ctx context.Context, redisURL string) (idempotency.Store, func(), error) {
	if redisURL == "" {
		slog.Info("idempotency records kept in memory")
		return idempotency.NewMemoryStore(), func() {}, nil
	}

	rs, err := idempotency.NewRedisStore(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("idempotency records kept in redis")
	return rs, func() { rs.Close() }, nil
}
