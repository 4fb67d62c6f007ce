package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/config"
	"github.com/hongminglow/eros-desk/internal/server"
	"github.com/hongminglow/eros-desk/internal/storage/postgres"
	"github.com/hongminglow/eros-desk/internal/storage/redisstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()

	deps := server.Dependencies{Store: store, DB: store, Logger: logger}
	if cfg.RedisURL != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		defer client.Close()
		deps.Revocations = redisstore.NewRevocationList(client, "")
	} else {
		logger.Warn("REDIS_URL not set; logout only clears the client cookie")
		deps.Revocations = auth.NoRevocation{}
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("eros-desk listening", zap.String("addr", srv.Addr()))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-sigCh:
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	return nil
}
