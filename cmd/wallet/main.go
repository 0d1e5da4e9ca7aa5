package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/cli"
	"wallet/internal/config"
	apphttp "wallet/internal/http"
	"wallet/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)

	ctx, stop := cli.SignalContext(context.Background())
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// run serves until ctx is cancelled or the listener fails. The backend is
// closed before run returns, whatever the outcome.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) (err error) {
	store, backend, err := cli.InitStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize storage (%s): %w", cfg.DataBackend, err)
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			logger.Error("Backend close error", log.FieldError, cerr)
			if err == nil {
				err = fmt.Errorf("close backend: %w", cerr)
			}
		}
	}()

	srv := apphttp.NewServer(cfg.ListenAddr(), store,
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
		apphttp.WithSummaryCacheTTL(cfg.SummaryCacheTTL),
	)
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting wallet server", "addr", srv.Addr, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
