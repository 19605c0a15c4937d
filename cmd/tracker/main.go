// cmd/tracker/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"visa-tracker/internal/app"
	"visa-tracker/internal/common/config"
	"visa-tracker/internal/common/logger"
	"visa-tracker/internal/common/observability"
	"visa-tracker/internal/common/validation"
	"visa-tracker/internal/exporter"
	apihttp "visa-tracker/internal/http"
	"visa-tracker/internal/storage"
	"visa-tracker/internal/store"
	"visa-tracker/pkg/catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting visa tracker...",
		zap.String("environment", cfg.App.Environment),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("timezone", cfg.App.Timezone),
	)

	obs := observability.New(cfg.App.Name, nil, log)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- Storage with retry ---
	var backend storage.Backend
	err = retryWithBackoff(func() error {
		var err error
		if backend, err = storage.Open(ctx, cfg.Storage, log); err != nil {
			return err
		}
		if err := backend.Ping(ctx); err != nil {
			_ = backend.Close()
			return err
		}
		return nil
	}, 10, 2*time.Second, zapLog, "Storage initialization")
	if err != nil {
		zapLog.Fatal("storage failed after retries", zap.Error(err))
	}
	defer backend.Close()

	// --- Catalog ---
	cat := catalog.Builtin()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			zapLog.Fatal("catalog load failed", zap.String("path", cfg.Catalog.Path), zap.Error(err))
		}
	}
	zapLog.Info("Catalog loaded",
		zap.String("version", cat.Version()),
		zap.Int("universities", len(cat.Universities())),
		zap.Int("courses", len(cat.Courses())),
	)

	// --- Export sink ---
	sink, err := exporter.OpenSink(ctx, cfg.Export, log)
	if err != nil {
		zapLog.Fatal("export sink failed", zap.Error(err))
	}

	// --- Application state ---
	st := store.New(backend, validation.NewRecordValidator(cat), log)
	tracker, err := app.New(app.Deps{
		Config:   cfg,
		Store:    st,
		KV:       backend,
		Catalog:  cat,
		Exporter: exporter.New(sink, log),
		Logger:   log,
	})
	if err != nil {
		zapLog.Fatal("application setup failed", zap.Error(err))
	}
	if err := tracker.Init(ctx); err != nil {
		zapLog.Fatal("application init failed", zap.Error(err))
	}
	defer tracker.Teardown()

	// --- HTTP API ---
	opts := apihttp.OptionsFromConfig(cfg)
	opts.Ready = backend.Ping
	router := apihttp.NewRouter(tracker, obs, log, opts)

	go func() {
		zapLog.Info("HTTP API listening", zap.String("address", cfg.Server.Address))
		if err := router.Listen(cfg.Server.Address); err != nil {
			zapLog.Error("HTTP API failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	if err := apihttp.Shutdown(router); err != nil {
		zapLog.Error("Error stopping HTTP API", zap.Error(err))
	}

	zapLog.Info("Visa tracker stopped gracefully")
}
