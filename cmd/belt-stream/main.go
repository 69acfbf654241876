package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/config"
	"github.com/dhruvmynd/breathUnity/internal/device"
	"github.com/dhruvmynd/breathUnity/internal/logger"
	"github.com/dhruvmynd/breathUnity/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "belt-stream")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting belt-stream service",
		zap.String("connection", cfg.Belt.Connection),
		zap.String("unity_addr", cfg.Belt.UnityAddr),
		zap.Int("period_ms", cfg.Belt.PeriodMs),
	)

	beltService, err := service.NewBeltService(cfg, device.NewSimAdapter(), zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create belt service", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- beltService.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			zapLogger.Error("Belt service exited", zap.Error(err))
		}
	}

	if err := beltService.Stop(context.Background()); err != nil {
		zapLogger.Error("Error during shutdown", zap.Error(err))
	}

	zapLogger.Info("Service stopped")
}
