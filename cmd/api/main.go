package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	api "kubetodo/internal/adapter/http"
	"kubetodo/pkg/config"
	"kubetodo/pkg/logging"
	"kubetodo/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()

	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := logging.NewAppLogger("kubetodo-api")

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	tel, err := telemetry.InitTelemetry(telemetry.TelemetryConfig{
		ServiceName:    "kubetodo-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer tel.Shutdown(context.Background())

	metrics := telemetry.NewAppMetrics(tel.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	if err := api.StartServer(ctx, metrics, logger, cfg); err != nil {
		log.Fatal("Server failed:", err)
	}

	logger.Logger.Info("Shut down gracefully")
}
