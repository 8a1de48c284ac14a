package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vmorsell/volctl/internal/config"
	"github.com/vmorsell/volctl/internal/logging"
	"github.com/vmorsell/volctl/internal/relay"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("VOLCTL_CONFIG"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := relay.New(logger, registry, relay.Config{
		VolumeChangeRateLimit: cfg.Relay.VolumeChangeRateLimit,
	})

	if err := s.ListenAndServe(ctx, ":"+cfg.Relay.Port); err != nil {
		logger.Error("server failed", zap.Error(err))
		return err
	}
	logger.Info("server exited")
	return nil
}
