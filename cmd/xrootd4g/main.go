package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cubbit/xrootd4g/internal/config"
	"github.com/cubbit/xrootd4g/internal/telemetry"
	"github.com/cubbit/xrootd4g/internal/xrootd"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to $XDG_CONFIG_HOME/xrootd4g/config.yaml)")
	metricsEnabled := flag.Bool("metrics", false, "expose Prometheus metrics via the global registry")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	telemetry.SetLevel(cfg.Logging.Level)
	if err := setupLogOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("failed to open log output %q: %v", cfg.Logging.Output, err)
	}

	if *metricsEnabled {
		telemetry.InitRegistry()
		telemetry.Info("metrics registry enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := xrootd.NewServer(
		cfg.Server.Root,
		cfg.Server.Port,
		cfg.Server.MaxFrameSize,
		cfg.Server.MaxBodySize,
		cfg.Server.UseZeroCopy,
		cfg.Server.IdleTimeout,
		cfg.Server.MaxConnRate,
		cfg.Server.MaxConnBurst,
	)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	telemetry.Info("xrootd data server starting on port %d, root %s", cfg.Server.Port, cfg.Server.Root)

	select {
	case <-sigChan:
		telemetry.Info("shutdown signal received, closing listener and connections")
		cancel()
		if err := srv.Stop(); err != nil {
			telemetry.Warn("error closing listener: %v", err)
		}
		if err := <-serverDone; err != nil {
			telemetry.Error("server stopped with error: %v", err)
			os.Exit(1)
		}
		telemetry.Info("server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			telemetry.Error("server error: %v", err)
			os.Exit(1)
		}
		telemetry.Info("server stopped")
	}
}

func setupLogOutput(output string) error {
	switch output {
	case "", "stdout":
		telemetry.SetOutput(os.Stdout)
	case "stderr":
		telemetry.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		telemetry.SetOutput(f)
	}
	return nil
}
