package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/premia/internal/api"
	"github.com/newthinker/premia/internal/config"
	"github.com/newthinker/premia/internal/gateway"
	"github.com/newthinker/premia/internal/gateway/yahoo"
	"github.com/newthinker/premia/internal/logger"
	"github.com/newthinker/premia/internal/metrics"
	"github.com/newthinker/premia/internal/screen"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the premia API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	log := logger.Must(debug)
	defer log.Sync()

	// Load config
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info("starting premia server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	gw := yahoo.New()
	if err := gw.Init(gateway.Config{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: cfg.Gateway.Timeout,
	}); err != nil {
		return fmt.Errorf("initializing gateway: %w", err)
	}

	registry := metrics.NewRegistry()
	screener := screen.New(gw, log)
	screener.SetMetrics(registry)

	server := api.NewServer(cfg, screener, registry, log)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down premia server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

// loadConfig reads the config file when given, otherwise uses defaults.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
