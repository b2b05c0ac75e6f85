package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rl1809/stockroom/internal/client"
	"github.com/rl1809/stockroom/internal/config"
	"github.com/rl1809/stockroom/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	// Diagnostics go to stderr so they do not mix with the interface
	logger := logging.New(&logging.Config{
		Level:       logging.LogLevel(cfg.Log.Level),
		Format:      "text",
		ServiceName: "stockroom-client",
		Output:      os.Stderr,
	})

	os.Exit(run(cfg, logger))
}

func run(cfg *config.Config, logger *logging.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supervisor := client.NewSupervisor(client.SupervisorConfig{
		BaseURL:       cfg.Client.BaseURL,
		Command:       cfg.Client.ServerCommand,
		LogPath:       cfg.Client.ServerLog,
		ProbeInterval: cfg.Client.ProbeInterval,
		ProbeAttempts: cfg.Client.ProbeAttempts,
		ShutdownGrace: cfg.Client.ShutdownGrace,
		Logger:        logger,
	})

	if err := supervisor.Ensure(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var startErr *client.StartupError
		if errors.As(err, &startErr) && startErr.Output != "" {
			fmt.Fprintln(os.Stderr, "Server output:")
			fmt.Fprintln(os.Stderr, startErr.Output)
		}
		return 1
	}
	defer func() {
		if err := supervisor.Shutdown(); err != nil {
			logger.WithError(err).Error("Failed to stop server")
		}
	}()

	dispatcher := client.NewDispatcher(client.NewAPIClient(cfg.Client.BaseURL, nil), cfg.Client.Workers, cfg.Client.QueueSize)
	defer dispatcher.Close()

	fmt.Println("Inventory Management System. Type help for commands.")
	app := client.NewApp(dispatcher, os.Stdout)
	if err := app.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("Client stopped")
		return 1
	}
	return 0
}
