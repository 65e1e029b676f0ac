package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/batchalign/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath, explicit := os.LookupEnv("BALIGN_CONFIG")
	if !explicit || configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err != nil && explicit {
		logger.Fatal("failed to load config", "path", configPath, "error", shared.ErrMissingConfig)
	} else if err == nil {
		loadedConfig, err := shared.LoadConfig(configPath)
		if err != nil {
			logger.Fatal("failed to load config", "path", configPath, "error", err)
		}
		config = loadedConfig
	}

	if err := config.Validate(); err != nil {
		logger.Fatal("invalid configuration", "path", configPath, "error", err)
	}

	level, _ := shared.ParseLogLevel(config.Logging.Level)
	shared.SetLogLevel(logger, level)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	defer runner.Close()

	if err := runner.app().Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNoWorkItems):
			logger.Error("nothing to align: check that every audio file has a transcript with the same base name, or use --mode positional", "error", err)
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
