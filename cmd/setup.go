package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/batchalign/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the configuration template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlain("Edit [endpoint] base_url to point at your alignment service.\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = r.config
		}
	} else {
		r.logger.Info("config file not found, using current settings", "path", configPath)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	statuses, err := shared.Migrations(db)
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	for _, m := range statuses {
		mark := "✗"
		if m.Applied {
			mark = "✓"
		}
		r.writePlain("%s %03d %s\n", mark, m.Version, m.Name)
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s (schema version %d)\n", config.Database.Path, version)
	return nil
}

// SetupEndpoint imports extra request headers from a browser "Copy as cURL" command.
func (r *Runner) SetupEndpoint(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	outputPath := cmd.String("output")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	if outputPath == "" {
		outputPath = r.config.Endpoint.HeadersPath
	}
	if outputPath == "" {
		outputPath = "headers.json"
	}

	if err := shared.WriteHeadersFile(outputPath, curlHeaders); err != nil {
		return err
	}

	r.logger.Info("headers saved", "path", outputPath, "count", len(curlHeaders.Headers))

	r.writePlain("✓ Saved %d headers to %s\n", len(curlHeaders.Headers), outputPath)
	if curlHeaders.URL != "" {
		r.writePlain("Request URL: %s\n", curlHeaders.URL)
	}
	r.writePlainln("Next steps:")
	r.writePlain("1. Update config.toml with: endpoint.headers_path = \"%s\"\n", outputPath)
	r.writePlain("2. Run 'balign health' to test the endpoint\n")

	return nil
}
