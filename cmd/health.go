package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// Health probes the alignment service and prints its info document.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	r.logger.Debug("probing alignment service", "url", r.config.Endpoint.HealthURL())

	resp, err := r.health.Health(ctx)
	if err != nil {
		r.writePlain("✗ %s is unavailable\n", r.config.Endpoint.BaseURL)
		return err
	}
	r.writePlain("✓ %s is healthy (HTTP %d)\n", r.config.Endpoint.BaseURL, resp.StatusCode)

	info, err := r.health.Info(ctx)
	if err != nil {
		r.logger.Warn("service info unavailable", "error", err)
		return nil
	}

	if info.IsJSON {
		return r.writeJSON(info.JSONData, true)
	}
	return r.writePlain("%s\n", string(info.Body))
}

// checkEndpoint is used by commands that want a friendly error before any work starts.
func (r *Runner) checkEndpoint(ctx context.Context) error {
	if err := r.prober.Ping(ctx); err != nil {
		return fmt.Errorf("alignment service at %s: %w", r.config.Endpoint.BaseURL, err)
	}
	return nil
}
