package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Endpoint.BaseURL != "http://127.0.0.1:8080" {
			t.Errorf("expected base URL http://127.0.0.1:8080, got %s", config.Endpoint.BaseURL)
		}
		if config.Endpoint.Timeout != 5*time.Minute {
			t.Errorf("expected 5m timeout, got %v", config.Endpoint.Timeout)
		}
		if config.Batch.MatchMode != "auto" {
			t.Errorf("expected auto match mode, got %s", config.Batch.MatchMode)
		}
		if config.Database.Path != "./balign.db" {
			t.Errorf("expected database path ./balign.db, got %s", config.Database.Path)
		}
		if config.Watch.QuietPeriod != 2*time.Second {
			t.Errorf("expected 2s quiet period, got %v", config.Watch.QuietPeriod)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig overlays defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		content := `
[endpoint]
base_url = "https://align.example.com"
timeout = "90s"

[batch]
match_mode = "positional"
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Endpoint.BaseURL != "https://align.example.com" {
			t.Errorf("base_url = %s", config.Endpoint.BaseURL)
		}
		if config.Endpoint.Timeout != 90*time.Second {
			t.Errorf("timeout = %v", config.Endpoint.Timeout)
		}
		if config.Endpoint.AlignPath != "/api/align" {
			t.Errorf("align_path should keep default, got %s", config.Endpoint.AlignPath)
		}
		if config.Batch.MatchMode != "positional" {
			t.Errorf("match_mode = %s", config.Batch.MatchMode)
		}
	})

	t.Run("LoadConfig YAML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		content := "endpoint:\n  base_url: http://10.0.0.5:9000\n  timeout: 2m\noutput:\n  manifest_format: yaml\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Endpoint.BaseURL != "http://10.0.0.5:9000" {
			t.Errorf("base_url = %s", config.Endpoint.BaseURL)
		}
		if config.Endpoint.Timeout != 2*time.Minute {
			t.Errorf("timeout = %v", config.Endpoint.Timeout)
		}
		if config.Output.ManifestFormat != "yaml" {
			t.Errorf("manifest_format = %s", config.Output.ManifestFormat)
		}
		if config.Batch.MatchMode != "auto" {
			t.Errorf("match_mode should keep default, got %s", config.Batch.MatchMode)
		}
	})

	t.Run("LoadConfig errors", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}

		bad := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(bad, []byte("[endpoint\nbase_url="), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(bad); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Config)
		}{
			{"relative base url", func(c *Config) { c.Endpoint.BaseURL = "/api" }},
			{"ftp base url", func(c *Config) { c.Endpoint.BaseURL = "ftp://example.com" }},
			{"zero timeout", func(c *Config) { c.Endpoint.Timeout = 0 }},
			{"unknown match mode", func(c *Config) { c.Batch.MatchMode = "fuzzy" }},
			{"negative rate", func(c *Config) { c.Batch.RequestsPerSecond = -1 }},
			{"unknown report format", func(c *Config) { c.Output.ReportFormat = "pdf" }},
			{"unknown manifest format", func(c *Config) { c.Output.ManifestFormat = "xml" }},
			{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("endpoint URLs", func(t *testing.T) {
		e := EndpointConfig{BaseURL: "http://host:8080/", AlignPath: "api/align", HealthPath: "/health", InfoPath: "/api/info"}
		if got := e.AlignURL(); got != "http://host:8080/api/align" {
			t.Errorf("AlignURL() = %s", got)
		}
		if got := e.HealthURL(); got != "http://host:8080/health" {
			t.Errorf("HealthURL() = %s", got)
		}
		if got := e.InfoURL(); got != "http://host:8080/api/info" {
			t.Errorf("InfoURL() = %s", got)
		}
	})
}
