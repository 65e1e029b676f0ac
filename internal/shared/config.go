package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML (or YAML) file.
type Config struct {
	Endpoint EndpointConfig `toml:"endpoint" yaml:"endpoint"`
	Batch    BatchConfig    `toml:"batch" yaml:"batch"`
	Output   OutputConfig   `toml:"output" yaml:"output"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Watch    WatchConfig    `toml:"watch" yaml:"watch"`
}

// EndpointConfig describes the remote alignment service.
type EndpointConfig struct {
	BaseURL     string        `toml:"base_url" yaml:"base_url"`
	AlignPath   string        `toml:"align_path" yaml:"align_path"`
	HealthPath  string        `toml:"health_path" yaml:"health_path"`
	InfoPath    string        `toml:"info_path" yaml:"info_path"`
	Timeout     time.Duration `toml:"timeout" yaml:"timeout"`
	AuthToken   string        `toml:"auth_token" yaml:"auth_token"`
	HeadersPath string        `toml:"headers_path" yaml:"headers_path"`
}

// BatchConfig controls pairing and pacing.
type BatchConfig struct {
	MatchMode         string  `toml:"match_mode" yaml:"match_mode"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	Preflight         bool    `toml:"preflight" yaml:"preflight"`
}

// OutputConfig controls where reports and artifacts are written.
type OutputConfig struct {
	Dir            string `toml:"dir" yaml:"dir"`
	ReportFormat   string `toml:"report_format" yaml:"report_format"`
	ManifestFormat string `toml:"manifest_format" yaml:"manifest_format"`
	Archive        bool   `toml:"archive" yaml:"archive"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" yaml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// WatchConfig contains settings for directory watch mode.
type WatchConfig struct {
	QuietPeriod time.Duration `toml:"quiet_period" yaml:"quiet_period"`
}

var (
	reportFormats   = []string{"text", "json", "csv", "markdown"}
	manifestFormats = []string{"json", "yaml"}
	matchModes      = []string{"auto", "positional"}
)

// LoadConfig reads a configuration file from the specified path and overlays it on [DefaultConfig].
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the batch client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: endpoint.base_url %q is not an absolute URL", ErrInvalidConfig, c.Endpoint.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint.base_url scheme must be http or https", ErrInvalidConfig)
	}
	if c.Endpoint.Timeout <= 0 {
		return fmt.Errorf("%w: endpoint.timeout must be positive", ErrInvalidConfig)
	}
	if !oneOf(c.Batch.MatchMode, matchModes) {
		return fmt.Errorf("%w: batch.match_mode must be one of %s", ErrInvalidConfig, strings.Join(matchModes, ", "))
	}
	if c.Batch.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: batch.requests_per_second cannot be negative", ErrInvalidConfig)
	}
	if !oneOf(c.Output.ReportFormat, reportFormats) {
		return fmt.Errorf("%w: output.report_format must be one of %s", ErrInvalidConfig, strings.Join(reportFormats, ", "))
	}
	if !oneOf(c.Output.ManifestFormat, manifestFormats) {
		return fmt.Errorf("%w: output.manifest_format must be one of %s", ErrInvalidConfig, strings.Join(manifestFormats, ", "))
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// AlignURL returns the full URL of the alignment endpoint.
func (e EndpointConfig) AlignURL() string {
	return joinURL(e.BaseURL, e.AlignPath)
}

// HealthURL returns the full URL of the health probe.
func (e EndpointConfig) HealthURL() string {
	return joinURL(e.BaseURL, e.HealthPath)
}

// InfoURL returns the full URL of the service info endpoint.
func (e EndpointConfig) InfoURL() string {
	return joinURL(e.BaseURL, e.InfoPath)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
