// Package config defines the claudewatch configuration surface, loaded via
// viper from an optional YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete claudewatch configuration
type Config struct {
	Window  WindowConfig  `mapstructure:"window"`
	Storage StorageConfig `mapstructure:"storage"`
	Probe   ProbeConfig   `mapstructure:"probe"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WindowConfig controls the usage-window length
type WindowConfig struct {
	// DurationHours is the fixed window length granted per activation (default: 5)
	DurationHours int `mapstructure:"duration_hours"`
}

// Duration returns the window length as a time.Duration
func (w *WindowConfig) Duration() time.Duration {
	return time.Duration(w.DurationHours) * time.Hour
}

// StorageConfig controls where and how the session record is persisted
type StorageConfig struct {
	// Path is the canonical location of the session record.
	// If empty, defaults to <configdir>/session.json
	Path string `mapstructure:"path"`
	// LockTimeoutSeconds bounds how long an invocation waits for the store
	// lock before reporting busy (default: 2)
	LockTimeoutSeconds int `mapstructure:"lock_timeout_seconds"`
}

// LockTimeout returns the lock wait bound as a time.Duration
func (s *StorageConfig) LockTimeout() time.Duration {
	return time.Duration(s.LockTimeoutSeconds) * time.Second
}

// ResolvePath returns the session record path, falling back to the default
// location under the config directory
func (s *StorageConfig) ResolvePath() string {
	if s.Path != "" {
		return expandHome(s.Path)
	}
	return filepath.Join(ConfigDir(), "session.json")
}

// ProbeConfig controls the activation probe passed through to the Claude CLI
type ProbeConfig struct {
	// Command is the CLI binary name (default: "claude")
	Command string `mapstructure:"command"`
	// Message is the acknowledgment prompt sent on activation
	Message string `mapstructure:"message"`
	// TimeoutSeconds bounds the probe invocation (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// MaxTurns is the turn limit passed through unchanged (default: 1)
	MaxTurns int `mapstructure:"max_turns"`
	// OutputFormat is passed through unchanged: "json" or "text" (default: "json")
	OutputFormat string `mapstructure:"output_format"`
}

// Timeout returns the probe timeout as a time.Duration
func (p *ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			DurationHours: 5,
		},
		Storage: StorageConfig{
			Path:               "",
			LockTimeoutSeconds: 2,
		},
		Probe: ProbeConfig{
			Command:        "claude",
			Message:        "Hello, Claude!",
			TimeoutSeconds: 10,
			MaxTurns:       1,
			OutputFormat:   "json",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("window.duration_hours", defaults.Window.DurationHours)

	viper.SetDefault("storage.path", defaults.Storage.Path)
	viper.SetDefault("storage.lock_timeout_seconds", defaults.Storage.LockTimeoutSeconds)

	viper.SetDefault("probe.command", defaults.Probe.Command)
	viper.SetDefault("probe.message", defaults.Probe.Message)
	viper.SetDefault("probe.timeout_seconds", defaults.Probe.TimeoutSeconds)
	viper.SetDefault("probe.max_turns", defaults.Probe.MaxTurns)
	viper.SetDefault("probe.output_format", defaults.Probe.OutputFormat)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the session manager cannot
// operate with
func (c *Config) Validate() error {
	if c.Window.DurationHours <= 0 {
		return fmt.Errorf("window.duration_hours must be positive, got %d", c.Window.DurationHours)
	}
	if c.Storage.LockTimeoutSeconds <= 0 {
		return fmt.Errorf("storage.lock_timeout_seconds must be positive, got %d", c.Storage.LockTimeoutSeconds)
	}
	if c.Probe.TimeoutSeconds <= 0 {
		return fmt.Errorf("probe.timeout_seconds must be positive, got %d", c.Probe.TimeoutSeconds)
	}
	if c.Probe.MaxTurns <= 0 {
		return fmt.Errorf("probe.max_turns must be positive, got %d", c.Probe.MaxTurns)
	}
	if c.Probe.OutputFormat != "json" && c.Probe.OutputFormat != "text" {
		return fmt.Errorf("probe.output_format must be %q or %q, got %q", "json", "text", c.Probe.OutputFormat)
	}
	return nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "claudewatch")
	}
	// Fall back to ~/.config/claudewatch
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claudewatch"
	}
	return filepath.Join(home, ".config", "claudewatch")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LogFile returns the path to the debug log file
func LogFile() string {
	return filepath.Join(ConfigDir(), "debug.log")
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
