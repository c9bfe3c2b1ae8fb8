package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Backend     BackendConfig   `toml:"backend"`
	Monitor     MonitorConfig   `toml:"monitor"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Cleanup     CleanupConfig   `toml:"cleanup"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// BackendConfig describes how to reach the generation backend (black box).
// BaseURL serves the create/status REST endpoints; RealtimeURL is the
// websocket endpoint delivering row-change notifications for demo rows.
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	RealtimeURL    string `toml:"realtime_url"`
	RequestTimeout string `toml:"request_timeout"` // e.g., "10s"
}

// Timeout returns the parsed request timeout
func (c BackendConfig) Timeout() time.Duration {
	return parseDurationOr(c.RequestTimeout, 10*time.Second)
}

// MonitorConfig controls the session monitoring cadences.
// Durations are strings ("2s", "500ms") parsed on access.
type MonitorConfig struct {
	PollInterval      string `toml:"poll_interval"`      // Status poll cadence (fixed, no backoff)
	NarrativeInterval string `toml:"narrative_interval"` // Synthetic narrative cadence
}

// PollDuration returns the parsed status poll cadence
func (c MonitorConfig) PollDuration() time.Duration {
	return parseDurationOr(c.PollInterval, 2*time.Second)
}

// NarrativeDuration returns the parsed narrative cadence
func (c MonitorConfig) NarrativeDuration() time.Duration {
	return parseDurationOr(c.NarrativeInterval, 3*time.Second)
}

// WebSocketConfig contains configuration for the UI websocket hub
type WebSocketConfig struct {
	MinLevel        string   `toml:"min_level"`        // Minimum log level to broadcast ("debug", "info", "warn", "error")
	ExcludePatterns []string `toml:"exclude_patterns"` // Log message patterns to exclude from broadcasting
	// Throttle intervals for high-frequency events. Map of event type to duration string.
	// Example: {"demo_updated": "500ms"}
	ThrottleIntervals map[string]string `toml:"throttle_intervals"`
}

// CleanupConfig controls removal of old terminal session snapshots
type CleanupConfig struct {
	Enabled   bool   `toml:"enabled"`
	Schedule  string `toml:"schedule"`  // Cron schedule (with seconds field)
	Retention string `toml:"retention"` // Keep terminal sessions at least this long, e.g., "24h"
}

// RetentionDuration returns the parsed retention window
func (c CleanupConfig) RetentionDuration() time.Duration {
	return parseDurationOr(c.Retention, 24*time.Hour)
}

// parseDurationOr parses a duration string, falling back to a default when
// the value is empty or malformed
func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability; only
// user-facing settings should be exposed in orchids-monitor.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000/api",
			RealtimeURL:    "ws://localhost:8000/realtime",
			RequestTimeout: "10s",
		},
		Monitor: MonitorConfig{
			PollInterval:      "2s",
			NarrativeInterval: "3s",
		},
		WebSocket: WebSocketConfig{
			MinLevel: "info",
			ExcludePatterns: []string{
				"WebSocket client connected",
				"WebSocket client disconnected",
				"HTTP request",
				"HTTP response",
				"Publishing event",
			},
			// Progress updates can arrive every poll tick; cap the fan-out
			ThrottleIntervals: map[string]string{
				"demo_updated": "500ms",
			},
		},
		Cleanup: CleanupConfig{
			Enabled:   true,
			Schedule:  "0 0 * * * *", // Hourly (cron format with seconds)
			Retention: "24h",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ORCHIDS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("ORCHIDS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ORCHIDS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("ORCHIDS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("ORCHIDS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("ORCHIDS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if baseURL := os.Getenv("ORCHIDS_BACKEND_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if realtimeURL := os.Getenv("ORCHIDS_BACKEND_REALTIME_URL"); realtimeURL != "" {
		config.Backend.RealtimeURL = realtimeURL
	}
	if timeout := os.Getenv("ORCHIDS_BACKEND_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Backend.RequestTimeout = timeout
		}
	}

	if interval := os.Getenv("ORCHIDS_POLL_INTERVAL"); interval != "" {
		if _, err := time.ParseDuration(interval); err == nil {
			config.Monitor.PollInterval = interval
		}
	}
	if interval := os.Getenv("ORCHIDS_NARRATIVE_INTERVAL"); interval != "" {
		if _, err := time.ParseDuration(interval); err == nil {
			config.Monitor.NarrativeInterval = interval
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
