// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as metrics and logging levels.
type App struct {
	Name        string `yaml:"name"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Feed describes connectivity and the reconnect policy for the market-data feed.
type Feed struct {
	URL            string `yaml:"url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	MaxRetries     int    `yaml:"max_retries"`
	RetryDelaySecs int    `yaml:"retry_delay_secs"`
}

// RetryDelay returns the reconnect delay as a duration.
func (f Feed) RetryDelay() time.Duration {
	return time.Duration(f.RetryDelaySecs) * time.Second
}

// Window tunes the aggregation cadence and display retention.
type Window struct {
	DurationSecs int `yaml:"duration_secs"`
	PollMs       int `yaml:"poll_ms"`
	HistoryDepth int `yaml:"history_depth"`
}

// Duration returns the window length as a duration.
func (w Window) Duration() time.Duration {
	return time.Duration(w.DurationSecs) * time.Second
}

// Poll returns the live-refresh cadence as a duration.
func (w Window) Poll() time.Duration {
	return time.Duration(w.PollMs) * time.Millisecond
}

// Archive controls the optional JSONL trail of finalized windows.
type Archive struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App     App     `yaml:"app"`
	Feed    Feed    `yaml:"feed"`
	Window  Window  `yaml:"window"`
	Archive Archive `yaml:"archive"`
}

// Default returns the built-in configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		App: App{
			Name:        "volume-delta",
			MetricsAddr: ":9090",
			LogLevel:    "info",
		},
		Feed: Feed{
			URL:            "wss://socket.polygon.io/stocks",
			APIKeyEnv:      "POLYGON_API_KEY",
			MaxRetries:     3,
			RetryDelaySecs: 10,
		},
		Window: Window{
			DurationSecs: 5,
			PollMs:       200,
			HistoryDepth: 4,
		},
		Archive: Archive{
			Enabled: false,
			Path:    "logs/windows.jsonl",
		},
	}
}

// Load reads a YAML file from disk and hydrates a Config struct on top of
// the defaults, so partial files only override what they mention.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
