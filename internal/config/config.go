// Package config loads service settings from the environment and scoring
// calibration from YAML.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable, e.g. VOCAL_PORT.
const EnvPrefix = "vocal"

// Config holds the service settings.
type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	DBPath          string `envconfig:"DB_PATH" default:"vocal.db"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	Workers         int    `envconfig:"WORKERS" default:"2"`
	QueueSize       int    `envconfig:"QUEUE_SIZE" default:"100"`
	CalibrationFile string `envconfig:"CALIBRATION_FILE"`

	MaxRecordingSeconds float64 `envconfig:"MAX_RECORDING_SECONDS" default:"600"`

	Fetch FetchConfig `envconfig:"FETCH"`
}

// FetchConfig controls downloads of remote recordings.
type FetchConfig struct {
	Enabled      bool          `envconfig:"ENABLED" default:"true"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxBytes     int64         `envconfig:"MAX_BYTES" default:"52428800"`
	MaxRetries   int           `envconfig:"MAX_RETRIES" default:"3"`
	Backoff      time.Duration `envconfig:"BACKOFF" default:"500ms"`
	AllowedHosts []string      `envconfig:"ALLOWED_HOSTS"`

	ClientID     string   `envconfig:"CLIENT_ID"`
	ClientSecret string   `envconfig:"CLIENT_SECRET"`
	TokenURL     string   `envconfig:"TOKEN_URL"`
	Scopes       []string `envconfig:"SCOPES"`
}

// Load reads Config from VOCAL_* environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.Workers < 1 || cfg.QueueSize < 1 {
		return Config{}, fmt.Errorf("config: workers (%d) and queue size (%d) must be positive", cfg.Workers, cfg.QueueSize)
	}
	if cfg.Fetch.ClientID != "" && cfg.Fetch.TokenURL == "" {
		return Config{}, fmt.Errorf("config: VOCAL_FETCH_TOKEN_URL is required with a client id")
	}
	return cfg, nil
}
