// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application.
// The mapstructure tags are used by Viper to unmarshal the data.
type Config struct {
	ServiceName    string `mapstructure:"service_name"`
	LogLevel       string `mapstructure:"log_level"`
	HttpListenAddr string `mapstructure:"http_listen_addr"`
	GrpcListenAddr string `mapstructure:"grpc_listen_addr"`

	TrendPollInterval        time.Duration `mapstructure:"trend_poll_interval"`
	TrendConfidenceThreshold float64       `mapstructure:"trend_confidence_threshold"`
	ContentQualityThreshold  float64       `mapstructure:"content_quality_threshold"`
	CampaignSettleDelay      time.Duration `mapstructure:"campaign_settle_delay"`

	SyncWebhookURL        string        `mapstructure:"sync_webhook_url"`
	SyncWebhookTimeout    time.Duration `mapstructure:"sync_webhook_timeout"`
	SyncWebhookMaxRetries int           `mapstructure:"sync_webhook_max_retries"`
	SyncWebhookBackoff    time.Duration `mapstructure:"sync_webhook_backoff"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Load loads configuration from file and environment variables.
// Environment variables use the upper-cased key, e.g. HTTP_LISTEN_ADDR.
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("service_name", "marketing-maas")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_listen_addr", ":8080")
	v.SetDefault("grpc_listen_addr", ":50051")
	v.SetDefault("trend_poll_interval", "5m")
	v.SetDefault("trend_confidence_threshold", 0.8)
	v.SetDefault("content_quality_threshold", 0.9)
	v.SetDefault("campaign_settle_delay", "2s")
	v.SetDefault("sync_webhook_url", "")
	v.SetDefault("sync_webhook_timeout", "10s")
	v.SetDefault("sync_webhook_max_retries", 3)
	v.SetDefault("sync_webhook_backoff", "500ms")
	v.SetDefault("shutdown_timeout", "5s")

	// Set config file details
	v.SetConfigName("config")    // name of config file (without extension)
	v.SetConfigType("yaml")      // or "json", "toml"
	v.AddConfigPath("./configs") // path to look for the config file in
	v.AddConfigPath(".")         // optionally look for config in the working directory

	// Read environment variables
	v.AutomaticEnv()

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return nil, err
		}
		// No config file; defaults and env vars are enough.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.TrendPollInterval <= 0 {
		return fmt.Errorf("trend_poll_interval must be positive, got %s", c.TrendPollInterval)
	}
	if c.TrendConfidenceThreshold < 0 || c.TrendConfidenceThreshold > 1 {
		return fmt.Errorf("trend_confidence_threshold must be within [0, 1], got %v", c.TrendConfidenceThreshold)
	}
	if c.ContentQualityThreshold < 0 || c.ContentQualityThreshold > 1 {
		return fmt.Errorf("content_quality_threshold must be within [0, 1], got %v", c.ContentQualityThreshold)
	}
	if c.CampaignSettleDelay < 0 {
		return fmt.Errorf("campaign_settle_delay cannot be negative")
	}
	if c.SyncWebhookMaxRetries < 0 {
		return fmt.Errorf("sync_webhook_max_retries cannot be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
