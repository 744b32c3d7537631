package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full server configuration.
type Config struct {
	App     AppConfig
	NATS    NATSConfig
	Storage StorageConfig
	Jobs    JobsConfig
	Monitor MonitorConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name string
}

// NATSConfig holds the NATS connection settings.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// StorageConfig holds the SQLite settings.
type StorageConfig struct {
	Path string
}

// JobsConfig holds the background job schedules.
type JobsConfig struct {
	SweepAt       string
	SweepPageSize int
}

// MonitorConfig holds the stats reporter settings.
type MonitorConfig struct {
	Interval time.Duration
}

// Load reads configuration from ./config/config.yaml, falling back to
// defaults when the file is absent. Environment variables prefixed with
// TODOPOP override file values (e.g. TODOPOP_NATS_URL).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("todopop")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "todopop-backend")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connect_timeout", "5s")
	v.SetDefault("storage.path", "todopop.db")
	v.SetDefault("jobs.sweep_at", "00:05")
	v.SetDefault("jobs.sweep_page_size", 100)
	v.SetDefault("monitor.interval", "30s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
		},
		NATS: NATSConfig{
			URL:            v.GetString("nats.url"),
			MaxReconnects:  v.GetInt("nats.max_reconnects"),
			ReconnectWait:  v.GetDuration("nats.reconnect_wait"),
			ConnectTimeout: v.GetDuration("nats.connect_timeout"),
		},
		Storage: StorageConfig{
			Path: v.GetString("storage.path"),
		},
		Jobs: JobsConfig{
			SweepAt:       v.GetString("jobs.sweep_at"),
			SweepPageSize: v.GetInt("jobs.sweep_page_size"),
		},
		Monitor: MonitorConfig{
			Interval: v.GetDuration("monitor.interval"),
		},
	}, nil
}
