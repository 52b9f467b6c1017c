package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config is assembled once at startup and passed explicitly into each
 * component's constructor. No package-level mutable state.
 */

type Config struct {
	Port          string `mapstructure:"PORT"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Delivery engine tunables
	MaxRetries      int           `mapstructure:"MAX_RETRIES"`
	DeliveryTimeout time.Duration `mapstructure:"DELIVERY_TIMEOUT"`
	Concurrency     int           `mapstructure:"CONCURRENCY"`
	BackoffTable    string        `mapstructure:"BACKOFF_TABLE"`

	// Comma-separated API keys accepted by the HTTP front door.
	// Empty disables authentication.
	APIKeys string `mapstructure:"API_KEYS"`

	// Optional YAML file with subscriptions to preload at boot.
	SubscriptionsFile string `mapstructure:"SUBSCRIPTIONS_FILE"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MAX_RETRIES", 5)
	viper.SetDefault("DELIVERY_TIMEOUT", "10s")
	viper.SetDefault("CONCURRENCY", 8)
	viper.SetDefault("BACKOFF_TABLE", "10s,30s,1m,5m,15m")

	// A missing .env file is fine, env vars still apply
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// Backoff parses the BACKOFF_TABLE entry into an ordered delay table.
func (c *Config) Backoff() ([]time.Duration, error) {
	parts := strings.Split(c.BackoffTable, ",")
	table := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		d, err := time.ParseDuration(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing backoff table entry %q: %w", part, err)
		}
		table = append(table, d)
	}
	return table, nil
}

// Keys splits the API_KEYS entry into individual keys.
func (c *Config) Keys() []string {
	if c.APIKeys == "" {
		return nil
	}
	parts := strings.Split(c.APIKeys, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
