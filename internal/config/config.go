package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" envconfig:"REDIS_URL"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret" envconfig:"JWT_SECRET"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

// SchedulingConfig holds the scheduling policy knobs.
type SchedulingConfig struct {
	// SlotMinutes is the fixed appointment duration; end times are derived,
	// never stored.
	SlotMinutes int `mapstructure:"slot_minutes"`
	// NotifyNoShow controls whether the NO_SHOW transition produces a
	// patient-facing notification.
	NotifyNoShow bool `mapstructure:"notify_no_show"`
	// LockTTL bounds the per-doctor booking lock.
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// WindowCacheTTL is the availability-window cache expiry.
	WindowCacheTTL time.Duration `mapstructure:"window_cache_ttl"`
}

// SlotDuration returns the policy slot length.
func (c SchedulingConfig) SlotDuration() time.Duration {
	if c.SlotMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.SlotMinutes) * time.Minute
}

// Load reads config.yaml and then applies environment overrides.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.rate_limit", 100.0)
	viper.SetDefault("server.rate_burst", 50)
	viper.SetDefault("scheduling.slot_minutes", 60)
	viper.SetDefault("scheduling.notify_no_show", false)
	viper.SetDefault("scheduling.lock_ttl", 5*time.Second)
	viper.SetDefault("scheduling.window_cache_ttl", 5*time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment variables win over the file.
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	return &cfg, nil
}
