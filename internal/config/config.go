package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Booking  BookingConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	RateLimitRPS   int `mapstructure:"rate_limit_rps"`
	RateLimitBurst int `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type BookingConfig struct {
	FlowTTLMinutes     int `mapstructure:"flow_ttl_minutes"`
	LockTTLSeconds     int `mapstructure:"lock_ttl_seconds"`
	MaxGranularityMins int `mapstructure:"max_granularity_minutes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// FlowTTL returns how long an idle booking flow is kept before the
// store discards it.
func (c BookingConfig) FlowTTL() time.Duration {
	if c.FlowTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.FlowTTLMinutes) * time.Minute
}

// LockTTL bounds how long a distributed reservation lock may be held.
func (c BookingConfig) LockTTL() time.Duration {
	if c.LockTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// MaxGranularity caps the caller-supplied slot step on availability
// queries.
func (c BookingConfig) MaxGranularity() time.Duration {
	if c.MaxGranularityMins <= 0 {
		return time.Hour
	}
	return time.Duration(c.MaxGranularityMins) * time.Minute
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("REVITA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
