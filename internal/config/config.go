package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel           string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// CacheConfig controls the task list cache.
type CacheConfig struct {
	Driver            string        `mapstructure:"driver" validate:"required,oneof=redis memory"`
	TTL               time.Duration `mapstructure:"ttl" validate:"gt=0"`
	LoadTimeout       time.Duration `mapstructure:"load_timeout" validate:"gte=0"`
	KeyPrefix         string        `mapstructure:"key_prefix"`
	InvalidateOnWrite bool          `mapstructure:"invalidate_on_write"`
	FailOpen          bool          `mapstructure:"fail_open"`
}

// RedisConfig holds connection settings for the Redis cache driver.
type RedisConfig struct {
	Host        string        `mapstructure:"host" validate:"required"`
	Port        int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db" validate:"gte=0"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"gt=0"`
	KeepAlive   time.Duration `mapstructure:"keep_alive" validate:"gte=0"`
	MaxRetries  int           `mapstructure:"max_retries" validate:"gte=0"`
}

// Addr returns the host:port address of the Redis server.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}
