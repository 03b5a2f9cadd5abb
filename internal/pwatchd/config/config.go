// Package config provides configuration management for the printwatch server
package config

import (
	"time"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Link      LinkConfig      `yaml:"link"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	TLSCert      string        `yaml:"tlsCert"`
	TLSKey       string        `yaml:"tlsKey"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// RedisConfig holds settings for the redis instance backing rate
// limiting and event publishing
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LinkConfig holds settings for the MQTT link to printers
type LinkConfig struct {
	// Port is the MQTT-over-TLS port printers listen on
	Port int `yaml:"port"`
	// Username is the fixed account printers accept in LAN mode
	Username string `yaml:"username"`
	// KeepAlive is the MQTT keepalive interval
	KeepAlive time.Duration `yaml:"keepAlive"`
	// ConnectTimeout bounds the initial broker handshake
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	// Trace enables wire-level logging of raw report payloads
	Trace bool `yaml:"trace"`
}

// Limit describes one rate limit bucket
type Limit struct {
	Rate      int           `yaml:"rate"`
	Period    time.Duration `yaml:"period"`
	BurstSize int           `yaml:"burstSize"`
}

// RateLimitConfig holds per-endpoint-class rate limits
type RateLimitConfig struct {
	APIRequests   Limit `yaml:"apiRequests"`
	StatusPolls   Limit `yaml:"statusPolls"`
	WSConnections Limit `yaml:"wsConnections"`
}

// Load builds a configuration from defaults and environment variables
func Load() (*Config, error) {
	cfg := defaultConfig()
	cfg.overlayEnv()
	return cfg, cfg.validate()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "printwatch",
			User:            "printwatch",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Link: LinkConfig{
			Port:           8883,
			Username:       "bblp",
			KeepAlive:      30 * time.Second,
			ConnectTimeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			APIRequests:   Limit{Rate: 100, Period: time.Minute, BurstSize: 20},
			StatusPolls:   Limit{Rate: 300, Period: time.Minute, BurstSize: 60},
			WSConnections: Limit{Rate: 10, Period: time.Minute, BurstSize: 5},
		},
	}
}

// overlayEnv overlays environment variables on top of file-based config
func (c *Config) overlayEnv() {
	// Server config
	if host := getEnv("PWATCH_SERVER_HOST", ""); host != "" {
		c.Server.Host = host
	}
	if port := getEnvAsInt("PWATCH_SERVER_PORT", 0); port != 0 {
		c.Server.Port = port
	}
	if readTimeout := getEnvAsDuration("PWATCH_SERVER_READ_TIMEOUT", 0); readTimeout != 0 {
		c.Server.ReadTimeout = readTimeout
	}
	if writeTimeout := getEnvAsDuration("PWATCH_SERVER_WRITE_TIMEOUT", 0); writeTimeout != 0 {
		c.Server.WriteTimeout = writeTimeout
	}
	if idleTimeout := getEnvAsDuration("PWATCH_SERVER_IDLE_TIMEOUT", 0); idleTimeout != 0 {
		c.Server.IdleTimeout = idleTimeout
	}
	if tlsCert := getEnv("PWATCH_TLS_CERT", ""); tlsCert != "" {
		c.Server.TLSCert = tlsCert
	}
	if tlsKey := getEnv("PWATCH_TLS_KEY", ""); tlsKey != "" {
		c.Server.TLSKey = tlsKey
	}

	// Database config - check multiple env var names
	if host := getEnvMulti([]string{"PWATCH_DB_HOST", "DB_HOST", "POSTGRES_HOST"}, ""); host != "" {
		c.Database.Host = host
	}
	if port := getEnvAsIntMulti([]string{"PWATCH_DB_PORT", "DB_PORT", "POSTGRES_PORT"}, 0); port != 0 {
		c.Database.Port = port
	}
	if name := getEnvMulti([]string{"PWATCH_DB_NAME", "DB_NAME", "POSTGRES_DB"}, ""); name != "" {
		c.Database.Name = name
	}
	if user := getEnvMulti([]string{"PWATCH_DB_USER", "DB_USER", "POSTGRES_USER"}, ""); user != "" {
		c.Database.User = user
	}
	if password := getEnvMulti([]string{"PWATCH_DB_PASSWORD", "DB_PASSWORD", "POSTGRES_PASSWORD"}, ""); password != "" {
		c.Database.Password = password
	}
	if sslmode := getEnv("PWATCH_DB_SSLMODE", ""); sslmode != "" {
		c.Database.SSLMode = sslmode
	}
	if maxOpenConns := getEnvAsInt("PWATCH_DB_MAX_OPEN_CONNS", 0); maxOpenConns != 0 {
		c.Database.MaxOpenConns = maxOpenConns
	}
	if maxIdleConns := getEnvAsInt("PWATCH_DB_MAX_IDLE_CONNS", 0); maxIdleConns != 0 {
		c.Database.MaxIdleConns = maxIdleConns
	}
	if connMaxLifetime := getEnvAsDuration("PWATCH_DB_CONN_MAX_LIFETIME", 0); connMaxLifetime != 0 {
		c.Database.ConnMaxLifetime = connMaxLifetime
	}

	// Redis config
	if addr := getEnvMulti([]string{"PWATCH_REDIS_ADDR", "REDIS_ADDR"}, ""); addr != "" {
		c.Redis.Addr = addr
	}
	if password := getEnvMulti([]string{"PWATCH_REDIS_PASSWORD", "REDIS_PASSWORD"}, ""); password != "" {
		c.Redis.Password = password
	}
	if db := getEnvAsInt("PWATCH_REDIS_DB", -1); db >= 0 {
		c.Redis.DB = db
	}

	// Link config
	if port := getEnvAsInt("PWATCH_LINK_PORT", 0); port != 0 {
		c.Link.Port = port
	}
	if username := getEnv("PWATCH_LINK_USERNAME", ""); username != "" {
		c.Link.Username = username
	}
	if keepAlive := getEnvAsDuration("PWATCH_LINK_KEEPALIVE", 0); keepAlive != 0 {
		c.Link.KeepAlive = keepAlive
	}
	if timeout := getEnvAsDuration("PWATCH_LINK_CONNECT_TIMEOUT", 0); timeout != 0 {
		c.Link.ConnectTimeout = timeout
	}
	if trace := getEnv("PWATCH_LINK_TRACE", ""); trace == "true" {
		c.Link.Trace = true
	}
}
