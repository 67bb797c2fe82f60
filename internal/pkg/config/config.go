package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Map       MapConfig       `mapstructure:"map"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type SessionConfig struct {
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	Store      string `mapstructure:"store"` // memory | valkey
}

// TTL returns the idle session lifetime.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MapConfig is handed to the front end so it can draw the initial map.
type MapConfig struct {
	CenterLat   float64 `mapstructure:"center_lat" json:"center_lat"`
	CenterLon   float64 `mapstructure:"center_lon" json:"center_lon"`
	Zoom        int     `mapstructure:"zoom" json:"zoom"`
	TileURL     string  `mapstructure:"tile_url" json:"tile_url"`
	Attribution string  `mapstructure:"attribution" json:"attribution"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: PINMEASURE_SESSION_STORE → session.store
	v.SetEnvPrefix("PINMEASURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("session.ttl_seconds", 7200)
	v.SetDefault("session.store", "memory")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("map.center_lat", -29.62)
	v.SetDefault("map.center_lon", 24.08)
	v.SetDefault("map.zoom", 13)
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", "&copy; OpenStreetMap contributors")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Session.TTLSeconds <= 0 {
		errs = append(errs, "session.ttl_seconds must be positive")
	}
	switch c.Session.Store {
	case "memory":
	case "valkey":
		if c.Valkey.Addr == "" {
			errs = append(errs, "valkey.addr is required when session.store is valkey")
		}
	default:
		errs = append(errs, fmt.Sprintf("session.store must be memory or valkey, got %q", c.Session.Store))
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats.enabled is true")
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("map.center_lat must be -90..90, got %v", c.Map.CenterLat))
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		errs = append(errs, fmt.Sprintf("map.center_lon must be -180..180, got %v", c.Map.CenterLon))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		errs = append(errs, fmt.Sprintf("map.zoom must be 0-22, got %d", c.Map.Zoom))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
