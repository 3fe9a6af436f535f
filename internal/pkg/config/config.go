package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	VWorld    VWorldConfig    `mapstructure:"vworld"`
	TMAP      TMAPConfig      `mapstructure:"tmap"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Map       MapConfig       `mapstructure:"map"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	CORSOrigins    string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// VWorldConfig configures the cadastral parcel and tile provider.
type VWorldConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	TileURL string `mapstructure:"tile_url"`
	Domain  string `mapstructure:"domain"`
	Timeout int    `mapstructure:"timeout"`
}

// TMAPConfig configures the route-prediction provider.
type TMAPConfig struct {
	AppKey        string `mapstructure:"app_key"`
	PredictionURL string `mapstructure:"prediction_url"`
	Timeout       int    `mapstructure:"timeout"`
}

// StorageConfig selects the entity store: "memory" (seeded fixtures) or "postgres".
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

// CacheConfig tunes parcel caching. The in-process cache is used when Valkey is off.
type CacheConfig struct {
	ParcelTTL int `mapstructure:"parcel_ttl"` // seconds
	Size      int `mapstructure:"size"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Enabled   bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// MapConfig tunes map sessions and the animation stream.
type MapConfig struct {
	SessionTTL  int `mapstructure:"session_ttl"` // idle seconds
	MaxSessions int `mapstructure:"max_sessions"`
	TickMillis  int `mapstructure:"tick_ms"`
}

// Tick is the animation frame interval.
func (m MapConfig) Tick() time.Duration {
	return time.Duration(m.TickMillis) * time.Millisecond
}

// legacyEnv maps keys to the environment names older deployments used.
var legacyEnv = map[string]string{
	"vworld.api_key":      "NEXT_PUBLIC_VWORLD_KEY",
	"tmap.app_key":        "TMAP_APP_KEY",
	"tmap.prediction_url": "TMAP_PREDICTION_URL",
}

// Load reads configuration from .env files, an optional config file and
// environment variables.
func Load(service string) (*Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.request_timeout", 15)
	v.SetDefault("server.cors_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("vworld.base_url", "https://api.vworld.kr/req/data")
	v.SetDefault("vworld.tile_url", "https://api.vworld.kr/req/wmts/1.0.0")
	v.SetDefault("vworld.domain", "localhost")
	v.SetDefault("vworld.timeout", 10)
	v.SetDefault("tmap.timeout", 15)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "citrus")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "citrusfield")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("cache.parcel_ttl", 3600)
	v.SetDefault("cache.size", 10000)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "civil-requests")
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("map.session_ttl", 1800)
	v.SetDefault("map.max_sessions", 1000)
	v.SetDefault("map.tick_ms", 33)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CITRUSFIELD_VWORLD_API_KEY → vworld.api_key
	v.SetEnvPrefix("CITRUSFIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envName := "CITRUSFIELD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotEnv loads the files in order without overriding variables already set.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks that required configuration fields are present and sane.
// Provider credentials are optional here; the endpoints that need them
// report the gap per request.
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
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.VWorld.BaseURL == "" {
		errs = append(errs, "vworld.base_url is required")
	}
	if c.VWorld.Timeout <= 0 || c.TMAP.Timeout <= 0 {
		errs = append(errs, "provider timeouts must be positive")
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver must be memory or postgres, got %q", c.Storage.Driver))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, "cache.size must be positive")
	}
	if c.Temporal.Enabled && (c.Temporal.HostPort == "" || c.Temporal.TaskQueue == "") {
		errs = append(errs, "temporal.host_port and temporal.task_queue are required")
	}
	if c.Map.SessionTTL <= 0 {
		errs = append(errs, "map.session_ttl must be positive")
	}
	if c.Map.MaxSessions <= 0 {
		errs = append(errs, "map.max_sessions must be positive")
	}
	if c.Map.TickMillis <= 0 {
		errs = append(errs, "map.tick_ms must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
