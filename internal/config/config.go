package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverBolt     = "bolt"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Countdown   CountdownConfig
	Notify      NotifyConfig
	Stats       StatsConfig
	Templates   TemplatesConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxConn           int
	CORSAllowedOrigin string
}

// StoreConfig selects the record store. Bolt keeps everything in one local file.
type StoreConfig struct {
	Driver   string
	BoltPath string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

// RedisConfig enables the cross-instance timer event bus.
type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
	Channel  string
}

type CountdownConfig struct {
	Tick         time.Duration
	SyncInterval time.Duration
}

type NotifyConfig struct {
	Enabled bool
}

type StatsConfig struct {
	Timezone string
}

type TemplatesConfig struct {
	CatalogPath string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "powertimer"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:              getString("SERVER_HOST", "0.0.0.0"),
			Port:              getString("SERVER_PORT", "8080"),
			ReadTimeout:       getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:           getInt("SERVER_MAX_CONN", 0),
			CORSAllowedOrigin: getString("CORS_ALLOWED_ORIGIN", "*"),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(getString("STORE_DRIVER", StoreDriverBolt)),
			BoltPath: getString("BOLTDB_PATH", "./data/powertimer.db"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "powertimer"),
			User:            getString("DB_USER", "powertimer"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", false),
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			Channel:  getString("REDIS_CHANNEL", "powertimer:timers"),
		},
		Countdown: CountdownConfig{
			Tick:         getDuration("COUNTDOWN_TICK", time.Second),
			SyncInterval: getDuration("SYNC_INTERVAL_SECONDS", 30*time.Second),
		},
		Notify: NotifyConfig{
			Enabled: getBool("NOTIFY_ENABLED", false),
		},
		Stats: StatsConfig{
			Timezone: getString("STATS_TIMEZONE", "Local"),
		},
		Templates: TemplatesConfig{
			CatalogPath: os.Getenv("TEMPLATES_CATALOG_PATH"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverBolt:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (want %s or %s)", c.Store.Driver, StoreDriverPostgres, StoreDriverBolt)
	}
	if c.Countdown.Tick <= 0 {
		return fmt.Errorf("config: COUNTDOWN_TICK must be positive")
	}
	if _, err := c.Stats.Location(); err != nil {
		return fmt.Errorf("config: STATS_TIMEZONE: %w", err)
	}
	return nil
}

// Location resolves the timezone used to bucket "today" in statistics.
func (s StatsConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
