package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers understood by the persistence layer.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultMongoURI is used when MONGODB_URI is not set at all.
const DefaultMongoURI = "mongodb://localhost:27017"

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Database DatabaseConfig `yaml:"database"`
	Health   HealthConfig   `yaml:"health"`
	Probe    ProbeConfig    `yaml:"probe"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	APIKey             string   `yaml:"api_key"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitPerSec    float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds    int      `yaml:"cache_ttl_seconds"`
	Version            string   `yaml:"version"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// AllowAllOrigins reports whether CORS is open to any origin.
func (s ServerConfig) AllowAllOrigins() bool {
	return len(s.CORSAllowedOrigins) == 1 && s.CORSAllowedOrigins[0] == "*"
}

// AuthEnabled reports whether mutating routes require an API key.
func (s ServerConfig) AuthEnabled() bool {
	return s.APIKey != ""
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

// MongoConfig holds the MongoDB connection configuration.
type MongoConfig struct {
	URI                      string `yaml:"uri"`
	Database                 string `yaml:"database"`
	DevicesCollection        string `yaml:"devices_collection"`
	LogsCollection           string `yaml:"logs_collection"`
	MaxPoolSize              uint64 `yaml:"max_pool_size"`
	ConnectTimeoutMS         int    `yaml:"connect_timeout_ms"`
	SocketTimeoutMS          int    `yaml:"socket_timeout_ms"`
	ServerSelectionTimeoutMS int    `yaml:"server_selection_timeout_ms"`
}

// DatabaseConfig holds the relational database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// HealthConfig controls the store probe reported by /health.
type HealthConfig struct {
	StoreTimeoutMS int           `yaml:"store_timeout_ms"`
	StoreTimeout   time.Duration `yaml:"-"`
}

// ProbeConfig controls the device reachability probe.
type ProbeConfig struct {
	Enabled   bool          `yaml:"enabled"`
	TimeoutMS int           `yaml:"timeout_ms"`
	Timeout   time.Duration `yaml:"-"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfigured reports whether the selected backend has connection
// settings. When it does not, /health skips the connectivity probe.
func (c *Config) StoreConfigured() bool {
	if c.Store.Driver == DriverMongo {
		return c.Mongo.URI != ""
	}
	return c.Database.DSN != ""
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               3001,
			CORSAllowedOrigins: []string{"*"},
			RateLimitBurst:     10,
			Version:            "1.0.0",
		},
		Store: StoreConfig{Driver: DriverMongo},
		Mongo: MongoConfig{
			URI:                      DefaultMongoURI,
			Database:                 "device_inventory",
			DevicesCollection:        "devices",
			LogsCollection:           "logs",
			MaxPoolSize:              100,
			ConnectTimeoutMS:         5000,
			SocketTimeoutMS:          10000,
			ServerSelectionTimeoutMS: 5000,
		},
		Database: DatabaseConfig{
			MaxOpenConns:           25,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 30,
		},
		Health: HealthConfig{StoreTimeoutMS: 1000},
		Probe:  ProbeConfig{TimeoutMS: 1000},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and the process environment,
// in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring unreadable .env file: %v", err)
	}

	applyEnv(cfg)
	normalize(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString("SERVER_HOST", &cfg.Server.Host)
	setInt("SERVER_PORT", &cfg.Server.Port)
	setString("API_KEY", &cfg.Server.APIKey)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.CORSAllowedOrigins = ParseOrigins(v)
	}
	setFloat("RATE_LIMIT_PER_SEC", &cfg.Server.RateLimitPerSec)
	setInt("RATE_LIMIT_BURST", &cfg.Server.RateLimitBurst)
	setInt("CACHE_TTL_SECONDS", &cfg.Server.CacheTTLSeconds)
	setString("APP_VERSION", &cfg.Server.Version)

	setString("STORE_DRIVER", &cfg.Store.Driver)

	setStringOrClear("MONGODB_URI", &cfg.Mongo.URI)
	setString("MONGODB_DB_NAME", &cfg.Mongo.Database)
	setString("MONGODB_COLLECTION_DEVICES", &cfg.Mongo.DevicesCollection)
	setString("MONGODB_COLLECTION_LOGS", &cfg.Mongo.LogsCollection)
	setUint("MONGODB_MAX_POOL_SIZE", &cfg.Mongo.MaxPoolSize)
	setInt("MONGODB_CONNECT_TIMEOUT_MS", &cfg.Mongo.ConnectTimeoutMS)
	setInt("MONGODB_SOCKET_TIMEOUT_MS", &cfg.Mongo.SocketTimeoutMS)
	setInt("MONGODB_SERVER_SELECTION_TIMEOUT_MS", &cfg.Mongo.ServerSelectionTimeoutMS)

	setString("DATABASE_DSN", &cfg.Database.DSN)
	setInt("DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	setInt("DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	setInt("DB_CONN_MAX_LIFETIME_MINUTES", &cfg.Database.ConnMaxLifetimeMinutes)

	setInt("HEALTH_DB_TIMEOUT_MS", &cfg.Health.StoreTimeoutMS)

	setBool("PING_ENABLED", &cfg.Probe.Enabled)
	setInt("PING_TIMEOUT_MS", &cfg.Probe.TimeoutMS)

	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
}

func normalize(cfg *Config) {
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	switch cfg.Store.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		log.Printf("unknown store driver %q; defaulting to %s", cfg.Store.Driver, DriverMongo)
		cfg.Store.Driver = DriverMongo
	}

	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 1
	}

	if cfg.Health.StoreTimeoutMS <= 0 {
		cfg.Health.StoreTimeoutMS = 1000
	}
	cfg.Health.StoreTimeout = time.Duration(cfg.Health.StoreTimeoutMS) * time.Millisecond

	if cfg.Probe.TimeoutMS <= 0 {
		cfg.Probe.TimeoutMS = 1000
	}
	cfg.Probe.Timeout = time.Duration(cfg.Probe.TimeoutMS) * time.Millisecond
}

// ParseOrigins turns a CORS_ALLOWED_ORIGINS value into an allow-list.
// "*" (or an empty value) means any origin.
func ParseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "*" {
		return []string{"*"}
	}

	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setStringOrClear is setString, except that a variable set to the empty
// string clears dst.
func setStringOrClear(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("%s=%q is not an integer; keeping %d", key, v, *dst)
		return
	}
	*dst = n
}

func setUint(key string, dst *uint64) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		log.Printf("%s=%q is not a positive integer; keeping %d", key, v, *dst)
		return
	}
	*dst = n
}

func setFloat(key string, dst *float64) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		log.Printf("%s=%q is not a number; keeping %v", key, v, *dst)
		return
	}
	*dst = f
}

// setBool accepts 1/true/yes (any case) as true; anything else is false.
func setBool(key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		*dst = true
	default:
		*dst = false
	}
}
