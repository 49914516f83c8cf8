package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config stores service and worker settings.
type Config struct {
	Port       int
	DB         DB
	Storage    Storage
	Assignment Assignment
	Pricing    Pricing
	Redis      Redis
	Kafka      Kafka
	RateLimit  RateLimit
	Log        Log
	Pprof      Pprof
}

// DB stores postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns a postgres connection URL.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Storage selects the persistence driver.
type Storage struct {
	Driver string
}

// Assignment stores the courier assignment policy name.
type Assignment struct {
	Policy string
	// Explicit is false when the policy fell back to the default.
	Explicit bool
}

// Pricing stores pricing config sources.
type Pricing struct {
	ConfigFile  string
	RefreshSpec string
}

// Redis stores the pricing cache connection. An empty Addr disables the cache.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Kafka stores the scan event consumer settings.
type Kafka struct {
	Brokers       []string
	GroupID       string
	TrackingTopic string

	// Retries of a scan that lost an optimistic-lock race.
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// Pprof stores the debug listener settings. An empty Addr disables it.
type Pprof struct {
	Addr string
	User string
	Pass string
}

// RateLimit stores per-client HTTP rate limit settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxClients int
}

// Log stores logger settings.
type Log struct {
	Backend string
	Level   string
}

// Load reads configuration in order: .env (if present), environment, flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:       defaultPort,
		DB:         defaultDB,
		Storage:    defaultStorage,
		Assignment: defaultAssignment,
		Pricing:    defaultPricing,
		Redis:      defaultRedis,
		Kafka:      defaultKafka,
		RateLimit:  defaultRateLimit,
		Log:        defaultLog,
	}
	if err := fromEnv(cfg); err != nil {
		return nil, err
	}

	fs := pflag.CommandLine
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.Storage.Driver, "storage", cfg.Storage.Driver, "storage driver: postgres or memory")
	policy := fs.String("assignment-policy", cfg.Assignment.Policy, "courier assignment policy: strict or advisory")
	fs.StringVar(&cfg.Pricing.ConfigFile, "pricing-config", cfg.Pricing.ConfigFile, "TOML seed with pricing configs and couriers")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if fs.Changed("assignment-policy") {
		cfg.Assignment.Policy = *policy
		cfg.Assignment.Explicit = true
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv(cfg *Config) error {
	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return err
	}

	cfg.DB.Host = envString("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envString("POSTGRES_PORT", cfg.DB.Port)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		return fmt.Errorf("invalid POSTGRES_PORT %q", cfg.DB.Port)
	}
	cfg.DB.User = envString("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = envString("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = envString("POSTGRES_DB", cfg.DB.Name)

	cfg.Storage.Driver = strings.ToLower(envString("STORAGE_DRIVER", cfg.Storage.Driver))

	if v := os.Getenv("ASSIGNMENT_POLICY"); v != "" {
		cfg.Assignment.Policy = strings.ToLower(v)
		cfg.Assignment.Explicit = true
	}

	cfg.Pricing.ConfigFile = envString("PRICING_CONFIG_FILE", cfg.Pricing.ConfigFile)
	cfg.Pricing.RefreshSpec = envString("PRICING_REFRESH_SPEC", cfg.Pricing.RefreshSpec)

	cfg.Redis.Addr = envString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envString("REDIS_PASSWORD", cfg.Redis.Password)
	if cfg.Redis.DB, err = envInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	cfg.Kafka.GroupID = envString("KAFKA_GROUP_ID", cfg.Kafka.GroupID)
	cfg.Kafka.TrackingTopic = envString("KAFKA_TRACKING_TOPIC", cfg.Kafka.TrackingTopic)
	if cfg.Kafka.RetryAttempts, err = envInt("KAFKA_RETRY_ATTEMPTS", cfg.Kafka.RetryAttempts); err != nil {
		return err
	}
	if cfg.Kafka.RetryBaseDelay, err = envDuration("KAFKA_RETRY_BASE_DELAY", cfg.Kafka.RetryBaseDelay); err != nil {
		return err
	}
	if cfg.Kafka.RetryMaxDelay, err = envDuration("KAFKA_RETRY_MAX_DELAY", cfg.Kafka.RetryMaxDelay); err != nil {
		return err
	}

	if cfg.RateLimit.Enabled, err = envBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled); err != nil {
		return err
	}
	if cfg.RateLimit.Rate, err = envFloat("RATE_LIMIT_RPS", cfg.RateLimit.Rate); err != nil {
		return err
	}
	if cfg.RateLimit.Burst, err = envInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst); err != nil {
		return err
	}
	if cfg.RateLimit.TTL, err = envDuration("RATE_LIMIT_TTL", cfg.RateLimit.TTL); err != nil {
		return err
	}
	if cfg.RateLimit.MaxClients, err = envInt("RATE_LIMIT_MAX_CLIENTS", cfg.RateLimit.MaxClients); err != nil {
		return err
	}

	cfg.Pprof.Addr = envString("PPROF_ADDR", cfg.Pprof.Addr)
	cfg.Pprof.User = envString("PPROF_USER", cfg.Pprof.User)
	cfg.Pprof.Pass = envString("PPROF_PASSWORD", cfg.Pprof.Pass)

	cfg.Log.Backend = strings.ToLower(envString("LOG_BACKEND", cfg.Log.Backend))
	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)
	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid storage driver %q", c.Storage.Driver)
	}
	if c.Kafka.RetryAttempts <= 0 {
		return fmt.Errorf("kafka: retry attempts must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit: rps and burst must be positive")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
