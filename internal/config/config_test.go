package config_test

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"parcel-service/internal/config"
)

var envKeys = []string{
	"PORT", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"STORAGE_DRIVER", "ASSIGNMENT_POLICY", "PRICING_CONFIG_FILE", "PRICING_REFRESH_SPEC",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"KAFKA_BROKERS", "KAFKA_GROUP_ID", "KAFKA_TRACKING_TOPIC",
	"KAFKA_RETRY_ATTEMPTS", "KAFKA_RETRY_BASE_DELAY", "KAFKA_RETRY_MAX_DELAY",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_TTL", "RATE_LIMIT_MAX_CLIENTS",
	"LOG_BACKEND", "LOG_LEVEL", "PPROF_ADDR", "PPROF_USER", "PPROF_PASSWORD",
}

func resetFlags(t *testing.T, args ...string) {
	t.Helper()
	oldFlags, oldArgs := pflag.CommandLine, os.Args
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pflag.CommandLine = fs
	os.Args = append([]string{"cmd"}, args...)
	t.Cleanup(func() {
		pflag.CommandLine, os.Args = oldFlags, oldArgs
	})
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	resetFlags(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, config.DefaultDB(), cfg.DB)
	require.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
	require.Equal(t, "strict", cfg.Assignment.Policy)
	require.False(t, cfg.Assignment.Explicit)
	require.Equal(t, "@every 30s", cfg.Pricing.RefreshSpec)
	require.Empty(t, cfg.Redis.Addr)
	require.Equal(t, config.DefaultKafka(), cfg.Kafka)
	require.Equal(t, config.DefaultRateLimit(), cfg.RateLimit)
	require.Equal(t, "slog", cfg.Log.Backend)
	require.Empty(t, cfg.Pprof.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	resetFlags(t)

	t.Setenv("PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "15432")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p@ss")
	t.Setenv("POSTGRES_DB", "parcels")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("ASSIGNMENT_POLICY", "advisory")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_RETRY_ATTEMPTS", "8")
	t.Setenv("KAFKA_RETRY_MAX_DELAY", "3s")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_TTL", "30s")
	t.Setenv("LOG_BACKEND", "zap")
	t.Setenv("PPROF_ADDR", "127.0.0.1:6060")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "postgres://u:p%40ss@db:15432/parcels?sslmode=disable", cfg.DB.DSN())
	require.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	require.Equal(t, "advisory", cfg.Assignment.Policy)
	require.True(t, cfg.Assignment.Explicit)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 8, cfg.Kafka.RetryAttempts)
	require.Equal(t, config.DefaultKafka().RetryBaseDelay, cfg.Kafka.RetryBaseDelay)
	require.Equal(t, 3*time.Second, cfg.Kafka.RetryMaxDelay)
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, 30*time.Second, cfg.RateLimit.TTL)
	require.Equal(t, "zap", cfg.Log.Backend)
	require.Equal(t, "127.0.0.1:6060", cfg.Pprof.Addr)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	resetFlags(t, "--port=7070", "--storage=memory", "--assignment-policy=advisory")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Port)
	require.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	require.Equal(t, "advisory", cfg.Assignment.Policy)
	require.True(t, cfg.Assignment.Explicit)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"port not a number", map[string]string{"PORT": "eighty"}},
		{"postgres port", map[string]string{"POSTGRES_PORT": "not-a-number"}},
		{"storage driver", map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{"rate limit ttl", map[string]string{"RATE_LIMIT_TTL": "soon"}},
		{"rate limit enabled flag", map[string]string{"RATE_LIMIT_ENABLED": "maybe"}},
		{"rate limit zero rps", map[string]string{"RATE_LIMIT_ENABLED": "1", "RATE_LIMIT_RPS": "0"}},
		{"redis db", map[string]string{"REDIS_DB": "x"}},
		{"kafka retry attempts", map[string]string{"KAFKA_RETRY_ATTEMPTS": "0"}},
		{"kafka retry delay", map[string]string{"KAFKA_RETRY_BASE_DELAY": "fast"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			require.Error(t, err)
			require.Nil(t, cfg)
		})
	}
}

func TestLoad_FlagsParseError(t *testing.T) {
	resetFlags(t, "--port=not-a-number")

	cfg, err := config.Load()
	require.Error(t, err)
	require.Nil(t, cfg)
	require.Contains(t, err.Error(), "parse flags")
}
