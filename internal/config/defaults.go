package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultStorage = Storage{Driver: DriverPostgres}

var defaultAssignment = Assignment{Policy: "strict"}

var defaultPricing = Pricing{
	ConfigFile:  "configs/seed.toml",
	RefreshSpec: "@every 30s",
}

var defaultRedis = Redis{}

var defaultKafka = Kafka{
	Brokers:       []string{"localhost:9092"},
	GroupID:       "parcel-tracking",
	TrackingTopic: "parcel.scans",

	RetryAttempts:  5,
	RetryBaseDelay: 50 * time.Millisecond,
	RetryMaxDelay:  time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    false,
	Rate:       10,
	Burst:      20,
	TTL:        5 * time.Minute,
	MaxClients: 10000,
}

var defaultLog = Log{
	Backend: "slog",
	Level:   "info",
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default scan consumer settings.
func DefaultKafka() Kafka {
	k := defaultKafka
	k.Brokers = append([]string(nil), defaultKafka.Brokers...)
	return k
}

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
