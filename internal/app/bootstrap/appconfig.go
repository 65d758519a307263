package bootstrap

import "time"

// AppConfig holds the sign-up app's own configuration. WAFFLE's CoreConfig
// covers ports, TLS, logging and the environment name.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Flash-message session cookie
	SessionKey  string // signing key; generated per process in dev when blank
	SessionName string

	// PreloadTimeout bounds the startup static-data preload, which includes
	// the first-use database initializer.
	PreloadTimeout time.Duration

	// SeedStaticData seeds empty countries/roles collections on first use.
	SeedStaticData bool

	// MetricsEnabled registers startup metrics and serves /metrics.
	MetricsEnabled bool
}
