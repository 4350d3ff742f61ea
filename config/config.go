package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Identity provider, session token, and edge gate configuration
//   - database.go: Document catalog and Redis configuration
//   - http.go: HTTP server configuration
//   - search.go: Search backend configuration
//   - llm.go: Language model configuration
//   - storage.go: Document storage configuration
//   - services.go: Service mode and ingestion runner configuration
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, verbose errors).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Guest mode configuration
	Guest GuestConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Vendor backends
	Search  SearchConfig
	LLM     LLMConfig
	Storage StorageConfig
	Maps    MapsConfig

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http"`

	// Ingestion runner configuration
	Ingest IngestConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Guest.Sanitize()
	c.HTTP.Sanitize()
	c.Search.Sanitize()
	c.LLM.Sanitize()
	c.Storage.Sanitize()
	c.Ingest.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsIngestRunnerEnabled returns true if the periodic ingestion runner is enabled.
func (c *AppConfig) IsIngestRunnerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeIngest]
}
