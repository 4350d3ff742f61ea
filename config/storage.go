package config

import "strings"

// StorageConfig contains S3-compatible document storage configuration.
// Buckets play the role of document containers.
type StorageConfig struct {
	Region         string `env:"STORAGE_REGION"           envDefault:"us-east-1"`
	AccessKeyID    string `env:"STORAGE_ACCESS_KEY_ID"`
	SecretKey      string `env:"STORAGE_SECRET_ACCESS_KEY"`
	Endpoint       string `env:"STORAGE_ENDPOINT"`
	ForcePathStyle bool   `env:"STORAGE_FORCE_PATH_STYLE" envDefault:"false"`

	// ContainerPrefix restricts listed buckets to names starting with this prefix.
	ContainerPrefix string `env:"STORAGE_CONTAINER_PREFIX"`

	// Enabled switches the storage routes and ingestion on.
	Enabled bool `env:"STORAGE_ENABLED" envDefault:"false"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.ContainerPrefix = strings.TrimSpace(s.ContainerPrefix)
	if s.Region == "" {
		s.Region = "us-east-1"
	}
}
