package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeIngest runs the periodic document ingestion runner.
	ServiceModeIngest ServiceMode = "ingest"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeIngest,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeIngest:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, ingest)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// IngestConfig controls the document ingestion pipeline and its periodic runner.
type IngestConfig struct {
	// Containers lists the storage containers to ingest. Empty means every container.
	Containers []string `env:"INGEST_CONTAINERS" envSeparator:","`

	// Concurrency is the number of documents processed in parallel.
	Concurrency int `env:"INGEST_CONCURRENCY" envDefault:"4"`

	// Interval is the tick interval of the periodic runner (SERVICES=ingest).
	Interval time.Duration `env:"INGEST_INTERVAL" envDefault:"1h"`

	// MaxDocumentBytes caps the size of a single downloaded document.
	MaxDocumentBytes int64 `env:"INGEST_MAX_DOCUMENT_BYTES" envDefault:"10485760"`
}

// Sanitize applies guardrails to ingestion configuration values.
func (i *IngestConfig) Sanitize() {
	if i.Concurrency < 1 {
		i.Concurrency = 1
	}
	if i.Concurrency > 32 {
		i.Concurrency = 32
	}
	if i.Interval < time.Minute {
		i.Interval = time.Minute
	}
	if i.MaxDocumentBytes <= 0 {
		i.MaxDocumentBytes = 10 << 20
	}
	containers := i.Containers[:0]
	for _, c := range i.Containers {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			containers = append(containers, trimmed)
		}
	}
	i.Containers = containers
}
