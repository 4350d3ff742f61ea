package config

import (
	"fmt"
	"strings"
)

// SearchBackend selects the search index implementation.
type SearchBackend string

const (
	// SearchBackendAzure uses the Azure AI Search REST API.
	SearchBackendAzure SearchBackend = "azure"
	// SearchBackendOpenSearch uses an OpenSearch cluster.
	SearchBackendOpenSearch SearchBackend = "opensearch"
)

// UnmarshalText implements encoding.TextUnmarshaler for SearchBackend.
func (b *SearchBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "azure", "opensearch":
		*b = SearchBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SearchBackend: %q (valid options: azure, opensearch)", v)
	}
}

// AzureSearchConfig contains Azure AI Search settings.
type AzureSearchConfig struct {
	Endpoint   string `env:"ENDPOINT"`
	APIKey     string `env:"API_KEY"`
	APIVersion string `env:"API_VERSION" envDefault:"2023-11-01"`
}

// OpenSearchConfig contains OpenSearch cluster settings.
type OpenSearchConfig struct {
	Addresses  []string `env:"ADDRESSES"   envSeparator:","`
	Username   string   `env:"USERNAME"`
	Password   string   `env:"PASSWORD"`
	MaxRetries int      `env:"MAX_RETRIES" envDefault:"0"`
}

// SearchConfig groups search backend configuration.
type SearchConfig struct {
	Backend SearchBackend `env:"SEARCH_BACKEND" envDefault:"azure"`

	// IndexName is the index holding ingested legal documents.
	IndexName string `env:"SEARCH_INDEX_NAME" envDefault:"heiraid-index"`

	Azure      AzureSearchConfig `envPrefix:"AZURE_SEARCH_"`
	OpenSearch OpenSearchConfig  `envPrefix:"OPENSEARCH_"`
}

// Sanitize applies guardrails to search configuration values.
func (s *SearchConfig) Sanitize() {
	s.Azure.Endpoint = strings.TrimSuffix(strings.TrimSpace(s.Azure.Endpoint), "/")
	if s.IndexName == "" {
		s.IndexName = "heiraid-index"
	}
	if s.OpenSearch.MaxRetries < 0 {
		s.OpenSearch.MaxRetries = 0
	}
}

// Configured reports whether the selected backend has enough settings to be built.
func (s SearchConfig) Configured() bool {
	switch s.Backend {
	case SearchBackendOpenSearch:
		return len(s.OpenSearch.Addresses) > 0
	default:
		return s.Azure.Endpoint != "" && s.Azure.APIKey != ""
	}
}
