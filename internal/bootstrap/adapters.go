package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heiraid/heiraid-api/config"
	"github.com/heiraid/heiraid-api/internal/adapters/azuresearch"
	"github.com/heiraid/heiraid-api/internal/adapters/gemini"
	"github.com/heiraid/heiraid-api/internal/adapters/openaichat"
	"github.com/heiraid/heiraid-api/internal/adapters/opensearch"
	"github.com/heiraid/heiraid-api/internal/adapters/s3store"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// vendorHTTPClient carries no timeout of its own; vendor calls end with the
// request context that started them.
func vendorHTTPClient() *http.Client {
	return &http.Client{Transport: http.DefaultTransport}
}

// BuildSearchIndex creates the configured search backend. It returns nil, nil
// when the backend is not configured; the search routes then answer 500.
//
//nolint:ireturn // the backend is selected at runtime.
func BuildSearchIndex(cfg config.SearchConfig, logger *slog.Logger) (ports.SearchIndex, error) {
	if !cfg.Configured() {
		logger.Warn("search backend not configured", "backend", cfg.Backend)
		return nil, nil
	}

	switch cfg.Backend {
	case config.SearchBackendOpenSearch:
		idx, err := opensearch.New(opensearch.Config{
			Addresses:  cfg.OpenSearch.Addresses,
			Username:   cfg.OpenSearch.Username,
			Password:   cfg.OpenSearch.Password,
			MaxRetries: cfg.OpenSearch.MaxRetries,
			Index:      cfg.IndexName,
		})
		if err != nil {
			return nil, fmt.Errorf("build opensearch index: %w", err)
		}
		logger.Info("search backend ready", "backend", cfg.Backend, "index", cfg.IndexName)
		return idx, nil
	default:
		client, err := azuresearch.New(azuresearch.Options{
			Endpoint:   cfg.Azure.Endpoint,
			APIKey:     cfg.Azure.APIKey,
			Index:      cfg.IndexName,
			APIVersion: cfg.Azure.APIVersion,
			HTTPClient: vendorHTTPClient(),
		})
		if err != nil {
			return nil, fmt.Errorf("build azure search client: %w", err)
		}
		logger.Info("search backend ready", "backend", cfg.Backend, "index", cfg.IndexName)
		return client, nil
	}
}

// BuildChatModel creates the configured language model client, or nil when
// the provider has no credentials.
//
//nolint:ireturn // the vendor is selected at runtime.
func BuildChatModel(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (ports.ChatModel, error) {
	if !cfg.Configured() {
		logger.Warn("language model not configured", "provider", cfg.Provider)
		return nil, nil
	}

	switch cfg.Provider {
	case config.LLMProviderGemini:
		chat, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.Model,
			HTTPClient: vendorHTTPClient(),
		})
		if err != nil {
			return nil, fmt.Errorf("build gemini client: %w", err)
		}
		return chat, nil
	case config.LLMProviderOpenAI:
		chat, err := openaichat.New(openaichat.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.Model,
			HTTPClient: vendorHTTPClient(),
		})
		if err != nil {
			return nil, fmt.Errorf("build openai client: %w", err)
		}
		return chat, nil
	default:
		chat, err := openaichat.New(openaichat.Config{
			APIKey:          cfg.AzureAPIKey,
			AzureEndpoint:   cfg.AzureEndpoint,
			AzureAPIVersion: cfg.AzureAPIVersion,
			Model:           cfg.AzureDeployment,
			HTTPClient:      vendorHTTPClient(),
		})
		if err != nil {
			return nil, fmt.Errorf("build azure openai client: %w", err)
		}
		return chat, nil
	}
}

// BuildBlobStore creates the document storage client, or nil when storage is disabled.
func BuildBlobStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*s3store.Store, error) {
	if !cfg.Enabled {
		logger.Info("document storage disabled")
		return nil, nil
	}
	store, err := s3store.New(ctx, s3store.Config{
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretKey:       cfg.SecretKey,
		Endpoint:        cfg.Endpoint,
		ForcePathStyle:  cfg.ForcePathStyle,
		ContainerPrefix: cfg.ContainerPrefix,
		HTTPClient:      vendorHTTPClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("build storage client: %w", err)
	}
	return store, nil
}
