// Package openaichat implements ports.ChatModel with the OpenAI API or an Azure OpenAI deployment.
package openaichat

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/heiraid/heiraid-api/internal/adapters/vendor"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

var _ ports.ChatModel = (*Chat)(nil)

// Config selects the endpoint and model. When AzureEndpoint is set the
// Azure OpenAI deployment named by Model is used.
type Config struct {
	APIKey          string
	BaseURL         string // OpenAI-compatible base URL, optional
	AzureEndpoint   string
	AzureAPIVersion string
	Model           string // model name, or deployment name on Azure
	HTTPClient      *http.Client
}

// Chat is a single-turn chat completion client.
type Chat struct {
	client openai.Client
	model  string
}

// New builds a Chat client. Retries are disabled; callers own the request budget.
func New(cfg Config) (*Chat, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is required")
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.AzureEndpoint != "" {
		opts = append(opts,
			azure.WithEndpoint(strings.TrimSuffix(cfg.AzureEndpoint, "/"), cfg.AzureAPIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Chat{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

// Complete sends a system and a user message and returns the first choice.
func (c *Chat) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.User))
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.Upstream("No completion returned", http.StatusBadGateway, errors.New("chat completion: empty choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = vendor.Message([]byte(apiErr.RawJSON()))
		}
		if msg == "" {
			msg = vendor.DefaultMessage
		}
		return apperrors.Upstream(msg, apiErr.StatusCode, err)
	}
	return vendor.Wrap("chat completion", err)
}
