// Package gemini implements ports.ChatModel with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/heiraid/heiraid-api/internal/adapters/vendor"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

var _ ports.ChatModel = (*Chat)(nil)

// Config configures the Gemini client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string // optional API host override
	HTTPClient *http.Client
}

// Chat generates single-turn completions with a Gemini model.
type Chat struct {
	client *genai.Client
	model  string
}

// New creates a Gemini API client.
func New(ctx context.Context, cfg Config) (*Chat, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini model is required")
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Chat{client: client, model: cfg.Model}, nil
}

// Complete sends req.User with req.System as the system instruction.
func (c *Chat) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	gc := &genai.GenerateContentConfig{}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature != nil {
		gc.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), gc)
	if err != nil {
		return "", mapError(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperrors.Upstream("No completion returned", http.StatusBadGateway, errors.New("gemini: empty response"))
	}
	return text, nil
}

func mapError(err error) error {
	var (
		apiErr genai.APIError
		ptrErr *genai.APIError
	)
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &ptrErr) && ptrErr != nil:
		apiErr = *ptrErr
	default:
		return vendor.Wrap("gemini generate content", err)
	}
	msg := apiErr.Message
	if msg == "" {
		msg = vendor.DefaultMessage
	}
	return apperrors.Upstream(msg, apiErr.Code, err)
}
