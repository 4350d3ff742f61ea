package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heiraid/heiraid-api/internal/domain/assistant"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// AssistantSettings tunes completions. A nil Temperature selects
// DefaultTemperature; zero is a valid setting.
type AssistantSettings struct {
	Temperature *float64
	MaxTokens   int
}

// Default completion settings.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 800
)

// AssistantServiceOptions groups dependencies for AssistantService.
type AssistantServiceOptions struct {
	Search   *SearchService
	Chat     ports.ChatModel
	Settings AssistantSettings
	Logger   *slog.Logger
}

// AssistantService answers legal questions grounded on indexed documents.
type AssistantService struct {
	search   *SearchService
	chat     ports.ChatModel
	settings AssistantSettings
	logger   *slog.Logger
}

// NewAssistantService constructs an AssistantService.
func NewAssistantService(opts AssistantServiceOptions) *AssistantService {
	s := &AssistantService{
		search:   opts.Search,
		chat:     opts.Chat,
		settings: opts.Settings,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.settings.Temperature == nil {
		t := DefaultTemperature
		s.settings.Temperature = &t
	}
	if s.settings.MaxTokens <= 0 {
		s.settings.MaxTokens = DefaultMaxTokens
	}
	return s
}

// AskInput is a question with an optional answer language.
type AskInput struct {
	Query    string
	Language string
}

// Answer is the assistant reply and the documents it was grounded on.
type Answer struct {
	Answer  string              `json:"answer"`
	Sources []document.Document `json:"sources"`
}

// Ask retrieves context for the question, asks the model and translates the
// answer when a non-default language is requested.
func (s *AssistantService) Ask(ctx context.Context, in AskInput) (*Answer, error) {
	if err := ValidateQuery(in.Query); err != nil {
		return nil, err
	}
	if s.chat == nil {
		return nil, apperrors.Unavailable("Language model is not configured.")
	}

	var sources []document.Document
	if s.search != nil {
		docs, err := s.search.Retrieve(ctx, in.Query)
		if err != nil {
			return nil, err
		}
		sources = docs
	}
	if sources == nil {
		sources = []document.Document{}
	}

	passages := make([]string, 0, len(sources))
	for _, d := range sources {
		passages = append(passages, d.Content)
	}

	answer, err := s.chat.Complete(ctx, ports.ChatRequest{
		System:      assistant.SystemPrompt,
		User:        assistant.BuildUserPrompt(assistant.BuildContext(passages), in.Query),
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}

	if assistant.NeedsTranslation(in.Language) {
		translated, terr := s.translate(ctx, answer, in.Language)
		if terr != nil {
			return nil, terr
		}
		answer = translated
	}

	s.logger.DebugContext(ctx, "assistant answered", "sources", len(sources), "language", in.Language)
	return &Answer{Answer: answer, Sources: sources}, nil
}

func (s *AssistantService) translate(ctx context.Context, text, language string) (string, error) {
	out, err := s.chat.Complete(ctx, ports.ChatRequest{
		System:      assistant.TranslationPrompt(language),
		User:        text,
		Temperature: new(float64),
		MaxTokens:   s.settings.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("translate answer to %s: %w", language, err)
	}
	return strings.TrimSpace(out), nil
}

// OutreachSuggestions asks the model for outreach actions and returns exactly
// assistant.SuggestionCount lines.
func (s *AssistantService) OutreachSuggestions(ctx context.Context) ([]string, error) {
	if s.chat == nil {
		return nil, apperrors.Unavailable("Language model is not configured.")
	}
	out, err := s.chat.Complete(ctx, ports.ChatRequest{
		User:        assistant.OutreachPrompt,
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("outreach suggestions: %w", err)
	}
	return assistant.NormalizeSuggestions(out), nil
}
