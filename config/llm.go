package config

import (
	"fmt"
	"strings"
)

// LLMProvider selects the language model vendor.
type LLMProvider string

const (
	LLMProviderOpenAI LLMProvider = "openai"
	LLMProviderAzure  LLMProvider = "azure"
	LLMProviderGemini LLMProvider = "gemini"
)

// UnmarshalText implements encoding.TextUnmarshaler for LLMProvider.
func (p *LLMProvider) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "openai", "azure", "gemini":
		*p = LLMProvider(v)
		return nil
	default:
		return fmt.Errorf("invalid LLMProvider: %q (valid options: openai, azure, gemini)", v)
	}
}

// LLMConfig contains language model configuration.
type LLMConfig struct {
	Provider LLMProvider `env:"LLM_PROVIDER" envDefault:"azure"`

	// OpenAI (and OpenAI-compatible) settings.
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	// Azure OpenAI settings.
	AzureEndpoint   string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIKey     string `env:"AZURE_OPENAI_API_KEY"`
	AzureDeployment string `env:"AZURE_OPENAI_CHAT_DEPLOYMENT_NAME" envDefault:"gpt-4o"`
	AzureAPIVersion string `env:"AZURE_OPENAI_API_VERSION"          envDefault:"2024-06-01"`

	// Gemini settings.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// Model is the chat model name for openai and gemini providers.
	Model string `env:"LLM_MODEL" envDefault:"gpt-4o"`

	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS"  envDefault:"800"`
}

// Sanitize applies guardrails to language model configuration values.
func (l *LLMConfig) Sanitize() {
	l.AzureEndpoint = strings.TrimSuffix(strings.TrimSpace(l.AzureEndpoint), "/")
	if l.Temperature < 0 {
		l.Temperature = 0
	}
	if l.Temperature > 2 {
		l.Temperature = 2
	}
	if l.MaxTokens < 1 {
		l.MaxTokens = 800
	}
	if l.Provider == LLMProviderGemini && l.Model == "gpt-4o" {
		l.Model = "gemini-2.0-flash"
	}
}

// Configured reports whether the selected provider has credentials.
func (l LLMConfig) Configured() bool {
	switch l.Provider {
	case LLMProviderOpenAI:
		return l.OpenAIAPIKey != ""
	case LLMProviderGemini:
		return l.GeminiAPIKey != ""
	default:
		return l.AzureEndpoint != "" && l.AzureAPIKey != ""
	}
}
