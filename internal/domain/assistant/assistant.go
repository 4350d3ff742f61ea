// Package assistant holds the prompts and response shaping used by the legal assistant.
package assistant

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every assistant answer.
const SystemPrompt = "You are HeirAid, an AI Legal Assistant. Answer questions based on the provided legal documents. " +
	"If the answer is not in the documents, state that. If you are asked about sensitive private data " +
	"(e.g., specific individual's tax bills, forms), you must mention that access is restricted and you cannot " +
	"provide details without explicit access controls for the specific case. Ensure you respect user privacy and RBAC."

// FallbackContext replaces an empty retrieval context.
const FallbackContext = "No specific legal documents found. Provide general legal information if applicable."

// OutreachPrompt asks for outreach ideas for heirs' property owners.
const OutreachPrompt = "Suggest privacy-preserving outreach actions for heirs' property owners."

// SuggestionCount is the fixed number of outreach suggestions returned.
const SuggestionCount = 5

const (
	paddingSuggestion = "No additional suggestions available."
	emptySuggestion   = "No suggestions available at this time."
)

// DefaultLanguage needs no translation pass.
const DefaultLanguage = "en"

// BuildContext joins retrieved passages, substituting FallbackContext when nothing was found.
func BuildContext(passages []string) string {
	ctx := strings.Join(passages, "\n")
	if strings.TrimSpace(ctx) == "" {
		return FallbackContext
	}
	return ctx
}

// BuildUserPrompt formats the retrieval context and the question as one user turn.
func BuildUserPrompt(context, question string) string {
	return fmt.Sprintf("Context: %s\n\nQuestion: %s", context, question)
}

// NeedsTranslation reports whether answers must be translated into language.
func NeedsTranslation(language string) bool {
	l := strings.ToLower(strings.TrimSpace(language))
	return l != "" && l != DefaultLanguage
}

// TranslationPrompt returns the system prompt for translating an answer into language.
func TranslationPrompt(language string) string {
	return fmt.Sprintf("Translate the user's text into the language with code %q. "+
		"Reply with the translation only and keep legal terms precise.", strings.TrimSpace(language))
}

// NormalizeSuggestions splits a completion into lines and returns exactly SuggestionCount entries.
func NormalizeSuggestions(completion string) []string {
	var out []string
	for _, line := range strings.Split(completion, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == SuggestionCount {
			return out
		}
	}
	if len(out) == 0 {
		out = append(out, emptySuggestion)
	}
	for len(out) < SuggestionCount {
		out = append(out, paddingSuggestion)
	}
	return out
}
