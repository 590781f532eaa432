package llm

import "strings"

// Model is a selectable model identifier.
type Model struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Provider Tag    `json:"provider"`
}

var catalog = []Model{
	{ID: "gemini-3.1-pro-preview", Label: "Gemini 3.1 Pro (Preview)", Provider: TagGemini},
	{ID: "gemini-3-pro-preview", Label: "Gemini 3 Pro (Preview)", Provider: TagGemini},
	{ID: "gemini-3-flash-preview", Label: "Gemini 3 Flash (Preview)", Provider: TagGemini},
	{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro", Provider: TagGemini},
	{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash", Provider: TagGemini},
	{ID: "gemini-2.5-flash-lite", Label: "Gemini 2.5 Flash Lite", Provider: TagGemini},
	{ID: "gemini-2.0-flash", Label: "Gemini 2.0 Flash", Provider: TagGemini},
	{ID: "gemini-2.0-flash-lite", Label: "Gemini 2.0 Flash Lite", Provider: TagGemini},
	{ID: "claude-opus-4-6", Label: "Claude Opus 4.6", Provider: TagClaude},
	{ID: "claude-sonnet-4-6", Label: "Claude Sonnet 4.6", Provider: TagClaude},
	{ID: "claude-opus-4-5", Label: "Claude Opus 4.5", Provider: TagClaude},
	{ID: "claude-sonnet-4-5", Label: "Claude Sonnet 4.5", Provider: TagClaude},
	{ID: "claude-haiku-4-5", Label: "Claude Haiku 4.5", Provider: TagClaude},
	{ID: "claude-opus-4-1", Label: "Claude Opus 4.1", Provider: TagClaude},
	{ID: "claude-sonnet-4-0", Label: "Claude Sonnet 4", Provider: TagClaude},
	{ID: "claude-opus-4-0", Label: "Claude Opus 4", Provider: TagClaude},
	{ID: "claude-3-7-sonnet-20250219", Label: "Claude 3.7 Sonnet", Provider: TagClaude},
	{ID: "claude-3-haiku-20240307", Label: "Claude 3 Haiku", Provider: TagClaude},
	{ID: "gpt-4.1", Label: "GPT-4.1", Provider: TagOpenAI},
	{ID: "gpt-4o", Label: "GPT-4o", Provider: TagOpenAI},
	{ID: "gpt-4o-mini", Label: "GPT-4o mini", Provider: TagOpenAI},
	{ID: "o4-mini", Label: "o4-mini", Provider: TagOpenAI},
}

// Models returns the model catalog.
func Models() []Model {
	return append([]Model(nil), catalog...)
}

// DefaultModel returns the first catalog model for tag.
func DefaultModel(tag Tag) string {
	for _, m := range catalog {
		if m.Provider == tag {
			return m.ID
		}
	}
	return ""
}

// ProviderForModel derives the provider from a model identifier. Unknown
// identifiers are sent to Gemini.
func ProviderForModel(model string) Tag {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "claude"):
		return TagClaude
	case strings.HasPrefix(m, "gpt-"),
		strings.HasPrefix(m, "o1"),
		strings.HasPrefix(m, "o3"),
		strings.HasPrefix(m, "o4"):
		return TagOpenAI
	default:
		return TagGemini
	}
}
