package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Tag identifies an AI provider.
type Tag string

const (
	TagGemini Tag = "gemini"
	TagClaude Tag = "claude"
	TagOpenAI Tag = "openai"
)

// Tags lists every supported provider in display order.
func Tags() []Tag { return []Tag{TagGemini, TagClaude, TagOpenAI} }

// ParseTag validates a provider name.
func ParseTag(raw string) (Tag, error) {
	tag := Tag(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range Tags() {
		if t == tag {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
}

// Label is the human-readable provider name.
func (t Tag) Label() string {
	switch t {
	case TagGemini:
		return "Gemini"
	case TagClaude:
		return "Claude"
	case TagOpenAI:
		return "OpenAI"
	}
	return string(t)
}

// KeyName is the fixed storage name of the provider's API key.
func (t Tag) KeyName() string {
	return strings.ToUpper(string(t)) + "_API_KEY"
}

// Role is the speaker of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role
	Text string
}

// AnalyzeRequest is a single rubric-coding call.
type AnalyzeRequest struct {
	Model  string
	System string
	Prompt string
}

// ChatRequest is one conversational turn with prior history.
type ChatRequest struct {
	Model   string
	System  string
	History []Turn
	Message string
}

// Provider is a completion backend. Analyze returns the raw response text,
// which is expected to hold a JSON object.
type Provider interface {
	Tag() Tag
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingKey      = errors.New("api key is required")
	ErrEmptyResponse   = errors.New("empty response from provider")
)

// APIError is a non-success response from a provider.
type APIError struct {
	Provider   Tag
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("%s API error: %d", e.Provider.Label(), e.StatusCode)
}

// RateLimited reports whether the provider rejected the call for quota reasons.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Factory builds a provider bound to an API key.
type Factory func(apiKey string) (Provider, error)

// Registry maps provider tags to factories.
type Registry map[Tag]Factory

// Provider builds the provider for tag using apiKey.
func (r Registry) Provider(tag Tag, apiKey string) (Provider, error) {
	factory, ok := r[tag]
	if !ok || factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, tag)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s: %w", tag.KeyName(), ErrMissingKey)
	}
	return factory(apiKey)
}
