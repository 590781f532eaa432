package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"transparency-backend/internal/rubric"
)

var fencePattern = regexp.MustCompile("```json\\n?|\\n?```")

// StripCodeFences removes Markdown code-fence markup around a JSON payload.
func StripCodeFences(s string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(s, ""))
}

// Analyze codes documentText against the rubric with provider p. Any
// transport, status or schema failure is returned as an error with no result.
func Analyze(ctx context.Context, p Provider, model, documentText string) (rubric.Result, error) {
	raw, err := p.Analyze(ctx, AnalyzeRequest{
		Model:  model,
		System: SystemPrompt(),
		Prompt: AnalysisPrompt(documentText),
	})
	if err != nil {
		return rubric.Result{}, err
	}
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		cleaned = "{}"
	}
	res, err := rubric.Parse([]byte(cleaned))
	if err != nil {
		return rubric.Result{}, fmt.Errorf("%s response: %w", p.Tag().Label(), err)
	}
	return res, nil
}

// Chat sends message with history and the document as shared context.
func Chat(ctx context.Context, p Provider, model, documentText string, history []Turn, message string) (string, error) {
	reply, err := p.Chat(ctx, ChatRequest{
		Model:   model,
		System:  ChatSystemPrompt(model, documentText),
		History: history,
		Message: message,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}
