package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"transparency-backend/internal/llm"
)

const (
	analysisMaxTokens = 8192
	chatMaxTokens     = 4096
)

// Options tunes the client; zero values use defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements llm.Provider on top of the chat completions API.
type Client struct {
	api *openai.Client
}

func NewClient(apiKey string, opts Options) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY: %w", llm.ErrMissingKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base + "/v1"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	cfg.HTTPClient = httpClient
	return &Client{api: openai.NewClientWithConfig(cfg)}, nil
}

// Factory adapts NewClient to llm.Factory.
func Factory(opts Options) llm.Factory {
	return func(apiKey string) (llm.Provider, error) {
		return NewClient(apiKey, opts)
	}
}

func (c *Client) Tag() llm.Tag { return llm.TagOpenAI }

// Analyze requests a JSON object response.
func (c *Client) Analyze(ctx context.Context, req llm.AnalyzeRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	tune(&chatReq, 0.1, analysisMaxTokens)
	return c.complete(ctx, chatReq)
}

// Chat replays history and appends the new user message.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == llm.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Message})

	chatReq := openai.ChatCompletionRequest{Model: req.Model, Messages: msgs}
	tune(&chatReq, 0.3, chatMaxTokens)
	return c.complete(ctx, chatReq)
}

// tune applies sampling settings. Reasoning models only accept the default
// temperature and take MaxCompletionTokens instead of MaxTokens.
func tune(req *openai.ChatCompletionRequest, temperature float32, maxTokens int) {
	if isReasoningModel(req.Model) {
		req.MaxCompletionTokens = maxTokens
		return
	}
	req.Temperature = temperature
	req.MaxTokens = maxTokens
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") ||
		strings.HasPrefix(m, "o4") || strings.HasPrefix(m, "gpt-5")
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("openai model is required")
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &llm.APIError{Provider: llm.TagOpenAI, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &llm.APIError{Provider: llm.TagOpenAI, StatusCode: reqErr.HTTPStatusCode}
	}
	return fmt.Errorf("openai request: %w", err)
}

var _ llm.Provider = (*Client)(nil)
