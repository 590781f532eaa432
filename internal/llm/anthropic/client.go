package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"transparency-backend/internal/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// Options tunes the client; zero values use defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements llm.Provider using the Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("CLAUDE_API_KEY: %w", llm.ErrMissingKey)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{apiKey: strings.TrimSpace(apiKey), baseURL: baseURL, httpClient: httpClient}, nil
}

// Factory adapts NewClient to llm.Factory.
func Factory(opts Options) llm.Factory {
	return func(apiKey string) (llm.Provider, error) {
		return NewClient(apiKey, opts)
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) Tag() llm.Tag { return llm.TagClaude }

// Analyze sends the coding prompt as a single user message.
func (c *Client) Analyze(ctx context.Context, req llm.AnalyzeRequest) (string, error) {
	return c.send(ctx, messagesRequest{
		Model:       req.Model,
		MaxTokens:   8192,
		Temperature: 0.1,
		System:      req.System,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
	})
}

// Chat replays history and appends the new user message.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	msgs := make([]message, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := "user"
		if turn.Role == llm.RoleAssistant {
			role = "assistant"
		}
		msgs = append(msgs, message{Role: role, Content: turn.Text})
	}
	msgs = append(msgs, message{Role: "user", Content: req.Message})

	return c.send(ctx, messagesRequest{
		Model:       req.Model,
		MaxTokens:   4096,
		Temperature: 0.3,
		System:      req.System,
		Messages:    msgs,
	})
}

func (c *Client) send(ctx context.Context, body messagesRequest) (string, error) {
	if strings.TrimSpace(body.Model) == "" {
		return "", fmt.Errorf("claude model is required")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("claude request timeout: %w", err)
		}
		return "", fmt.Errorf("claude request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed messagesResponse
	parseErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &llm.APIError{Provider: llm.TagClaude, StatusCode: resp.StatusCode}
		if parseErr == nil && parsed.Error != nil {
			apiErr.Message = parsed.Error.Message
		}
		return "", apiErr
	}
	if parseErr != nil {
		return "", fmt.Errorf("claude response parse: %w", parseErr)
	}
	if len(parsed.Content) == 0 {
		return "", llm.ErrEmptyResponse
	}
	return parsed.Content[0].Text, nil
}

var _ llm.Provider = (*Client)(nil)
