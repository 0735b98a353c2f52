package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 400
	defaultTimeout   = 60 * time.Second
)

var (
	// ErrEmptyResponse is returned when the model answers with no choices or
	// only whitespace.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrTruncated is returned when the answer hit the token limit. A cut-off
	// verdict cannot be parsed reliably, so it is never returned as text.
	ErrTruncated = errors.New("llm: response truncated at max tokens")
)

// Config selects the endpoint and sampling for resolution reviews. BaseURL
// points at any OpenAI-compatible server; empty means api.openai.com.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	JSONMode    bool // ask the server for a JSON object answer
	HTTPClient  *http.Client
}

// Client sends one-shot review prompts to a chat completions endpoint.
type Client struct {
	api     *openai.Client
	request openai.ChatCompletionRequest
	timeout time.Duration
}

func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}

	apiCfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		apiCfg.BaseURL = strings.TrimRight(base, "/")
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}

	req := openai.ChatCompletionRequest{
		Model:       strings.TrimSpace(cfg.Model),
		MaxTokens:   cfg.MaxTokens,
		Temperature: max(cfg.Temperature, 0),
	}
	if req.Model == "" {
		req.Model = defaultModel
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	if cfg.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{api: openai.NewClientWithConfig(apiCfg), request: req, timeout: timeout}, nil
}

// Complete returns the trimmed answer to a system + user prompt pair.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("llm: client is nil")
	}
	if systemPrompt == "" || userPrompt == "" {
		return "", fmt.Errorf("llm: prompts must be provided")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.request
	req.Messages = []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm: %s chat completion: %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return "", ErrTruncated
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
