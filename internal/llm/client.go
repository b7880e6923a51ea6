package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrInferenceUnavailable is returned when the chat-completion endpoint cannot
// produce an answer (transport failure, non-200 status, quota, bad payload).
// Callers distinguish it from a generated refusal instead of receiving the
// error text as if it were an answer.
var ErrInferenceUnavailable = errors.New("inference unavailable")

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a client for an OpenAI-compatible chat completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient creates a new LLM client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// chatRequest represents the request payload for chat completions.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// chatChoice represents a single choice in the chat response.
type chatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// chatResponse represents the response from the chat completions API.
type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []chatChoice `json:"choices"`
}

// Complete sends a chat completion request and returns the trimmed reply.
// Every failure mode wraps ErrInferenceUnavailable.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)

	payload := chatRequest{
		Model:       c.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrInferenceUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInferenceUnavailable, err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %v", ErrInferenceUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: bad status %d: %s", ErrInferenceUnavailable, resp.StatusCode, string(raw))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrInferenceUnavailable, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrInferenceUnavailable)
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
