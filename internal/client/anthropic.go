package client

import (
	"context"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient wraps the Anthropic Messages API client.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient creates a new Anthropic client. Retries are disabled; callers fall back instead.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
		),
		model:     "claude-haiku-4-5-20251001",
		maxTokens: 1024,
	}
}

// WithModel sets the model to use.
func (c *AnthropicClient) WithModel(model string) *AnthropicClient {
	if model != "" {
		c.model = model
	}
	return c
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

// Chat sends a single user message and returns the concatenated text blocks.
func (c *AnthropicClient) Chat(ctx context.Context, message string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// ChatJSON asks for a JSON-only answer. The Messages API has no JSON mode, so the request is phrased for it.
func (c *AnthropicClient) ChatJSON(ctx context.Context, message string) (string, error) {
	return c.Chat(ctx, message+"\n\nRespond with a single JSON object and nothing else.")
}
