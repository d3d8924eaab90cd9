package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiAPIClient wraps the Gemini Developer API client authenticated with an API key.
type GeminiAPIClient struct {
	client *genai.Client
	model  string
}

// NewGeminiAPIClient creates a new Gemini API client.
func NewGeminiAPIClient(ctx context.Context, apiKey string) (*GeminiAPIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiAPIClient{
		client: client,
		model:  "gemini-1.5-flash",
	}, nil
}

// WithModel sets the model to use.
func (c *GeminiAPIClient) WithModel(model string) *GeminiAPIClient {
	if model != "" {
		c.model = model
	}
	return c
}

// Model returns the configured model name.
func (c *GeminiAPIClient) Model() string {
	return c.model
}

// Close closes the client.
func (c *GeminiAPIClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Chat sends a prompt and returns the free-form response text.
func (c *GeminiAPIClient) Chat(ctx context.Context, message string) (string, error) {
	return c.generate(ctx, c.client.GenerativeModel(c.model), message)
}

// ChatJSON sends a prompt and asks the model for a JSON document.
func (c *GeminiAPIClient) ChatJSON(ctx context.Context, message string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	return c.generate(ctx, model, message)
}

func (c *GeminiAPIClient) generate(ctx context.Context, model *genai.GenerativeModel, message string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	// Extract text from response
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return sb.String(), nil
}
