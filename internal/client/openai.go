package client

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient wraps the OpenAI API client.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// WithModel sets the model to use.
func (c *OpenAIClient) WithModel(model string) *OpenAIClient {
	if model != "" {
		c.model = model
	}
	return c
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Chat sends a chat message and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, message string) (string, error) {
	return c.complete(ctx, message, nil)
}

// ChatJSON sends a chat message in JSON object mode.
func (c *OpenAIClient) ChatJSON(ctx context.Context, message string) (string, error) {
	return c.complete(ctx, message, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
}

func (c *OpenAIClient) complete(ctx context.Context, message string, format *openai.ChatCompletionResponseFormat) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: message,
			},
		},
		ResponseFormat: format,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
