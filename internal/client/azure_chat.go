package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/windfall/vocal_service/internal/errors"
)

// AzureChatClient wraps the Azure OpenAI Chat Completions REST API.
type AzureChatClient struct {
	endpoint string // full deployment URL including api-version
	apiKey   string
	client   *http.Client
}

// chatRequest is the request body for the Chat Completions API.
type chatRequest struct {
	Messages       []chatMessage       `json:"messages"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

// chatMessage is a single message in the chat history.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response from the Chat Completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// chatChoice is a single completion choice.
type chatChoice struct {
	Message chatMessage `json:"message"`
}

// NewAzureChatClient creates a new Azure OpenAI Chat Completions client.
func NewAzureChatClient(endpoint, apiKey string) *AzureChatClient {
	return &AzureChatClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Model returns a label for status reporting.
func (c *AzureChatClient) Model() string {
	return "azure-openai"
}

// Chat sends the prompt as a single user message.
func (c *AzureChatClient) Chat(ctx context.Context, message string) (string, error) {
	return c.ChatCompletion(ctx, "", message, false)
}

// ChatJSON sends the prompt in JSON object mode.
func (c *AzureChatClient) ChatJSON(ctx context.Context, message string) (string, error) {
	return c.ChatCompletion(ctx, "", message, true)
}

// ChatCompletion sends an optional system prompt and a user message and returns the assistant's text.
func (c *AzureChatClient) ChatCompletion(ctx context.Context, systemPrompt, userMessage string, jsonMode bool) (string, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return "", errors.New(errors.ErrAIService, "Azure OpenAI Chat credentials not configured")
	}

	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	reqBody := chatRequest{Messages: messages}
	if jsonMode {
		reqBody.ResponseFormat = &chatResponseFormat{Type: "json_object"}
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("azure openai chat api error %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from azure openai")
	}

	return result.Choices[0].Message.Content, nil
}
