package client

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/genai"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GeminiClient wraps the Google Vertex AI Gemini client.
type GeminiClient struct {
	client    *genai.Client
	model     string
	projectID string
	location  string
}

// NewGeminiClient creates a new Gemini client using Vertex AI and application default credentials.
func NewGeminiClient(ctx context.Context, projectID, location string) (*GeminiClient, error) {
	if projectID == "" {
		creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
		projectID = creds.ProjectID
	}
	return newVertexClient(ctx, projectID, location)
}

// NewGeminiClientWithServiceAccount creates a new Gemini client using a service account file.
// An empty projectID is taken from the service account.
func NewGeminiClientWithServiceAccount(ctx context.Context, projectID, location, serviceAccountPath string) (*GeminiClient, error) {
	data, err := os.ReadFile(serviceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials from file: %w", err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}

	// Set the environment variable so the SDK can find the credentials
	if err := os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", serviceAccountPath); err != nil {
		return nil, fmt.Errorf("failed to set GOOGLE_APPLICATION_CREDENTIALS: %w", err)
	}

	return newVertexClient(ctx, projectID, location)
}

func newVertexClient(ctx context.Context, projectID, location string) (*GeminiClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("vertex ai project id not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		model:     "gemini-2.0-flash",
		projectID: projectID,
		location:  location,
	}, nil
}

// WithModel sets the model to use.
func (c *GeminiClient) WithModel(model string) *GeminiClient {
	if model != "" {
		c.model = model
	}
	return c
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Chat sends a prompt and returns the free-form response text.
func (c *GeminiClient) Chat(ctx context.Context, message string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(message), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// ChatJSON sends a prompt and asks the model for a JSON document.
func (c *GeminiClient) ChatJSON(ctx context.Context, message string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(message), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
