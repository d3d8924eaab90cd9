package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/windfall/vocal_service/internal/errors"
)

// AzureWhisperClient wraps the Azure OpenAI Whisper REST API for audio transcription.
type AzureWhisperClient struct {
	endpoint string // full deployment URL including api-version
	apiKey   string
	client   *http.Client
}

// WhisperResponse is the verbose_json response from Azure OpenAI Whisper.
type WhisperResponse struct {
	Task     string  `json:"task"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// NewAzureWhisperClient creates a new Azure OpenAI Whisper client.
func NewAzureWhisperClient(endpoint, apiKey string) *AzureWhisperClient {
	return &AzureWhisperClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 120 * time.Second, // Whisper can take longer for large files
		},
	}
}

// Transcribe uploads audio bytes to Whisper. language is optional; empty lets Whisper auto-detect.
func (c *AzureWhisperClient) Transcribe(ctx context.Context, audioData []byte, filename, language string) (*WhisperResponse, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return nil, errors.New(errors.ErrVoiceService, "Azure Whisper credentials not configured")
	}
	if filename == "" {
		filename = "audio.wav"
	}

	// Build multipart/form-data body
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	_ = writer.WriteField("response_format", "verbose_json")
	if language != "" {
		_ = writer.WriteField("language", language)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure whisper api error %d: %s", resp.StatusCode, string(respBody))
	}

	var result WhisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
