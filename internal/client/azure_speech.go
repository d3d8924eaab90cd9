package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/windfall/vocal_service/internal/errors"
)

// AzureSpeechClient wraps the Azure AI Speech short-audio REST API.
type AzureSpeechClient struct {
	apiKey  string
	region  string
	baseURL string
	client  *http.Client
}

// SpeechRecognition is the simple-format recognition result.
type SpeechRecognition struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Offset            int64  `json:"Offset"`
	Duration          int64  `json:"Duration"` // 100-nanosecond units
}

// DurationSeconds converts the recognized duration to seconds.
func (r *SpeechRecognition) DurationSeconds() float64 {
	return float64(r.Duration) / 1e7
}

// NewAzureSpeechClient creates a new Azure Speech client.
func NewAzureSpeechClient(apiKey, region string) *AzureSpeechClient {
	return &AzureSpeechClient{
		apiKey:  apiKey,
		region:  region,
		baseURL: fmt.Sprintf("https://%s.stt.speech.microsoft.com", region),
		client: &http.Client{
			Timeout: 30 * time.Second, // 30 second timeout
		},
	}
}

// WithBaseURL overrides the regional endpoint.
func (c *AzureSpeechClient) WithBaseURL(baseURL string) *AzureSpeechClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Transcribe sends WAV audio to the short-audio API and returns the recognized text.
func (c *AzureSpeechClient) Transcribe(ctx context.Context, audioData []byte, language string) (*SpeechRecognition, error) {
	if c.apiKey == "" || c.region == "" {
		return nil, errors.New(errors.ErrVoiceService, "Azure Speech credentials not configured")
	}
	if language == "" {
		language = "en-US"
	}

	// Docs: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/rest-speech-to-text-short
	u, err := url.Parse(c.baseURL + "/speech/recognition/conversation/cognitiveservices/v1")
	if err != nil {
		return nil, fmt.Errorf("failed to build url: %w", err)
	}
	q := u.Query()
	q.Set("language", language)
	q.Set("format", "simple")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(audioData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "audio/wav; codecs=audio/pcm; samplerate=16000")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure speech api error %d: %s", resp.StatusCode, string(body))
	}

	var result SpeechRecognition
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.RecognitionStatus != "Success" {
		return nil, fmt.Errorf("azure speech recognition status %s", result.RecognitionStatus)
	}

	return &result, nil
}
