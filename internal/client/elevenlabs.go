package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/windfall/vocal_service/internal/errors"
)

// ElevenLabsClient wraps the ElevenLabs text-to-speech REST API.
type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// ElevenLabsVoice is a voice entry from GET /voices.
type ElevenLabsVoice struct {
	VoiceID     string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Labels      map[string]string `json:"labels"`
	PreviewURL  string            `json:"preview_url"`
}

type voicesResponse struct {
	Voices []ElevenLabsVoice `json:"voices"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// NewElevenLabsClient creates a new ElevenLabs client.
func NewElevenLabsClient(apiKey, baseURL, model string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TextToSpeech synthesizes text with the given voice and returns MPEG audio.
func (c *ElevenLabsClient) TextToSpeech(ctx context.Context, text, voiceID string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errors.New(errors.ErrVoiceService, "ElevenLabs API key not configured")
	}

	bodyJSON, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech/"+voiceID, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs tts error %d: %s", resp.StatusCode, string(respBody))
	}

	return io.ReadAll(resp.Body)
}

// ListVoices returns every voice available to the account.
func (c *ElevenLabsClient) ListVoices(ctx context.Context) ([]ElevenLabsVoice, error) {
	if c.apiKey == "" {
		return nil, errors.New(errors.ErrVoiceService, "ElevenLabs API key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs voices error %d: %s", resp.StatusCode, string(respBody))
	}

	var result voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Voices, nil
}
