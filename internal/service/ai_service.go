package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
)

// TextGenerator is the AI text boundary used by the coaching core.
type TextGenerator interface {
	// GenerateText returns a free-form answer.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateJSON returns raw text that should hold a single JSON document.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// ChatProvider is one configured LLM backend.
type ChatProvider interface {
	Chat(ctx context.Context, message string) (string, error)
	ChatJSON(ctx context.Context, message string) (string, error)
	Model() string
}

// AI provider names, in default preference order.
const (
	ProviderGemini    = "gemini"
	ProviderVertex    = "vertex"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderAzure     = "azure"
)

var providerOrder = []string{ProviderGemini, ProviderVertex, ProviderOpenAI, ProviderAnthropic, ProviderAzure}

// AIService routes prompts to the selected provider.
type AIService struct {
	providers map[string]ChatProvider
	preferred string
	log       zerolog.Logger
}

// NewAIService creates a new AI service. preferred may be empty to pick the first configured provider.
func NewAIService(log zerolog.Logger, preferred string) *AIService {
	return &AIService{
		providers: make(map[string]ChatProvider),
		preferred: preferred,
		log:       log,
	}
}

// Register adds a provider under name. A nil provider is ignored.
func (s *AIService) Register(name string, provider ChatProvider) *AIService {
	if provider != nil {
		s.providers[name] = provider
	}
	return s
}

// Active returns the name of the provider prompts are routed to, or "" when none is configured.
func (s *AIService) Active() string {
	if _, ok := s.providers[s.preferred]; ok {
		return s.preferred
	}
	for _, name := range providerOrder {
		if _, ok := s.providers[name]; ok {
			return name
		}
	}
	return ""
}

// Configured reports whether any provider is available.
func (s *AIService) Configured() bool {
	return s.Active() != ""
}

// ActiveModel returns the model name of the active provider.
func (s *AIService) ActiveModel() string {
	if p, ok := s.providers[s.Active()]; ok {
		return p.Model()
	}
	return ""
}

func (s *AIService) provider() (string, ChatProvider, error) {
	name := s.Active()
	if name == "" {
		return "", nil, errors.New(errors.ErrAIService, "no AI provider configured")
	}
	return name, s.providers[name], nil
}

// GenerateText sends a free-form prompt to the active provider.
func (s *AIService) GenerateText(ctx context.Context, prompt string) (string, error) {
	name, p, err := s.provider()
	if err != nil {
		return "", err
	}
	text, err := p.Chat(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", name).Msg("AI text generation failed")
		return "", errors.Wrap(errors.ErrAIService, "AI text generation failed", err)
	}
	return strings.TrimSpace(text), nil
}

// GenerateJSON sends a structured prompt to the active provider.
func (s *AIService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	name, p, err := s.provider()
	if err != nil {
		return "", err
	}
	text, err := p.ChatJSON(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", name).Msg("AI JSON generation failed")
		return "", errors.Wrap(errors.ErrAIService, "AI JSON generation failed", err)
	}
	return text, nil
}

// cleanJSON strips markdown code fences models like to wrap JSON in.
func cleanJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// decodeAIJSON decodes model output into T. ok is false when the text is not valid JSON for T.
func decodeAIJSON[T any](raw string) (T, bool) {
	var out T
	clean := cleanJSON(raw)
	if clean == "" {
		return out, false
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return out, false
	}
	return out, true
}

// hasJSONKeys reports whether raw decodes to an object carrying every key.
func hasJSONKeys(raw string, keys ...string) bool {
	obj, ok := decodeAIJSON[map[string]json.RawMessage](raw)
	if !ok || obj == nil {
		return false
	}
	for _, k := range keys {
		if v, found := obj[k]; !found || string(v) == "null" {
			return false
		}
	}
	return true
}
