package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
)

type fakeProvider struct {
	model string
	reply string
	err   error
	calls int
}

func (p *fakeProvider) Chat(context.Context, string) (string, error) {
	p.calls++
	return p.reply, p.err
}

func (p *fakeProvider) ChatJSON(context.Context, string) (string, error) {
	p.calls++
	return p.reply, p.err
}

func (p *fakeProvider) Model() string { return p.model }

func TestAIService_NoProvider(t *testing.T) {
	s := NewAIService(zerolog.Nop(), "")
	if s.Configured() {
		t.Error("expected unconfigured service")
	}
	_, err := s.GenerateText(context.Background(), "hi")
	if !errors.HasCode(err, errors.ErrAIService) {
		t.Errorf("expected AI service error, got %v", err)
	}
}

func TestAIService_DefaultOrder(t *testing.T) {
	openai := &fakeProvider{model: "gpt", reply: " from openai "}
	anthropic := &fakeProvider{model: "claude", reply: "from anthropic"}
	s := NewAIService(zerolog.Nop(), "").
		Register(ProviderAnthropic, anthropic).
		Register(ProviderOpenAI, openai)

	if got := s.Active(); got != ProviderOpenAI {
		t.Errorf("expected openai first, got %s", got)
	}
	if got := s.ActiveModel(); got != "gpt" {
		t.Errorf("expected model gpt, got %s", got)
	}
	text, err := s.GenerateText(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "from openai" {
		t.Errorf("expected trimmed openai reply, got %q", text)
	}
	if anthropic.calls != 0 {
		t.Error("expected anthropic to be unused")
	}
}

func TestAIService_PreferredProvider(t *testing.T) {
	s := NewAIService(zerolog.Nop(), ProviderAnthropic).
		Register(ProviderGemini, &fakeProvider{model: "gemini"}).
		Register(ProviderAnthropic, &fakeProvider{model: "claude"})

	if got := s.Active(); got != ProviderAnthropic {
		t.Errorf("expected preferred anthropic, got %s", got)
	}
}

func TestAIService_PreferredMissingFallsBack(t *testing.T) {
	s := NewAIService(zerolog.Nop(), ProviderAzure).
		Register(ProviderVertex, &fakeProvider{model: "vertex"})

	if got := s.Active(); got != ProviderVertex {
		t.Errorf("expected vertex, got %s", got)
	}
}

func TestAIService_WrapsProviderError(t *testing.T) {
	s := NewAIService(zerolog.Nop(), "").Register(ProviderGemini, &fakeProvider{err: errFakeAI})

	_, err := s.GenerateJSON(context.Background(), "{}")
	if !errors.HasCode(err, errors.ErrAIService) {
		t.Errorf("expected AI service error, got %v", err)
	}
}

func TestAIService_RegisterNilIgnored(t *testing.T) {
	s := NewAIService(zerolog.Nop(), "").Register(ProviderOpenAI, nil)
	if s.Configured() {
		t.Error("expected nil provider to be ignored")
	}
}
