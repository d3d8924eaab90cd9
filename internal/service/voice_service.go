package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/client"
	"github.com/windfall/vocal_service/internal/errors"
)

const (
	maxVoices              = 5
	voiceDescriptionLength = 50
	maxSpeechTextLength    = 5000
	voiceListCacheKey      = "voices:list"
	audioContentType       = "audio/mpeg"
)

// Synthesizer is the voice-synthesis collaborator.
type Synthesizer interface {
	TextToSpeech(ctx context.Context, text, voiceID string) ([]byte, error)
	ListVoices(ctx context.Context) ([]client.ElevenLabsVoice, error)
}

// JSONCache caches JSON-encodable values.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AudioStore uploads audio and returns a public URL.
type AudioStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Name() string
}

// Voice is a simplified voice listing entry.
type Voice struct {
	VoiceID     string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Labels      map[string]string `json:"labels"`
	PreviewURL  string            `json:"preview_url"`
	Description string            `json:"description"`
}

// SynthesizedSpeech is synthesized audio, optionally stored.
type SynthesizedSpeech struct {
	Audio       []byte `json:"-"`
	ContentType string `json:"content_type"`
	VoiceID     string `json:"voice_id"`
	URL         string `json:"audio_url,omitempty"`
	Bytes       int    `json:"bytes"`
}

// VoiceService wraps text-to-speech and voice listing.
type VoiceService struct {
	synth        Synthesizer
	cache        JSONCache
	store        AudioStore
	defaultVoice string
	cacheTTL     time.Duration
	log          zerolog.Logger
}

// NewVoiceService creates a new voice service. synth, cache and store may be nil.
func NewVoiceService(synth Synthesizer, cache JSONCache, store AudioStore, defaultVoice string, cacheTTL time.Duration, log zerolog.Logger) *VoiceService {
	return &VoiceService{
		synth:        synth,
		cache:        cache,
		store:        store,
		defaultVoice: defaultVoice,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// Configured reports whether synthesis is available.
func (s *VoiceService) Configured() bool {
	return s.synth != nil
}

// StorageBackend names the audio store, or "" when none.
func (s *VoiceService) StorageBackend() string {
	if s.store == nil {
		return ""
	}
	return s.store.Name()
}

// Synthesize converts text to speech. With store set, the audio is also uploaded.
func (s *VoiceService) Synthesize(ctx context.Context, text, voiceID string, store bool) (*SynthesizedSpeech, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("text is required")
	}
	if utf8.RuneCountInString(text) > maxSpeechTextLength {
		return nil, errors.Validation(fmt.Sprintf("text must be at most %d characters", maxSpeechTextLength))
	}
	if s.synth == nil {
		return nil, errors.New(errors.ErrVoiceService, "voice synthesis not configured")
	}
	if voiceID == "" {
		voiceID = s.defaultVoice
	}

	audio, err := s.synth.TextToSpeech(ctx, text, voiceID)
	if err != nil {
		s.log.Error().Err(err).Str("voice_id", voiceID).Msg("Text-to-speech failed")
		return nil, errors.Wrap(errors.ErrVoiceService, "text-to-speech failed", err)
	}

	result := &SynthesizedSpeech{
		Audio:       audio,
		ContentType: audioContentType,
		VoiceID:     voiceID,
		Bytes:       len(audio),
	}

	if store {
		if s.store == nil {
			return nil, errors.Storage("audio storage not configured", nil)
		}
		key := fmt.Sprintf("tts/%s/%s.mp3", time.Now().UTC().Format("20060102"), uuid.NewString())
		url, err := s.store.Upload(ctx, key, audio, audioContentType)
		if err != nil {
			return nil, errors.Storage("failed to store audio", err)
		}
		result.URL = url
	}

	s.log.Info().Int("chars", utf8.RuneCountInString(text)).Int("bytes", len(audio)).Msg("Text-to-speech complete")
	return result, nil
}

// Voices lists up to five voices. Failures yield an empty list.
func (s *VoiceService) Voices(ctx context.Context) []Voice {
	if s.synth == nil {
		return []Voice{}
	}

	if s.cache != nil {
		var cached []Voice
		if ok, err := s.cache.GetJSON(ctx, voiceListCacheKey, &cached); err == nil && ok {
			return cached
		} else if err != nil {
			s.log.Debug().Err(err).Msg("Voice cache read failed")
		}
	}

	raw, err := s.synth.ListVoices(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to list voices")
		return []Voice{}
	}

	voices := SimplifyVoices(raw)
	if s.cache != nil && len(voices) > 0 {
		if err := s.cache.SetJSON(ctx, voiceListCacheKey, voices, s.cacheTTL); err != nil {
			s.log.Debug().Err(err).Msg("Voice cache write failed")
		}
	}
	return voices
}

// SimplifyVoices keeps the first five voices and shortens descriptions.
func SimplifyVoices(raw []client.ElevenLabsVoice) []Voice {
	voices := make([]Voice, 0, maxVoices)
	for _, v := range raw {
		if len(voices) == maxVoices {
			break
		}
		desc := "No description"
		if v.Description != "" {
			desc = truncate(v.Description, voiceDescriptionLength) + "..."
		}
		labels := v.Labels
		if labels == nil {
			labels = map[string]string{}
		}
		voices = append(voices, Voice{
			VoiceID:     v.VoiceID,
			Name:        v.Name,
			Category:    v.Category,
			Labels:      labels,
			PreviewURL:  v.PreviewURL,
			Description: desc,
		})
	}
	return voices
}
