package service

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/client"
	"github.com/windfall/vocal_service/internal/errors"
)

// Transcription sources.
const (
	SourceAzureSpeech    = "azure_speech"
	SourceAzureWhisper   = "azure_whisper"
	SourcePracticeSample = "practice_sample"
)

// maxAudioBytes bounds uploads accepted for transcription.
const maxAudioBytes = 25 << 20

var practiceSamples = []string{
	"Hello everyone, thank you for joining me today. I'll be discussing the importance of effective communication in the workplace.",
	"Public speaking is a skill that can be developed with practice and persistence. It requires confidence and clear articulation.",
	"The key to a good presentation is to start with a strong opening, maintain eye contact, and speak at a moderate pace.",
	"In my experience, practicing in front of a mirror helps build confidence and identify areas for improvement in delivery.",
	"Today I want to talk about artificial intelligence and its impact on modern business practices and daily life.",
	"Effective communication involves not just speaking clearly, but also listening actively and responding thoughtfully.",
	"When presenting data, it's important to explain complex concepts in simple terms that everyone can understand.",
	"Practice makes perfect. The more you speak in public, the more comfortable and confident you will become over time.",
}

// SpeechRecognizer is the Azure AI Speech collaborator.
type SpeechRecognizer interface {
	Transcribe(ctx context.Context, audio []byte, language string) (*client.SpeechRecognition, error)
}

// WhisperTranscriber is the Azure OpenAI Whisper collaborator.
type WhisperTranscriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (*client.WhisperResponse, error)
}

// RecordingQuality is a rough estimate of recording quality.
type RecordingQuality struct {
	DurationSeconds  float64 `json:"duration_seconds"`
	ClarityIndicator float64 `json:"clarity_indicator"`
	BackgroundNoise  float64 `json:"background_noise"`
	VolumeLevel      string  `json:"volume_level"`
}

// TranscriptionResult is the transcript of an uploaded recording.
type TranscriptionResult struct {
	Text             string           `json:"text"`
	Source           string           `json:"source"`
	IsPracticeSample bool             `json:"is_practice_sample"`
	WordCount        int              `json:"word_count"`
	Quality          RecordingQuality `json:"recording_quality"`
}

// TranscriptionService turns audio into text, falling back to practice samples.
type TranscriptionService struct {
	speech  SpeechRecognizer
	whisper WhisperTranscriber
	intN    func(n int) int
	float   func() float64
	log     zerolog.Logger
}

// NewTranscriptionService creates a new transcription service. speech and whisper may be nil.
func NewTranscriptionService(speech SpeechRecognizer, whisper WhisperTranscriber, log zerolog.Logger) *TranscriptionService {
	return &TranscriptionService{
		speech:  speech,
		whisper: whisper,
		intN:    rand.IntN,
		float:   rand.Float64,
		log:     log,
	}
}

// WithRandom replaces the random sources.
func (s *TranscriptionService) WithRandom(intN func(n int) int, float func() float64) *TranscriptionService {
	s.intN = intN
	s.float = float
	return s
}

// Configured reports whether a real speech-to-text backend is available.
func (s *TranscriptionService) Configured() bool {
	return s.speech != nil || s.whisper != nil
}

// Transcribe tries Azure Speech, then Whisper, then returns a practice sample.
func (s *TranscriptionService) Transcribe(ctx context.Context, audio []byte, filename string) (*TranscriptionResult, error) {
	if len(audio) == 0 {
		return nil, errors.Validation("audio file is empty")
	}
	if len(audio) > maxAudioBytes {
		return nil, errors.Validation("audio file is too large")
	}

	quality := s.estimateQuality(audio)

	if s.speech != nil {
		rec, err := s.speech.Transcribe(ctx, audio, "en-US")
		if err == nil && strings.TrimSpace(rec.DisplayText) != "" {
			if d := rec.DurationSeconds(); d > 0 {
				quality.DurationSeconds = round1(d)
			}
			return newTranscription(rec.DisplayText, SourceAzureSpeech, quality), nil
		}
		s.log.Warn().Err(err).Msg("Azure Speech transcription failed")
	}

	if s.whisper != nil {
		resp, err := s.whisper.Transcribe(ctx, audio, filename, "en")
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			if resp.Duration > 0 {
				quality.DurationSeconds = round1(resp.Duration)
			}
			return newTranscription(resp.Text, SourceAzureWhisper, quality), nil
		}
		s.log.Warn().Err(err).Msg("Whisper transcription failed")
	}

	sample := practiceSamples[s.intN(len(practiceSamples))]
	result := newTranscription(sample, SourcePracticeSample, quality)
	result.IsPracticeSample = true
	return result, nil
}

func newTranscription(text, source string, quality RecordingQuality) *TranscriptionResult {
	text = strings.TrimSpace(text)
	return &TranscriptionResult{
		Text:      text,
		Source:    source,
		WordCount: len(strings.Fields(text)),
		Quality:   quality,
	}
}

// estimateQuality assumes 16 kB of audio per second.
func (s *TranscriptionService) estimateQuality(audio []byte) RecordingQuality {
	return RecordingQuality{
		DurationSeconds:  round1(float64(len(audio)) / 16000),
		ClarityIndicator: round2(0.7 + s.float()*0.25),
		BackgroundNoise:  round2(0.1 + s.float()*0.2),
		VolumeLevel:      "good",
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
