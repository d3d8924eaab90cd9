package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/client"
	"github.com/windfall/vocal_service/internal/errors"
)

type fakeRecognizer struct {
	result *client.SpeechRecognition
	err    error
}

func (f *fakeRecognizer) Transcribe(context.Context, []byte, string) (*client.SpeechRecognition, error) {
	return f.result, f.err
}

type fakeWhisper struct {
	result *client.WhisperResponse
	err    error
	calls  int
}

func (f *fakeWhisper) Transcribe(context.Context, []byte, string, string) (*client.WhisperResponse, error) {
	f.calls++
	return f.result, f.err
}

func fixedFloat(v float64) func() float64 {
	return func() float64 { return v }
}

func TestTranscribe_PracticeSampleFallback(t *testing.T) {
	s := NewTranscriptionService(nil, nil, zerolog.Nop()).WithRandom(sequence(3), fixedFloat(0))

	res, err := s.Transcribe(context.Background(), make([]byte, 32000), "a.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsPracticeSample || res.Source != SourcePracticeSample {
		t.Errorf("expected practice sample, got %+v", res)
	}
	if res.Text != practiceSamples[3] {
		t.Errorf("expected sample 3, got %q", res.Text)
	}
	q := res.Quality
	if q.DurationSeconds != 2 || q.ClarityIndicator != 0.7 || q.BackgroundNoise != 0.1 || q.VolumeLevel != "good" {
		t.Errorf("unexpected quality %+v", q)
	}
}

func TestTranscribe_QualityUpperBounds(t *testing.T) {
	s := NewTranscriptionService(nil, nil, zerolog.Nop()).WithRandom(sequence(0), fixedFloat(1))
	res, _ := s.Transcribe(context.Background(), []byte("x"), "a.wav")
	if res.Quality.ClarityIndicator != 0.95 || res.Quality.BackgroundNoise != 0.3 {
		t.Errorf("unexpected quality %+v", res.Quality)
	}
}

func TestTranscribe_AzureSpeech(t *testing.T) {
	speech := &fakeRecognizer{result: &client.SpeechRecognition{RecognitionStatus: "Success", DisplayText: "Hello world.", Duration: 25000000}}
	whisper := &fakeWhisper{}
	s := NewTranscriptionService(speech, whisper, zerolog.Nop()).WithRandom(sequence(0), fixedFloat(0.5))

	res, err := s.Transcribe(context.Background(), []byte("audio"), "a.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != SourceAzureSpeech || res.Text != "Hello world." || res.WordCount != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Quality.DurationSeconds != 2.5 {
		t.Errorf("expected recognized duration 2.5, got %v", res.Quality.DurationSeconds)
	}
	if whisper.calls != 0 {
		t.Error("expected whisper to be skipped")
	}
}

func TestTranscribe_FallsThroughToWhisper(t *testing.T) {
	speech := &fakeRecognizer{err: errFakeAI}
	whisper := &fakeWhisper{result: &client.WhisperResponse{Text: " from whisper ", Duration: 4.2}}
	s := NewTranscriptionService(speech, whisper, zerolog.Nop()).WithRandom(sequence(0), fixedFloat(0.5))

	res, _ := s.Transcribe(context.Background(), []byte("audio"), "a.wav")
	if res.Source != SourceAzureWhisper || res.Text != "from whisper" {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Quality.DurationSeconds != 4.2 {
		t.Errorf("expected whisper duration, got %v", res.Quality.DurationSeconds)
	}
}

func TestTranscribe_Validation(t *testing.T) {
	s := NewTranscriptionService(nil, nil, zerolog.Nop())
	if _, err := s.Transcribe(context.Background(), nil, "a.wav"); !errors.HasCode(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := s.Transcribe(context.Background(), make([]byte, maxAudioBytes+1), "a.wav"); !errors.HasCode(err, errors.ErrValidation) {
		t.Errorf("expected validation error for large file, got %v", err)
	}
}
