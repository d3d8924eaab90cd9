package service

import (
	"context"
	"errors"
	"sync"

	"github.com/windfall/vocal_service/internal/repository"
)

var errFakeAI = errors.New("ai unavailable")

// fakeAI is a scripted TextGenerator.
type fakeAI struct {
	mu          sync.Mutex
	text        string
	json        string
	err         error
	textPrompts []string
	jsonPrompts []string
}

func (f *fakeAI) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textPrompts = append(f.textPrompts, prompt)
	return f.text, f.err
}

func (f *fakeAI) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jsonPrompts = append(f.jsonPrompts, prompt)
	return f.json, f.err
}

func (f *fakeAI) lastTextPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.textPrompts) == 0 {
		return ""
	}
	return f.textPrompts[len(f.textPrompts)-1]
}

// stubAnalyzer returns a fixed analysis.
type stubAnalyzer struct {
	analysis SpeechAnalysis
}

func (s stubAnalyzer) Analyze(context.Context, string) SpeechAnalysis {
	return s.analysis
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(context.Context, string) SpeechAnalysis {
	panic("analyzer exploded")
}

// failingSessionRepo fails every call.
type failingSessionRepo struct{}

var errStoreDown = errors.New("store down")

func (failingSessionRepo) Create(context.Context, *repository.Session) error { return errStoreDown }
func (failingSessionRepo) GetByID(context.Context, string) (*repository.Session, error) {
	return nil, errStoreDown
}
func (failingSessionRepo) List(context.Context, int) ([]*repository.Session, error) {
	return nil, errStoreDown
}
func (failingSessionRepo) UpdateAnalysis(context.Context, string, map[string]interface{}) error {
	return errStoreDown
}
func (failingSessionRepo) Backend() string { return "failing" }

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []interface{}
	done   chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 16)}
}

func (p *recordingPublisher) Publish(_ context.Context, data interface{}, _ map[string]string) error {
	p.mu.Lock()
	p.events = append(p.events, data)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

// sequence returns a picker that yields the given values in turn, clamped into range.
func sequence(values ...int) func(n int) int {
	var i int
	return func(n int) int {
		v := values[i%len(values)]
		i++
		if v >= n {
			return n - 1
		}
		return v
	}
}
