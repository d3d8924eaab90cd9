package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/repository"
	"github.com/windfall/vocal_service/internal/service"
	"github.com/windfall/vocal_service/pkg/response"
)

// envelope mirrors response.Response with raw data for per-test decoding.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorBody `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

type testEnv struct {
	router   chi.Router
	sessions *repository.MemorySessionRepository
	history  *repository.MemoryHistoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	sessions := repository.NewMemorySessionRepository()
	history := repository.NewMemoryHistoryRepository()
	catalog := repository.NewDefaultSpeechCatalog()

	analysis := service.NewAnalysisService(nil, log)
	patterns := service.NewPatternAnalyzer(nil, log)
	sessionService := service.NewSessionService(sessions, analysis, nil, time.Second, log)
	conversations := service.NewConversationService(
		service.NewResponseGenerator(nil, log).WithPicker(func(int) int { return 0 }),
		patterns, history, time.Second, log)
	meetings := service.NewMeetingService(log).WithRandom(func(int) int { return 0 }, func() float64 { return 0.5 })
	transcription := service.NewTranscriptionService(nil, nil, log).WithRandom(func(int) int { return 0 }, func() float64 { return 0 })
	voice := service.NewVoiceService(nil, nil, nil, "", time.Minute, log)

	coaching := NewCoachingHandler(log, analysis, patterns, service.NewComparisonService(catalog, analysis, nil, log), catalog, sessionService)
	conversation := NewConversationHandler(log, conversations)
	speech := NewSpeechHandler(log, transcription, voice)
	session := NewSessionHandler(log, sessionService)
	meeting := NewMeetingHandler(log, meetings)

	r := chi.NewRouter()
	r.Post("/api/analyze", coaching.Analyze)
	r.Post("/api/analyze/pattern", coaching.AnalyzePattern)
	r.Post("/api/compare-with-pro", coaching.Compare)
	r.Get("/api/professional-speeches", coaching.ProfessionalSpeeches)
	r.Get("/api/professional-speeches/{id}", coaching.ProfessionalSpeech)
	r.Post("/api/conversation/start", conversation.Start)
	r.Post("/api/conversation/respond", conversation.Respond)
	r.Get("/api/conversation/topics", conversation.Topics)
	r.Get("/api/conversation/{id}/history", conversation.History)
	r.Post("/api/speech-to-text", speech.SpeechToText)
	r.Post("/api/text-to-speech", speech.TextToSpeech)
	r.Get("/api/voices", speech.Voices)
	r.Post("/api/sessions", session.Create)
	r.Get("/api/sessions", session.List)
	r.Get("/api/sessions/{id}", session.Get)
	r.Post("/api/sessions/{id}/analysis", session.Analyze)
	r.Get("/api/statistics", session.Statistics)
	r.Get("/api/meetings/templates", meeting.Templates)
	r.Post("/api/meetings/analyze", meeting.Analyze)
	r.Post("/api/meetings/schedule", meeting.Schedule)

	return &testEnv{router: r, sessions: sessions, history: history}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to decode envelope %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data %s: %v", env.Data, err)
	}
}

func multipartUpload(t *testing.T, path, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// waitForSessions polls the store until n sessions exist.
func waitForSessions(t *testing.T, repo *repository.MemorySessionRepository, n int) []*repository.Session {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		sessions, err := repo.List(t.Context(), 100)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(sessions) >= n || time.Now().After(deadline) {
			return sessions
		}
		time.Sleep(10 * time.Millisecond)
	}
}
