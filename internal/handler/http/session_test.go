package http

import (
	"net/http"
	"testing"

	"github.com/windfall/vocal_service/internal/repository"
	"github.com/windfall/vocal_service/internal/service"
)

func TestSessions_CreateGetAnalyze(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/sessions",
		`{"text":"Today I presented our roadmap to the team","audio_duration":12.5,"recorded_at":"2026-10-01T09:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created repository.Session
	decodeData(t, body, &created)
	if created.ID == "" || created.Kind != repository.SessionKindPractice {
		t.Fatalf("unexpected session %+v", created)
	}

	rec, body = env.do(t, http.MethodGet, "/api/sessions/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var fetched repository.Session
	decodeData(t, body, &fetched)
	if fetched.AudioDuration != 12.5 || fetched.HasAnalysis() {
		t.Errorf("unexpected fetched session %+v", fetched)
	}

	rec, body = env.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/analysis", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var analyzed repository.Session
	decodeData(t, body, &analyzed)
	if analyzed.Analysis["word_count"] != float64(8) {
		t.Errorf("expected word_count 8, got %v", analyzed.Analysis["word_count"])
	}
}

func TestSessions_Errors(t *testing.T) {
	env := newTestEnv(t)

	if rec, _ := env.do(t, http.MethodPost, "/api/sessions", `{"text":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty text, got %d", rec.Code)
	}
	if rec, _ := env.do(t, http.MethodPost, "/api/sessions", `{"text":"hello","audio_duration":-1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative duration, got %d", rec.Code)
	}
	if rec, _ := env.do(t, http.MethodGet, "/api/sessions/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec, _ := env.do(t, http.MethodPost, "/api/sessions/missing/analysis", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSessions_ListAndStatistics(t *testing.T) {
	env := newTestEnv(t)

	for _, text := range []string{"first practice run", "second practice run", "third practice run"} {
		if rec, _ := env.do(t, http.MethodPost, "/api/sessions", `{"text":"`+text+`"}`); rec.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", rec.Code)
		}
	}

	rec, body := env.do(t, http.MethodGet, "/api/sessions?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var sessions []repository.Session
	decodeData(t, body, &sessions)
	if len(sessions) != 2 || body.Meta.Limit != 2 {
		t.Fatalf("expected 2 sessions, got %d (meta %+v)", len(sessions), body.Meta)
	}
	if sessions[0].Text != "third practice run" {
		t.Errorf("expected newest first, got %q", sessions[0].Text)
	}

	_, body = env.do(t, http.MethodGet, "/api/statistics", "")
	var stats service.Statistics
	decodeData(t, body, &stats)
	if stats.TotalSessions != 3 || stats.SessionsAnalyzed != 0 || stats.IsMock {
		t.Errorf("unexpected statistics %+v", stats)
	}
}
