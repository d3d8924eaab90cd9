package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAzureSpeechTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("language") != "en-US" || r.URL.Query().Get("format") != "simple" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "key" {
			t.Error("expected subscription key header")
		}
		_, _ = w.Write([]byte(`{"RecognitionStatus":"Success","DisplayText":"Hello world.","Offset":0,"Duration":15000000}`))
	}))
	defer srv.Close()

	c := NewAzureSpeechClient("key", "westus").WithBaseURL(srv.URL)
	rec, err := c.Transcribe(context.Background(), []byte("wav"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DisplayText != "Hello world." {
		t.Errorf("unexpected text %q", rec.DisplayText)
	}
	if rec.DurationSeconds() != 1.5 {
		t.Errorf("expected 1.5 seconds, got %v", rec.DurationSeconds())
	}
}

func TestAzureSpeechNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"RecognitionStatus":"NoMatch"}`))
	}))
	defer srv.Close()

	if _, err := NewAzureSpeechClient("key", "westus").WithBaseURL(srv.URL).Transcribe(context.Background(), []byte("wav"), "en-US"); err == nil {
		t.Error("expected error for NoMatch status")
	}
}
