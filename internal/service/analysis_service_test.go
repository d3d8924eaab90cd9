package service

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/repository"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestHeuristicAnalysis_Scores(t *testing.T) {
	tests := []struct {
		words      int
		clarity    float64
		confidence float64
		pace       repository.Pace
	}{
		{0, 5, 4, repository.PaceMedium},
		{25, 7, 5, repository.PaceMedium},
		{99, 9, 8, repository.PaceMedium},
		{100, 9, 8, repository.PaceFast},
	}
	for _, tt := range tests {
		a := HeuristicAnalysis(words(tt.words))
		if a.ClarityScore != tt.clarity || a.ConfidenceScore != tt.confidence {
			t.Errorf("%d words: expected %v/%v, got %v/%v", tt.words, tt.clarity, tt.confidence, a.ClarityScore, a.ConfidenceScore)
		}
		if a.Pace != tt.pace {
			t.Errorf("%d words: expected pace %s, got %s", tt.words, tt.pace, a.Pace)
		}
		if a.WordCount != tt.words {
			t.Errorf("expected word count %d, got %d", tt.words, a.WordCount)
		}
	}
}

func TestHeuristicAnalysis_Fillers(t *testing.T) {
	a := HeuristicAnalysis("Um I like this, um so actually it is good")

	if a.FillerWordsCount != 5 {
		t.Errorf("expected 5 fillers, got %d", a.FillerWordsCount)
	}
	want := []string{"um", "like", "so"}
	if !reflect.DeepEqual(a.FillerWordsList, want) {
		t.Errorf("expected %v, got %v", want, a.FillerWordsList)
	}
	if a.IsRealAI {
		t.Error("expected heuristic result")
	}
	if a.Note == "" {
		t.Error("expected heuristic note")
	}
}

func TestHeuristicAnalysis_PhraseFillerNeverMatches(t *testing.T) {
	a := HeuristicAnalysis("you know what you know")
	if a.FillerWordsCount != 0 {
		t.Errorf("expected 0 fillers, got %d", a.FillerWordsCount)
	}
	if a.FillerWordsList == nil {
		t.Error("expected empty, non-nil filler list")
	}
}

func TestAnalysisService_UsesAI(t *testing.T) {
	ai := &fakeAI{json: "```json\n{\"clarity_score\": 8.5, \"confidence_score\": 7, \"filler_words_count\": 1, \"filler_words_list\": [\"um\"], \"key_feedback\": [\"Nice\"], \"improvement_suggestions\": [\"Pause\"]}\n```"}
	s := NewAnalysisService(ai, zerolog.Nop())

	a := s.Analyze(context.Background(), "this is my practice speech today")

	if !a.IsRealAI {
		t.Error("expected AI result")
	}
	if a.ClarityScore != 8.5 {
		t.Errorf("expected clarity 8.5, got %v", a.ClarityScore)
	}
	if a.WordCount != 6 {
		t.Errorf("expected word count filled to 6, got %d", a.WordCount)
	}
	if a.Pace != repository.PaceMedium {
		t.Errorf("expected default pace medium, got %s", a.Pace)
	}
	if len(ai.jsonPrompts) != 1 || !strings.Contains(ai.jsonPrompts[0], "this is my practice speech today") {
		t.Error("expected prompt to include the text")
	}
}

func TestAnalysisService_Fallbacks(t *testing.T) {
	cases := map[string]TextGenerator{
		"nil":     nil,
		"error":   &fakeAI{err: errFakeAI},
		"garbage": &fakeAI{json: "I cannot do that"},
		"empty":   &fakeAI{json: "{}"},
		"null":    &fakeAI{json: "null"},
		"nulls":   &fakeAI{json: `{"clarity_score":null,"confidence_score":null}`},
		"missing": &fakeAI{json: `{"clarity_score":8}`},
		"high":    &fakeAI{json: `{"clarity_score":42,"confidence_score":7}`},
		"low":     &fakeAI{json: `{"clarity_score":7,"confidence_score":-3}`},
		"pace":    &fakeAI{json: `{"clarity_score":7,"confidence_score":7,"pace":"warp"}`},
		"normal":  &fakeAI{json: `{"clarity_score":7,"confidence_score":7,"pace":"normal"}`},
	}
	for name, ai := range cases {
		t.Run(name, func(t *testing.T) {
			a := NewAnalysisService(ai, zerolog.Nop()).Analyze(context.Background(), words(30))
			if a.IsRealAI {
				t.Error("expected heuristic result")
			}
			if a.ClarityScore != 8 {
				t.Errorf("expected heuristic clarity 8, got %v", a.ClarityScore)
			}
		})
	}
}

func TestAnalysisService_AcceptsBoundaryScores(t *testing.T) {
	ai := &fakeAI{json: `{"clarity_score":0,"confidence_score":10,"pace":"slow"}`}

	a := NewAnalysisService(ai, zerolog.Nop()).Analyze(context.Background(), words(5))

	if !a.IsRealAI {
		t.Fatal("expected AI result")
	}
	if a.ClarityScore != 0 || a.ConfidenceScore != 10 || a.Pace != repository.PaceSlow {
		t.Errorf("expected 0/10/slow, got %v/%v/%s", a.ClarityScore, a.ConfidenceScore, a.Pace)
	}
}

func TestHasJSONKeys(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"a":1,"b":2}`, true},
		{"```json\n{\"a\":0,\"b\":false}\n```", true},
		{`{"a":1}`, false},
		{`{"a":1,"b":null}`, false},
		{`{}`, false},
		{`null`, false},
		{`[1,2]`, false},
	}
	for _, tt := range tests {
		if got := hasJSONKeys(tt.raw, "a", "b"); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.raw, tt.want, got)
		}
	}
}

func TestDecodeAIJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	if p, ok := decodeAIJSON[payload]("```json\n{\"name\":\"x\"}\n```"); !ok || p.Name != "x" {
		t.Errorf("expected fenced JSON to decode, got %+v ok=%v", p, ok)
	}
	if p, ok := decodeAIJSON[payload](`{"name":"y"}`); !ok || p.Name != "y" {
		t.Errorf("expected bare JSON to decode, got %+v ok=%v", p, ok)
	}
	if _, ok := decodeAIJSON[payload](""); ok {
		t.Error("expected empty input to fail")
	}
	if _, ok := decodeAIJSON[payload]("{broken"); ok {
		t.Error("expected broken input to fail")
	}
}
