package service

import (
	"reflect"
	"testing"

	"github.com/windfall/vocal_service/internal/repository"
)

func TestSimilarity_ReferenceValues(t *testing.T) {
	user := SpeechAnalysis{ClarityScore: 7.5, ConfidenceScore: 6.8, FillerWordsCount: 4}
	pro := repository.SpeechMetrics{ClarityScore: 9.5, ConfidenceScore: 9.8}

	got := Similarity(user, pro)

	if got.ClaritySimilarity != 78.9 {
		t.Errorf("expected clarity 78.9, got %v", got.ClaritySimilarity)
	}
	if got.ConfidenceSimilarity != 69.4 {
		t.Errorf("expected confidence 69.4, got %v", got.ConfidenceSimilarity)
	}
	if got.OverallSimilarity != 71.3 {
		t.Errorf("expected overall 71.3, got %v", got.OverallSimilarity)
	}
}

func TestSimilarity_NotClamped(t *testing.T) {
	user := SpeechAnalysis{ClarityScore: 10, ConfidenceScore: 10}
	pro := repository.SpeechMetrics{ClarityScore: 5, ConfidenceScore: 5}

	got := Similarity(user, pro)
	if got.ClaritySimilarity != 200 {
		t.Errorf("expected clarity 200, got %v", got.ClaritySimilarity)
	}
	if got.OverallSimilarity <= 100 {
		t.Errorf("expected overall above 100, got %v", got.OverallSimilarity)
	}
}

func TestSimilarity_MissingProScoresDefaultToTen(t *testing.T) {
	got := Similarity(SpeechAnalysis{ClarityScore: 5, ConfidenceScore: 4}, repository.SpeechMetrics{})
	if got.ClaritySimilarity != 50 {
		t.Errorf("expected clarity 50, got %v", got.ClaritySimilarity)
	}
	if got.ConfidenceSimilarity != 40 {
		t.Errorf("expected confidence 40, got %v", got.ConfidenceSimilarity)
	}
}

func TestSimilarity_FillerPenaltyCapped(t *testing.T) {
	user := SpeechAnalysis{ClarityScore: 10, ConfidenceScore: 10, FillerWordsCount: 25}
	pro := repository.SpeechMetrics{ClarityScore: 10, ConfidenceScore: 10}

	if got := Similarity(user, pro).OverallSimilarity; got != 80 {
		t.Errorf("expected overall 80, got %v", got)
	}
}

func TestImprovementAreas(t *testing.T) {
	tests := []struct {
		name string
		user SpeechAnalysis
		pro  repository.SpeechMetrics
		want []string
	}{
		{
			name: "reference",
			user: SpeechAnalysis{ClarityScore: 7.5, ConfidenceScore: 6.8, FillerWordsCount: 4},
			pro:  repository.SpeechMetrics{ClarityScore: 9.5, ConfidenceScore: 9.8},
			want: []string{AreaConfidence, AreaFillers},
		},
		{
			name: "none",
			user: SpeechAnalysis{ClarityScore: 9, ConfidenceScore: 9, Pace: repository.PaceMedium},
			pro:  repository.SpeechMetrics{ClarityScore: 9.5, ConfidenceScore: 9.8, Pace: repository.PaceSlow},
			want: []string{},
		},
		{
			name: "pacing only when fast against slow",
			user: SpeechAnalysis{ClarityScore: 9, ConfidenceScore: 9, Pace: repository.PaceFast},
			pro:  repository.SpeechMetrics{ClarityScore: 9, ConfidenceScore: 9, Pace: repository.PaceSlow},
			want: []string{AreaPacing},
		},
		{
			name: "capped at three in evaluation order",
			user: SpeechAnalysis{ClarityScore: 1, ConfidenceScore: 1, FillerWordsCount: 5, Pace: repository.PaceFast},
			pro:  repository.SpeechMetrics{ClarityScore: 9, ConfidenceScore: 9, Pace: repository.PaceSlow},
			want: []string{AreaClarity, AreaConfidence, AreaFillers},
		},
		{
			name: "missing pro scores use eight",
			user: SpeechAnalysis{ClarityScore: 5.9, ConfidenceScore: 6},
			pro:  repository.SpeechMetrics{},
			want: []string{AreaClarity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImprovementAreas(tt.user, tt.pro)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
