package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/repository"
)

// SpeechAnalysis is the coaching analysis of one piece of user text.
type SpeechAnalysis struct {
	ClarityScore           float64         `json:"clarity_score"`
	ConfidenceScore        float64         `json:"confidence_score"`
	FillerWordsCount       int             `json:"filler_words_count"`
	FillerWordsList        []string        `json:"filler_words_list"`
	Pace                   repository.Pace `json:"pace"`
	WordCount              int             `json:"word_count"`
	KeyFeedback            []string        `json:"key_feedback"`
	ImprovementSuggestions []string        `json:"improvement_suggestions"`
	IsRealAI               bool            `json:"is_real_ai"`
	Note                   string          `json:"note,omitempty"`
}

// ToMap converts the analysis into the generic form stored on sessions.
func (a SpeechAnalysis) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"clarity_score":           a.ClarityScore,
		"confidence_score":        a.ConfidenceScore,
		"filler_words_count":      a.FillerWordsCount,
		"filler_words_list":       a.FillerWordsList,
		"pace":                    string(a.Pace),
		"word_count":              a.WordCount,
		"key_feedback":            a.KeyFeedback,
		"improvement_suggestions": a.ImprovementSuggestions,
		"is_real_ai":              a.IsRealAI,
	}
}

// heuristicFillers are matched against whole whitespace tokens, so "you know" never matches.
var heuristicFillers = []string{"um", "uh", "like", "you know", "so", "actually", "basically"}

// AnalysisService produces a SpeechAnalysis from the AI collaborator or a local heuristic.
type AnalysisService struct {
	ai  TextGenerator
	log zerolog.Logger
}

// NewAnalysisService creates a new analysis service. ai may be nil.
func NewAnalysisService(ai TextGenerator, log zerolog.Logger) *AnalysisService {
	return &AnalysisService{ai: ai, log: log}
}

// Analyze never fails: any AI problem yields the heuristic analysis.
func (s *AnalysisService) Analyze(ctx context.Context, text string) SpeechAnalysis {
	if s.ai == nil {
		return HeuristicAnalysis(text)
	}

	raw, err := s.ai.GenerateJSON(ctx, analysisPrompt(text))
	if err != nil {
		s.log.Warn().Err(err).Msg("Speech analysis fell back to heuristic")
		return HeuristicAnalysis(text)
	}

	analysis, ok := decodeAIJSON[SpeechAnalysis](raw)
	if !ok || !hasJSONKeys(raw, "clarity_score", "confidence_score") {
		s.log.Warn().Str("raw", truncate(raw, 200)).Msg("Speech analysis returned invalid JSON")
		return HeuristicAnalysis(text)
	}
	if analysis.Pace == "" {
		analysis.Pace = repository.PaceMedium
	}
	if err := analysis.validate(); err != nil {
		s.log.Warn().Err(err).Msg("Speech analysis out of range, using heuristic")
		return HeuristicAnalysis(text)
	}

	analysis.IsRealAI = true
	analysis.Note = ""
	if analysis.WordCount == 0 {
		analysis.WordCount = len(strings.Fields(text))
	}
	return analysis
}

// validate checks the score and pace bounds of a decoded AI analysis.
func (a SpeechAnalysis) validate() error {
	if !inRange(a.ClarityScore, 0, 10) {
		return fmt.Errorf("clarity_score %v outside [0, 10]", a.ClarityScore)
	}
	if !inRange(a.ConfidenceScore, 0, 10) {
		return fmt.Errorf("confidence_score %v outside [0, 10]", a.ConfidenceScore)
	}
	switch a.Pace {
	case repository.PaceSlow, repository.PaceMedium, repository.PaceFast:
	default:
		return fmt.Errorf("invalid pace %q", a.Pace)
	}
	if a.FillerWordsCount < 0 || a.WordCount < 0 {
		return fmt.Errorf("negative count")
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// HeuristicAnalysis is the local analysis used when no AI answer is available.
func HeuristicAnalysis(text string) SpeechAnalysis {
	words := strings.Fields(text)

	var (
		fillerCount int
		found       []string
		seen        = make(map[string]bool)
	)
	for _, w := range words {
		lw := strings.ToLower(w)
		if !containsString(heuristicFillers, lw) {
			continue
		}
		fillerCount++
		if !seen[lw] && len(found) < 3 {
			seen[lw] = true
			found = append(found, lw)
		}
	}
	if found == nil {
		found = []string{}
	}

	pace := repository.PaceMedium
	if len(words) >= 100 {
		pace = repository.PaceFast
	}

	return SpeechAnalysis{
		ClarityScore:     float64(min(9, len(words)/10+5)),
		ConfidenceScore:  float64(min(8, len(words)/15+4)),
		FillerWordsCount: fillerCount,
		FillerWordsList:  found,
		Pace:             pace,
		WordCount:        len(words),
		KeyFeedback: []string{
			"Good content structure",
			"Could use more vocal variety",
			"Strong opening statement",
		},
		ImprovementSuggestions: []string{
			"Practice pausing for emphasis",
			"Reduce filler words",
			"Use more descriptive language",
		},
		IsRealAI: false,
		Note:     "Using heuristic analysis. AI provider unavailable.",
	}
}

func analysisPrompt(text string) string {
	return fmt.Sprintf(`You are a professional speaking coach. Analyze this speech text and provide feedback:

Speech: %q

Provide feedback in this JSON format:
{
  "clarity_score": 0-10,
  "confidence_score": 0-10,
  "filler_words_count": number,
  "filler_words_list": ["um", "like"],
  "pace": "slow" | "medium" | "fast",
  "word_count": number,
  "key_feedback": ["feedback point 1", "feedback point 2", "feedback point 3"],
  "improvement_suggestions": ["suggestion 1", "suggestion 2"]
}

Return ONLY valid JSON, no extra text.`, text)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
