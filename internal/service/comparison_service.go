package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/repository"
)

// sampleTextLength is how many characters of the professional's text are returned.
const sampleTextLength = 200

// ProfessionalSpeechView is the truncated speech included in a comparison.
type ProfessionalSpeechView struct {
	ID         string                   `json:"id"`
	Title      string                   `json:"title"`
	Speaker    string                   `json:"speaker"`
	Category   string                   `json:"category"`
	SampleText string                   `json:"sample_text"`
	Metrics    repository.SpeechMetrics `json:"metrics"`
}

// ComparisonNarrative is the AI-written comparison.
type ComparisonNarrative struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areas_to_improve"`
	SpecificAdvice string   `json:"specific_advice"`
}

// ComparisonResult compares a user's speech with a professional speech.
type ComparisonResult struct {
	Success            bool                   `json:"success"`
	UserAnalysis       SpeechAnalysis         `json:"user_analysis"`
	ProfessionalSpeech ProfessionalSpeechView `json:"professional_speech"`
	Comparison         ComparisonNarrative    `json:"comparison"`
	SimilarityScores   SimilarityScores       `json:"similarity_scores"`
	ImprovementAreas   []string               `json:"improvement_areas"`
	ProfessionalTips   []string               `json:"professional_tips"`
	IsMock             bool                   `json:"is_mock"`
}

// SpeechAnalyzer produces the user's SpeechAnalysis.
type SpeechAnalyzer interface {
	Analyze(ctx context.Context, text string) SpeechAnalysis
}

// ComparisonService compares user speeches with the professional catalog.
type ComparisonService struct {
	catalog  repository.SpeechCatalog
	analyzer SpeechAnalyzer
	ai       TextGenerator
	log      zerolog.Logger
}

// NewComparisonService creates a new comparison service. ai may be nil.
func NewComparisonService(catalog repository.SpeechCatalog, analyzer SpeechAnalyzer, ai TextGenerator, log zerolog.Logger) *ComparisonService {
	return &ComparisonService{
		catalog:  catalog,
		analyzer: analyzer,
		ai:       ai,
		log:      log,
	}
}

// Compare never fails: any error or panic yields the mock comparison.
func (s *ComparisonService) Compare(ctx context.Context, userText, professionalID string) (result *ComparisonResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Comparison panicked, returning mock")
			result = MockComparison()
		}
	}()

	pro := s.resolve(userText, professionalID)
	if pro == nil {
		s.log.Info().Str("professional_id", professionalID).Msg("No professional speech resolved, returning mock")
		return MockComparison()
	}

	analysis := s.analyzer.Analyze(ctx, userText)
	narrative := s.narrative(ctx, userText, analysis, pro)
	scores, areas := CompareMetrics(analysis, pro.Metrics)

	s.log.Info().
		Str("professional_id", pro.ID).
		Float64("overall_similarity", scores.OverallSimilarity).
		Bool("real_ai", analysis.IsRealAI).
		Msg("Comparison complete")

	return &ComparisonResult{
		Success:            true,
		UserAnalysis:       analysis,
		ProfessionalSpeech: speechView(pro),
		Comparison:         narrative,
		SimilarityScores:   scores,
		ImprovementAreas:   areas,
		ProfessionalTips:   SpeakerTips(pro.Speaker),
		IsMock:             false,
	}
}

// resolve picks the professional by id, then by tag relevance, then the first entry.
func (s *ComparisonService) resolve(userText, professionalID string) *repository.ProfessionalSpeech {
	if s.catalog == nil {
		return nil
	}
	if professionalID != "" {
		pro, err := s.catalog.GetByID(professionalID)
		if err != nil {
			return nil
		}
		return pro
	}
	return MostRelevantSpeech(s.catalog.All(), userText)
}

// MostRelevantSpeech returns the first speech with a tag contained in the text, else the first speech.
func MostRelevantSpeech(speeches []*repository.ProfessionalSpeech, text string) *repository.ProfessionalSpeech {
	if len(speeches) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	for _, sp := range speeches {
		for _, tag := range sp.Tags {
			if tag != "" && strings.Contains(lower, strings.ToLower(tag)) {
				return sp
			}
		}
	}
	return speeches[0]
}

func (s *ComparisonService) narrative(ctx context.Context, userText string, analysis SpeechAnalysis, pro *repository.ProfessionalSpeech) ComparisonNarrative {
	if s.ai == nil {
		return DefaultNarrative()
	}
	raw, err := s.ai.GenerateJSON(ctx, comparisonPrompt(userText, analysis, pro))
	if err != nil {
		return DefaultNarrative()
	}
	narrative, ok := decodeAIJSON[ComparisonNarrative](raw)
	if !ok || narrative.Summary == "" {
		s.log.Warn().Str("raw", truncate(raw, 200)).Msg("Comparison narrative returned invalid JSON")
		return DefaultNarrative()
	}
	return narrative
}

func comparisonPrompt(userText string, analysis SpeechAnalysis, pro *repository.ProfessionalSpeech) string {
	pace := string(analysis.Pace)
	if pace == "" {
		pace = "unknown"
	}
	return fmt.Sprintf(`Compare these two speeches and provide professional coaching insights:

USER'S SPEECH:
%q

User's Metrics:
- Clarity: %.1f/10
- Confidence: %.1f/10
- Filler words: %d
- Pace: %s

PROFESSIONAL SPEAKER (%s):
Sample: "%s..."

Professional's Typical Metrics:
- Clarity: %.1f/10
- Confidence: %.1f/10
- Pace: %s
- Style: %s

Provide a comparison in this JSON format:
{
  "summary": "brief comparison summary",
  "strengths": ["what user does well", "another strength"],
  "areas_to_improve": ["area 1", "area 2", "area 3"],
  "specific_advice": "specific advice to sound more like %s"
}

Be constructive, professional, and specific.`,
		userText,
		analysis.ClarityScore, analysis.ConfidenceScore, analysis.FillerWordsCount, pace,
		pro.Speaker, truncate(pro.Text, 150),
		pro.Metrics.ClarityScore, pro.Metrics.ConfidenceScore, pro.Metrics.Pace, orText(pro.Metrics.Sentiment, "neutral"),
		pro.Speaker)
}

func speechView(pro *repository.ProfessionalSpeech) ProfessionalSpeechView {
	return ProfessionalSpeechView{
		ID:         pro.ID,
		Title:      pro.Title,
		Speaker:    pro.Speaker,
		Category:   pro.Category,
		SampleText: truncate(pro.Text, sampleTextLength) + "...",
		Metrics:    pro.Metrics,
	}
}

func orText(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// DefaultNarrative is used when the AI narrative is unavailable.
func DefaultNarrative() ComparisonNarrative {
	return ComparisonNarrative{
		Summary:        "Comparison analysis",
		Strengths:      []string{"Good content structure"},
		AreasToImprove: []string{"Practice pacing", "Reduce filler words"},
		SpecificAdvice: "Keep practicing regularly",
	}
}

// MockComparison is the fixed demo comparison returned when nothing else is possible.
func MockComparison() *ComparisonResult {
	return &ComparisonResult{
		Success: true,
		UserAnalysis: SpeechAnalysis{
			ClarityScore:           7.5,
			ConfidenceScore:        6.8,
			FillerWordsCount:       4,
			FillerWordsList:        []string{},
			Pace:                   repository.PaceMedium,
			KeyFeedback:            []string{},
			ImprovementSuggestions: []string{},
		},
		ProfessionalSpeech: ProfessionalSpeechView{
			ID:         "ted_001",
			Title:      "Steve Jobs - Stanford Commencement",
			Speaker:    "Steve Jobs",
			Category:   "Motivational",
			SampleText: "Your time is limited, so don't waste it living someone else's life...",
			Metrics: repository.SpeechMetrics{
				ClarityScore:         9.5,
				ConfidenceScore:      9.8,
				Pace:                 repository.PaceMedium,
				FillerWordsPerMinute: 0.5,
			},
		},
		Comparison: ComparisonNarrative{
			Summary:        "Your speech shows good potential with room to grow",
			Strengths:      []string{"Clear message", "Good energy"},
			AreasToImprove: []string{"More dramatic pauses", "Stronger opening"},
			SpecificAdvice: "Try pausing before key points like Steve Jobs does",
		},
		SimilarityScores: SimilarityScores{
			ClaritySimilarity:    78.9,
			ConfidenceSimilarity: 69.4,
			OverallSimilarity:    74.2,
		},
		ImprovementAreas: []string{"Pacing", "Confidence"},
		ProfessionalTips: SpeakerTips("Steve Jobs"),
		IsMock:           true,
	}
}
