package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/repository"
)

// SpeakingPatternResult is quick in-conversation feedback on one utterance.
type SpeakingPatternResult struct {
	QuickTip         string          `json:"quick_tip"`
	Strength         string          `json:"strength"`
	FollowUpQuestion string          `json:"follow_up_question"`
	ConfidenceScore  float64         `json:"confidence_score"`
	ClarityScore     float64         `json:"clarity_score"`
	PaceAnalysis     repository.Pace `json:"pace_analysis"`
	KeyObservation   string          `json:"key_observation"`
	FillerWordCount  int             `json:"filler_word_count"`
	IsRealAI         bool            `json:"is_real_ai"`
}

// patternFillers are matched exactly against lower-cased whitespace tokens.
var patternFillers = map[string]bool{
	"um": true, "uh": true, "er": true, "ah": true, "like": true,
	"so": true, "actually": true, "basically": true, "literally": true,
}

// TextStats are the lexical statistics the analyzer works from.
type TextStats struct {
	WordCount         int
	SentenceCount     int
	FillerCount       int
	AvgSentenceLength float64
}

// ComputeTextStats counts words, terminal punctuation and filler tokens.
func ComputeTextStats(text string) TextStats {
	words := strings.Fields(text)

	fillers := 0
	for _, w := range words {
		if patternFillers[strings.ToLower(w)] {
			fillers++
		}
	}

	sentences := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")

	return TextStats{
		WordCount:         len(words),
		SentenceCount:     sentences,
		FillerCount:       fillers,
		AvgSentenceLength: float64(len(words)) / float64(max(sentences, 1)),
	}
}

// PatternAnalyzer produces SpeakingPatternResults.
type PatternAnalyzer struct {
	ai  TextGenerator
	log zerolog.Logger
}

// NewPatternAnalyzer creates a new analyzer. ai may be nil.
func NewPatternAnalyzer(ai TextGenerator, log zerolog.Logger) *PatternAnalyzer {
	return &PatternAnalyzer{ai: ai, log: log}
}

// Analyze never fails. The local filler count always overrides the AI's.
func (a *PatternAnalyzer) Analyze(ctx context.Context, text string) SpeakingPatternResult {
	stats := ComputeTextStats(text)

	if a.ai != nil {
		raw, err := a.ai.GenerateJSON(ctx, patternPrompt(text, stats))
		if err == nil {
			result, ok := decodeAIJSON[SpeakingPatternResult](raw)
			if ok && result.QuickTip != "" && hasJSONKeys(raw, "confidence_score", "clarity_score") {
				if result.PaceAnalysis == "" {
					result.PaceAnalysis = repository.PaceNormal
				}
				if err := result.validate(); err != nil {
					a.log.Debug().Err(err).Msg("Pattern analysis out of range, using rules")
					return RuleBasedPattern(stats)
				}
				result.FillerWordCount = stats.FillerCount
				result.IsRealAI = true
				return result
			}
			a.log.Debug().Str("raw", truncate(raw, 200)).Msg("Pattern analysis returned invalid JSON")
		} else {
			a.log.Debug().Err(err).Msg("Pattern analysis fell back to rules")
		}
	}

	return RuleBasedPattern(stats)
}

// validate checks the score and pace bounds of a decoded AI result.
func (r SpeakingPatternResult) validate() error {
	if !inRange(r.ConfidenceScore, 1, 10) {
		return fmt.Errorf("confidence_score %v outside [1, 10]", r.ConfidenceScore)
	}
	if !inRange(r.ClarityScore, 1, 10) {
		return fmt.Errorf("clarity_score %v outside [1, 10]", r.ClarityScore)
	}
	switch r.PaceAnalysis {
	case repository.PaceSlow, repository.PaceMedium, repository.PaceFast, repository.PaceNormal:
	default:
		return fmt.Errorf("invalid pace_analysis %q", r.PaceAnalysis)
	}
	return nil
}

// RuleBasedPattern applies the fixed cascade. Every branch fills every field.
func RuleBasedPattern(stats TextStats) SpeakingPatternResult {
	var r SpeakingPatternResult
	switch {
	case stats.WordCount < 5:
		r = SpeakingPatternResult{
			QuickTip:         "Try expanding your thoughts into a full sentence or two",
			Strength:         "You got straight to the point",
			FollowUpQuestion: "Can you tell me a bit more about that?",
			ConfidenceScore:  5,
			ClarityScore:     6,
			PaceAnalysis:     repository.PaceNormal,
			KeyObservation:   "Very short response; more content gives more to work with",
		}
	case stats.FillerCount > 3:
		r = SpeakingPatternResult{
			QuickTip:         "Replace filler words with a short, silent pause",
			Strength:         "You kept talking and kept your ideas flowing",
			FollowUpQuestion: "Could you say that again and pause instead of using fillers?",
			ConfidenceScore:  6,
			ClarityScore:     7,
			PaceAnalysis:     repository.PaceNormal,
			KeyObservation:   fmt.Sprintf("Noticed %d filler words", stats.FillerCount),
		}
	case stats.AvgSentenceLength > 15:
		r = SpeakingPatternResult{
			QuickTip:         "Break long sentences into shorter ones so each point lands",
			Strength:         "You have plenty to say and explain ideas in detail",
			FollowUpQuestion: "What is the single most important point you want to make?",
			ConfidenceScore:  7,
			ClarityScore:     6,
			PaceAnalysis:     repository.PaceFast,
			KeyObservation:   "Long sentences can make the message harder to follow",
		}
	case stats.AvgSentenceLength < 8:
		r = SpeakingPatternResult{
			QuickTip:         "Connect some short sentences to make your delivery flow",
			Strength:         "Your sentences are crisp and easy to follow",
			FollowUpQuestion: "How would you link those ideas together?",
			ConfidenceScore:  7,
			ClarityScore:     8,
			PaceAnalysis:     repository.PaceSlow,
			KeyObservation:   "Short, punchy sentences; some variety would help",
		}
	default:
		r = SpeakingPatternResult{
			QuickTip:         "Try to vary your vocal tone to keep listeners engaged",
			Strength:         "Good balance of sentence length and clarity",
			FollowUpQuestion: "What situation would you like to practice this for?",
			ConfidenceScore:  8,
			ClarityScore:     8,
			PaceAnalysis:     repository.PaceMedium,
			KeyObservation:   "Well-balanced delivery",
		}
	}
	r.FillerWordCount = stats.FillerCount
	return r
}

func patternPrompt(text string, stats TextStats) string {
	return fmt.Sprintf(`Analyze this spoken text for immediate speaking-coach feedback:
%q

Word count: %d. Filler words: %d. Average sentence length: %.1f words.

Respond in this JSON format:
{
  "quick_tip": "one quick suggestion",
  "strength": "one thing they did well",
  "follow_up_question": "a question to keep the conversation going",
  "confidence_score": 1-10,
  "clarity_score": 1-10,
  "pace_analysis": "slow" | "medium" | "fast" | "normal",
  "key_observation": "one short observation"
}`, text, stats.WordCount, stats.FillerCount, stats.AvgSentenceLength)
}
