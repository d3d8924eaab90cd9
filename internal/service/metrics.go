package service

import (
	"math"

	"github.com/windfall/vocal_service/internal/repository"
)

// SimilarityScores are percentages of the professional's scores. They are not clamped.
type SimilarityScores struct {
	ClaritySimilarity    float64 `json:"clarity_similarity"`
	ConfidenceSimilarity float64 `json:"confidence_similarity"`
	OverallSimilarity    float64 `json:"overall_similarity"`
}

// Improvement area labels, in evaluation order.
const (
	AreaClarity    = "Clarity & articulation"
	AreaConfidence = "Confidence & conviction"
	AreaFillers    = "Reducing filler words"
	AreaPacing     = "Pacing & pauses"
)

const maxImprovementAreas = 3

// CompareMetrics scores a user analysis against a professional's metrics.
func CompareMetrics(user SpeechAnalysis, pro repository.SpeechMetrics) (SimilarityScores, []string) {
	return Similarity(user, pro), ImprovementAreas(user, pro)
}

// Similarity computes clarity, confidence and overall similarity.
// A zero professional score is treated as 10.
func Similarity(user SpeechAnalysis, pro repository.SpeechMetrics) SimilarityScores {
	clarityRatio := user.ClarityScore / orDefault(pro.ClarityScore, 10)
	confidenceRatio := user.ConfidenceScore / orDefault(pro.ConfidenceScore, 10)
	fillerPenalty := math.Min(float64(user.FillerWordsCount)/10, 1)

	overall := clarityRatio*0.4 + confidenceRatio*0.4 + (1-fillerPenalty)*0.2

	return SimilarityScores{
		ClaritySimilarity:    round1(clarityRatio * 100),
		ConfidenceSimilarity: round1(confidenceRatio * 100),
		OverallSimilarity:    round1(overall * 100),
	}
}

// ImprovementAreas lists at most three areas where the user trails the professional.
func ImprovementAreas(user SpeechAnalysis, pro repository.SpeechMetrics) []string {
	areas := make([]string, 0, maxImprovementAreas)

	if user.ClarityScore < orDefault(pro.ClarityScore, 8)-2 {
		areas = append(areas, AreaClarity)
	}
	if user.ConfidenceScore < orDefault(pro.ConfidenceScore, 8)-2 {
		areas = append(areas, AreaConfidence)
	}
	if user.FillerWordsCount > 3 {
		areas = append(areas, AreaFillers)
	}
	userPace := user.Pace
	if userPace == "" {
		userPace = repository.PaceMedium
	}
	if userPace == repository.PaceFast && pro.Pace == repository.PaceSlow {
		areas = append(areas, AreaPacing)
	}

	if len(areas) > maxImprovementAreas {
		areas = areas[:maxImprovementAreas]
	}
	return areas
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
