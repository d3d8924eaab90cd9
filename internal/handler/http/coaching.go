package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
	"github.com/windfall/vocal_service/internal/repository"
	"github.com/windfall/vocal_service/internal/service"
	"github.com/windfall/vocal_service/pkg/response"
)

// CoachingHandler serves speech analysis and professional comparison.
type CoachingHandler struct {
	log        zerolog.Logger
	analysis   *service.AnalysisService
	patterns   *service.PatternAnalyzer
	comparison *service.ComparisonService
	catalog    repository.SpeechCatalog
	sessions   *service.SessionService
}

// NewCoachingHandler creates a new coaching handler. sessions may be nil.
func NewCoachingHandler(
	log zerolog.Logger,
	analysis *service.AnalysisService,
	patterns *service.PatternAnalyzer,
	comparison *service.ComparisonService,
	catalog repository.SpeechCatalog,
	sessions *service.SessionService,
) *CoachingHandler {
	return &CoachingHandler{
		log:        log,
		analysis:   analysis,
		patterns:   patterns,
		comparison: comparison,
		catalog:    catalog,
		sessions:   sessions,
	}
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// Analyze handles POST /api/analyze
func (h *CoachingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}
	if err := validateText(req.Text); err != nil {
		handleError(w, h.log, err)
		return
	}

	analysis := h.analysis.Analyze(r.Context(), req.Text)

	// Persistence is best-effort and never delays the response.
	if h.sessions != nil {
		if req.SessionID != "" {
			h.sessions.AttachAnalysisAsync(req.SessionID, analysis)
		} else {
			h.sessions.SaveAsync(service.CreateSessionRequest{
				Text: req.Text,
				Kind: repository.SessionKindPractice,
			}, &analysis)
		}
	}

	response.JSON(w, http.StatusOK, analysis)
}

// PatternRequest is the body of POST /api/analyze/pattern.
type PatternRequest struct {
	Text string `json:"text"`
}

// AnalyzePattern handles POST /api/analyze/pattern
func (h *CoachingHandler) AnalyzePattern(w http.ResponseWriter, r *http.Request) {
	var req PatternRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}
	if req.Text == "" {
		handleError(w, h.log, errors.Validation("text is required"))
		return
	}

	response.JSON(w, http.StatusOK, h.patterns.Analyze(r.Context(), req.Text))
}

// CompareRequest is the body of POST /api/compare-with-pro.
type CompareRequest struct {
	Text           string `json:"text"`
	ProfessionalID string `json:"professional_id,omitempty"`
}

// Compare handles POST /api/compare-with-pro
func (h *CoachingHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}
	if err := validateText(req.Text); err != nil {
		handleError(w, h.log, err)
		return
	}

	result := h.comparison.Compare(r.Context(), req.Text, req.ProfessionalID)

	if h.sessions != nil && !result.IsMock {
		analysis := result.UserAnalysis
		h.sessions.SaveAsync(service.CreateSessionRequest{
			Text: req.Text,
			Kind: repository.SessionKindComparison,
		}, &analysis)
	}

	response.JSON(w, http.StatusOK, result)
}

// ProfessionalSpeeches handles GET /api/professional-speeches
func (h *CoachingHandler) ProfessionalSpeeches(w http.ResponseWriter, r *http.Request) {
	var speeches []*repository.ProfessionalSpeech
	if category := r.URL.Query().Get("category"); category != "" {
		speeches = h.catalog.ByCategory(category)
	} else {
		speeches = h.catalog.All()
	}
	if speeches == nil {
		speeches = []*repository.ProfessionalSpeech{}
	}

	response.JSONWithMeta(w, http.StatusOK, speeches, &response.Meta{Total: len(speeches)})
}

// ProfessionalSpeech handles GET /api/professional-speeches/{id}
func (h *CoachingHandler) ProfessionalSpeech(w http.ResponseWriter, r *http.Request) {
	speech, err := h.catalog.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.log, errors.NotFound("professional speech"))
		return
	}
	response.JSON(w, http.StatusOK, speech)
}
