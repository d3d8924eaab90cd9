package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/service"
	"github.com/windfall/vocal_service/pkg/response"
)

// SessionHandler serves practice session persistence.
type SessionHandler struct {
	log      zerolog.Logger
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(log zerolog.Logger, sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{
		log:      log,
		sessions: sessions,
	}
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}

	session, err := h.sessions.Create(r.Context(), req)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.Created(w, session)
}

// List handles GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)

	sessions, err := h.sessions.List(r.Context(), limit)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, sessions, &response.Meta{Limit: limit, Total: len(sessions)})
}

// Get handles GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// Analyze handles POST /api/sessions/{id}/analysis
func (h *SessionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Analyze(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// Statistics handles GET /api/statistics
func (h *SessionHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.sessions.Statistics(r.Context()))
}
