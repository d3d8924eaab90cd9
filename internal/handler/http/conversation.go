package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/service"
	"github.com/windfall/vocal_service/pkg/response"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 50
)

// ConversationHandler serves the coaching conversation endpoints.
type ConversationHandler struct {
	log           zerolog.Logger
	conversations *service.ConversationService
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(log zerolog.Logger, conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		log:           log,
		conversations: conversations,
	}
}

// Start handles POST /api/conversation/start
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.conversations.Start(r.Context()))
}

// Respond handles POST /api/conversation/respond
func (h *ConversationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req service.RespondRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}

	reply, err := h.conversations.Respond(r.Context(), req)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.JSON(w, http.StatusOK, reply)
}

// Topics handles GET /api/conversation/topics
func (h *ConversationHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics := h.conversations.Topics()
	response.JSONWithMeta(w, http.StatusOK, topics, &response.Meta{Total: len(topics)})
}

// History handles GET /api/conversation/{id}/history
func (h *ConversationHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := min(queryInt(r, "limit", defaultHistoryLimit), maxHistoryLimit)

	turns, err := h.conversations.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, turns, &response.Meta{Limit: limit, Total: len(turns)})
}
