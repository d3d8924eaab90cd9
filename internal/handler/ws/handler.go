package ws

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
	"github.com/windfall/vocal_service/internal/service"
)

// MessageType constants
const (
	TypePing     = "ping"
	TypePong     = "pong"
	TypeChat     = "chat"
	TypeReply    = "reply"
	TypeAnalyze  = "analyze"
	TypeAnalysis = "analysis"
	TypeError    = "error"
)

const minAnalyzeLength = 10

// Handler handles WebSocket messages for live coaching.
type Handler struct {
	log           zerolog.Logger
	conversations *service.ConversationService
	analysis      *service.AnalysisService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(log zerolog.Logger, conversations *service.ConversationService, analysis *service.AnalysisService) *Handler {
	return &Handler{
		log:           log,
		conversations: conversations,
		analysis:      analysis,
	}
}

// Response represents a WebSocket response.
type Response struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Handle processes one incoming message and returns the encoded reply.
func (h *Handler) Handle(ctx context.Context, clientID string, msgType string, payload json.RawMessage) ([]byte, error) {
	h.log.Debug().
		Str("client_id", clientID).
		Str("type", msgType).
		Msg("Handling WebSocket message")

	switch msgType {
	case TypePing:
		return h.response(TypePong, map[string]string{"message": "pong"})
	case TypeChat:
		return h.handleChat(ctx, clientID, payload)
	case TypeAnalyze:
		return h.handleAnalyze(ctx, payload)
	default:
		return h.errorResponse("unknown message type: " + msgType)
	}
}

// ChatPayload is one student message. conversation_id defaults to the client id.
type ChatPayload struct {
	Message        string                   `json:"message"`
	ConversationID string                   `json:"conversation_id,omitempty"`
	History        []service.HistoryMessage `json:"history,omitempty"`
}

func (h *Handler) handleChat(ctx context.Context, clientID string, payload json.RawMessage) ([]byte, error) {
	var chat ChatPayload
	if err := json.Unmarshal(payload, &chat); err != nil {
		return h.errorResponse("invalid chat payload")
	}
	if chat.ConversationID == "" {
		chat.ConversationID = clientID
	}

	reply, err := h.conversations.Respond(ctx, service.RespondRequest{
		Message:        chat.Message,
		History:        chat.History,
		ConversationID: chat.ConversationID,
	})
	if err != nil {
		return h.appErrorResponse(err)
	}
	return h.response(TypeReply, reply)
}

// AnalyzePayload is a text to analyze.
type AnalyzePayload struct {
	Text string `json:"text"`
}

func (h *Handler) handleAnalyze(ctx context.Context, payload json.RawMessage) ([]byte, error) {
	var req AnalyzePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.errorResponse("invalid analyze payload")
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Text)) < minAnalyzeLength {
		return h.errorResponse("text must be at least 10 characters")
	}
	return h.response(TypeAnalysis, h.analysis.Analyze(ctx, req.Text))
}

func (h *Handler) response(msgType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Response{
		Type:    msgType,
		Payload: payload,
	})
}

func (h *Handler) errorResponse(message string) ([]byte, error) {
	return h.response(TypeError, map[string]string{
		"error": message,
	})
}

func (h *Handler) appErrorResponse(err error) ([]byte, error) {
	if appErr, ok := errors.As(err); ok {
		return h.errorResponse(appErr.Message)
	}
	h.log.Error().Err(err).Msg("WebSocket message failed")
	return h.errorResponse("internal server error")
}
