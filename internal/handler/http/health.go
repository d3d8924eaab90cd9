package http

import (
	"net/http"
	"sync/atomic"

	"github.com/windfall/vocal_service/pkg/response"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "vocal_service"

// ServiceStatus lists which collaborators are configured.
type ServiceStatus struct {
	Service             string `json:"service"`
	Environment         string `json:"environment"`
	AIProvider          string `json:"ai_provider"`
	AIModel             string `json:"ai_model"`
	VoiceSynthesis      bool   `json:"voice_synthesis"`
	SpeechToText        bool   `json:"speech_to_text"`
	SessionStore        string `json:"session_store"`
	ConversationHistory string `json:"conversation_history"`
	AudioStorage        string `json:"audio_storage"`
	SessionEvents       bool   `json:"session_events"`
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	ready  atomic.Bool
	status ServiceStatus
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(status ServiceStatus) *HealthHandler {
	status.Service = ServiceName
	h := &HealthHandler{status: status}
	h.ready.Store(true)
	return h
}

// SetReady sets the ready state.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Health checks if the service is healthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Ready checks if the service is ready to receive traffic.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		response.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
	})
}

// Live checks if the service is alive (for Kubernetes liveness probe).
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
	})
}

// Status handles GET /api/status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.status)
}
