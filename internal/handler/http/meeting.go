package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/service"
	"github.com/windfall/vocal_service/pkg/response"
)

// MeetingHandler serves virtual meeting practice.
type MeetingHandler struct {
	log      zerolog.Logger
	meetings *service.MeetingService
}

// NewMeetingHandler creates a new meeting handler.
func NewMeetingHandler(log zerolog.Logger, meetings *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{
		log:      log,
		meetings: meetings,
	}
}

// Templates handles GET /api/meetings/templates
func (h *MeetingHandler) Templates(w http.ResponseWriter, r *http.Request) {
	templates := h.meetings.Templates()
	response.JSONWithMeta(w, http.StatusOK, templates, &response.Meta{Total: len(templates)})
}

// MeetingAnalyzeRequest is the body of POST /api/meetings/analyze.
type MeetingAnalyzeRequest struct {
	Text        string `json:"text"`
	MeetingType string `json:"meeting_type"`
}

// Analyze handles POST /api/meetings/analyze
func (h *MeetingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req MeetingAnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}

	result, err := h.meetings.Analyze(req.Text, req.MeetingType)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// ScheduleRequest is the body of POST /api/meetings/schedule.
type ScheduleRequest struct {
	MeetingType string `json:"meeting_type"`
	DateTime    string `json:"date_time"`
}

// Schedule handles POST /api/meetings/schedule
func (h *MeetingHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}

	result, err := h.meetings.Schedule(req.MeetingType, req.DateTime)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
