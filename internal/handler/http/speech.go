package http

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
	"github.com/windfall/vocal_service/internal/service"
	"github.com/windfall/vocal_service/pkg/response"
)

// maxUploadBytes bounds the multipart form held in memory.
const maxUploadBytes = 32 << 20

// SpeechHandler serves speech-to-text and text-to-speech.
type SpeechHandler struct {
	log           zerolog.Logger
	transcription *service.TranscriptionService
	voice         *service.VoiceService
}

// NewSpeechHandler creates a new speech handler.
func NewSpeechHandler(log zerolog.Logger, transcription *service.TranscriptionService, voice *service.VoiceService) *SpeechHandler {
	return &SpeechHandler{
		log:           log,
		transcription: transcription,
		voice:         voice,
	}
}

// SpeechToText handles POST /api/speech-to-text
//
// Request: multipart/form-data with a "file" field.
func (h *SpeechHandler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		handleError(w, h.log, errors.Validation("failed to parse multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, h.log, errors.Validation("file is required"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		handleError(w, h.log, errors.Validation("failed to read audio file"))
		return
	}

	result, err := h.transcription.Transcribe(r.Context(), audio, header.Filename)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// TextToSpeechRequest is the body of POST /api/text-to-speech.
type TextToSpeechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id,omitempty"`
	Store   bool   `json:"store,omitempty"`
}

// TextToSpeech handles POST /api/text-to-speech
//
// Without store the raw MPEG audio is returned; with store the audio is uploaded and its URL returned.
func (h *SpeechHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req TextToSpeechRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}

	out, err := h.voice.Synthesize(r.Context(), req.Text, req.VoiceID, req.Store)
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	if req.Store {
		response.JSON(w, http.StatusOK, out)
		return
	}
	response.Audio(w, out.ContentType, out.Audio)
}

// Voices handles GET /api/voices
func (h *SpeechHandler) Voices(w http.ResponseWriter, r *http.Request) {
	voices := h.voice.Voices(r.Context())
	response.JSONWithMeta(w, http.StatusOK, voices, &response.Meta{Total: len(voices)})
}
