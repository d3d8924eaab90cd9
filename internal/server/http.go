package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/config"
	httphandler "github.com/windfall/vocal_service/internal/handler/http"
	wshandler "github.com/windfall/vocal_service/internal/handler/ws"
	"github.com/windfall/vocal_service/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by the server.
type Handlers struct {
	Health       *httphandler.HealthHandler
	Coaching     *httphandler.CoachingHandler
	Conversation *httphandler.ConversationHandler
	Speech       *httphandler.SpeechHandler
	Session      *httphandler.SessionHandler
	Meeting      *httphandler.MeetingHandler
	WebSocket    *wshandler.Handler
}

// HTTPServer represents the HTTP server.
type HTTPServer struct {
	server *http.Server
	log    zerolog.Logger
}

// NewHTTPServer creates a new HTTP server.
func NewHTTPServer(cfg *config.Config, log zerolog.Logger, hub *WebSocketHub, h Handlers) *HTTPServer {
	server := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      NewRouter(cfg, log, hub, h),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &HTTPServer{
		server: server,
		log:    log,
	}
}

// NewRouter builds the routing tree.
func NewRouter(cfg *config.Config, log zerolog.Logger, hub *WebSocketHub, h Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (public)
	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)
	r.Get("/live", h.Health.Live)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.APIKeys))
		r.Use(chimiddleware.Compress(5))

		r.Get("/status", h.Health.Status)

		// Coaching
		r.Post("/analyze", h.Coaching.Analyze)
		r.Post("/analyze/pattern", h.Coaching.AnalyzePattern)
		r.Post("/compare-with-pro", h.Coaching.Compare)
		r.Get("/professional-speeches", h.Coaching.ProfessionalSpeeches)
		r.Get("/professional-speeches/{id}", h.Coaching.ProfessionalSpeech)

		// Conversation
		r.Route("/conversation", func(r chi.Router) {
			r.Post("/start", h.Conversation.Start)
			r.Post("/respond", h.Conversation.Respond)
			r.Get("/topics", h.Conversation.Topics)
			r.Get("/{id}/history", h.Conversation.History)
		})

		// Speech
		r.Post("/speech-to-text", h.Speech.SpeechToText)
		r.Post("/text-to-speech", h.Speech.TextToSpeech)
		r.Get("/voices", h.Speech.Voices)

		// Sessions
		r.Post("/sessions", h.Session.Create)
		r.Get("/sessions", h.Session.List)
		r.Get("/sessions/{id}", h.Session.Get)
		r.Post("/sessions/{id}/analysis", h.Session.Analyze)
		r.Get("/statistics", h.Session.Statistics)

		// Meetings
		r.Get("/meetings/templates", h.Meeting.Templates)
		r.Post("/meetings/analyze", h.Meeting.Analyze)
		r.Post("/meetings/schedule", h.Meeting.Schedule)
	})

	r.With(middleware.APIKey(cfg.APIKeys)).Get("/ws/conversation", func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, h.WebSocket)
	})

	return r
}

// Start starts the HTTP server.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
