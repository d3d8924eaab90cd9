package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/windfall/vocal_service/internal/errors"
	"github.com/windfall/vocal_service/internal/repository"
)

// statisticsWindow is how many recent sessions statistics are computed over.
const statisticsWindow = 50

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// EventPublisher publishes session events to a message bus.
type EventPublisher interface {
	Publish(ctx context.Context, data interface{}, attrs map[string]string) error
}

// SessionEvent is published after a session or its analysis is stored.
type SessionEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	WordCount int       `json:"word_count"`
	At        time.Time `json:"at"`
}

// CreateSessionRequest is the input for a new practice session.
type CreateSessionRequest struct {
	Text          string  `json:"text"`
	AudioDuration float64 `json:"audio_duration"`
	RecordedAt    string  `json:"recorded_at"`
	Kind          string  `json:"kind,omitempty"`
}

// SaveResult is the outcome of a detached save.
type SaveResult struct {
	SessionID string
	Err       error
}

// Statistics summarizes recent sessions.
type Statistics struct {
	TotalSessions     int     `json:"total_sessions"`
	AverageClarity    float64 `json:"average_clarity"`
	AverageConfidence float64 `json:"average_confidence"`
	TotalWords        int     `json:"total_words"`
	SessionsAnalyzed  int     `json:"sessions_analyzed"`
	IsMock            bool    `json:"is_mock,omitempty"`
}

// SessionService manages practice sessions.
type SessionService struct {
	repo              repository.SessionRepository
	analyzer          SpeechAnalyzer
	events            EventPublisher
	backgroundTimeout time.Duration
	log               zerolog.Logger
}

// NewSessionService creates a new session service. events may be nil.
func NewSessionService(
	repo repository.SessionRepository,
	analyzer SpeechAnalyzer,
	events EventPublisher,
	backgroundTimeout time.Duration,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		repo:              repo,
		analyzer:          analyzer,
		events:            events,
		backgroundTimeout: backgroundTimeout,
		log:               log,
	}
}

// Backend names the configured store.
func (s *SessionService) Backend() string {
	if s.repo == nil {
		return "none"
	}
	return s.repo.Backend()
}

// Create stores a new session.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*repository.Session, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperrors.Validation("text is required")
	}
	if req.AudioDuration < 0 {
		return nil, apperrors.Validation("audio_duration must not be negative")
	}
	if s.repo == nil {
		return nil, apperrors.Storage("session store not configured", nil)
	}

	kind := req.Kind
	if kind == "" {
		kind = repository.SessionKindPractice
	}
	session := &repository.Session{
		Kind:          kind,
		Text:          req.Text,
		AudioDuration: req.AudioDuration,
		RecordedAt:    req.RecordedAt,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, apperrors.Storage("failed to save session", err)
	}

	s.log.Info().Str("session_id", session.ID).Str("kind", kind).Msg("Session saved")
	s.publish("session.created", session)
	return session, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, id string) (*repository.Session, error) {
	if s.repo == nil {
		return nil, apperrors.Storage("session store not configured", nil)
	}
	session, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("session")
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load session", err)
	}
	return session, nil
}

// List returns recent sessions, newest first. limit is clamped to [1, 100]; 0 means 10.
func (s *SessionService) List(ctx context.Context, limit int) ([]*repository.Session, error) {
	if s.repo == nil {
		return nil, apperrors.Storage("session store not configured", nil)
	}
	limit = clampLimit(limit)
	sessions, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Storage("failed to list sessions", err)
	}
	if sessions == nil {
		sessions = []*repository.Session{}
	}
	return sessions, nil
}

// Analyze runs a speech analysis on the stored session text and attaches it.
func (s *SessionService) Analyze(ctx context.Context, id string) (*repository.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	analysis := s.analyzer.Analyze(ctx, session.Text)
	data := analysis.ToMap()
	if err := s.repo.UpdateAnalysis(ctx, id, data); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("session")
		}
		return nil, apperrors.Storage("failed to save analysis", err)
	}

	session.Analysis = data
	s.publish("session.analyzed", session)
	return session, nil
}

// SaveAsync stores a session and optional analysis in the background.
// The buffered channel receives one SaveResult; callers may ignore it.
func (s *SessionService) SaveAsync(req CreateSessionRequest, analysis *SpeechAnalysis) <-chan SaveResult {
	out := make(chan SaveResult, 1)
	if s.repo == nil {
		out <- SaveResult{Err: repository.ErrNotConfigured}
		return out
	}

	session := &repository.Session{
		Kind:          req.Kind,
		Text:          req.Text,
		AudioDuration: req.AudioDuration,
		RecordedAt:    req.RecordedAt,
	}
	if session.Kind == "" {
		session.Kind = repository.SessionKindPractice
	}
	if analysis != nil {
		session.Analysis = analysis.ToMap()
	}

	done := runDetached(s.backgroundTimeout, func(ctx context.Context) error {
		return s.repo.Create(ctx, session)
	})
	go func() {
		err := <-done
		if err != nil {
			s.log.Warn().Err(err).Str("kind", session.Kind).Msg("Background session save failed")
		} else {
			s.publish("session.created", session)
		}
		out <- SaveResult{SessionID: session.ID, Err: err}
	}()
	return out
}

// AttachAnalysisAsync stores an analysis on an existing session in the background.
func (s *SessionService) AttachAnalysisAsync(id string, analysis SpeechAnalysis) <-chan error {
	if s.repo == nil {
		out := make(chan error, 1)
		out <- repository.ErrNotConfigured
		return out
	}
	data := analysis.ToMap()
	log := s.log
	return runDetached(s.backgroundTimeout, func(ctx context.Context) error {
		if err := s.repo.UpdateAnalysis(ctx, id, data); err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("Background analysis save failed")
			return err
		}
		return nil
	})
}

// Statistics aggregates the most recent sessions. Without a reachable store it returns demo values.
func (s *SessionService) Statistics(ctx context.Context) Statistics {
	if s.repo == nil {
		return mockStatistics()
	}
	sessions, err := s.repo.List(ctx, statisticsWindow)
	if err != nil {
		s.log.Warn().Err(err).Msg("Statistics fell back to demo values")
		return mockStatistics()
	}
	return ComputeStatistics(sessions)
}

// ComputeStatistics averages clarity and confidence over sessions that have an analysis.
func ComputeStatistics(sessions []*repository.Session) Statistics {
	stats := Statistics{TotalSessions: len(sessions)}

	var clarity, confidence float64
	for _, session := range sessions {
		if !session.HasAnalysis() {
			continue
		}
		clarity += numberField(session.Analysis, "clarity_score")
		confidence += numberField(session.Analysis, "confidence_score")
		stats.TotalWords += int(numberField(session.Analysis, "word_count"))
		stats.SessionsAnalyzed++
	}

	denominator := float64(max(stats.SessionsAnalyzed, 1))
	stats.AverageClarity = round1(clarity / denominator)
	stats.AverageConfidence = round1(confidence / denominator)
	return stats
}

func mockStatistics() Statistics {
	return Statistics{
		TotalSessions:     0,
		AverageClarity:    7.5,
		AverageConfidence: 7.0,
		TotalWords:        0,
		IsMock:            true,
	}
}

// numberField reads a numeric value from decoded JSON or BSON.
func numberField(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *SessionService) publish(eventType string, session *repository.Session) {
	if s.events == nil {
		return
	}
	event := SessionEvent{
		Type:      eventType,
		SessionID: session.ID,
		Kind:      session.Kind,
		WordCount: len(strings.Fields(session.Text)),
		At:        time.Now().UTC(),
	}
	log := s.log
	runDetached(s.backgroundTimeout, func(ctx context.Context) error {
		if err := s.events.Publish(ctx, event, map[string]string{"type": eventType}); err != nil {
			log.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to publish session event")
			return err
		}
		return nil
	})
}
