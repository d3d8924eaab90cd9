package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
	"github.com/windfall/vocal_service/internal/repository"
)

// ConversationTopic is a suggested practice topic.
type ConversationTopic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

var conversationTopics = []ConversationTopic{
	{ID: "self_intro", Title: "Introduce Yourself", Description: "Practice a confident 60-second self introduction", Difficulty: "beginner"},
	{ID: "job_interview", Title: "Job Interview", Description: "Answer common interview questions clearly and concisely", Difficulty: "intermediate"},
	{ID: "presentation", Title: "Work Presentation", Description: "Present a project update to your team", Difficulty: "intermediate"},
	{ID: "storytelling", Title: "Tell a Story", Description: "Share a personal story with a clear beginning, middle and end", Difficulty: "beginner"},
	{ID: "persuasion", Title: "Persuasive Pitch", Description: "Convince your audience to support an idea", Difficulty: "advanced"},
	{ID: "small_talk", Title: "Small Talk", Description: "Keep a casual conversation flowing naturally", Difficulty: "beginner"},
}

// ConversationStart is returned when a new conversation begins.
type ConversationStart struct {
	ConversationID string              `json:"conversation_id"`
	Message        string              `json:"message"`
	CoachName      string              `json:"coach_name"`
	CoachingTips   []string            `json:"coaching_tips"`
	Topics         []ConversationTopic `json:"topics"`
}

// RespondRequest is one student message.
type RespondRequest struct {
	Message        string           `json:"message"`
	History        []HistoryMessage `json:"history,omitempty"`
	ConversationID string           `json:"conversation_id,omitempty"`
}

// ConversationReply is the coach's reply plus quick analysis of the student's message.
type ConversationReply struct {
	ConversationID string                `json:"conversation_id"`
	Reply          CoachingReply         `json:"reply"`
	QuickAnalysis  SpeakingPatternResult `json:"quick_analysis"`
	Timestamp      time.Time             `json:"timestamp"`
}

// ConversationService runs the coaching conversation.
type ConversationService struct {
	generator         *ResponseGenerator
	analyzer          *PatternAnalyzer
	history           repository.HistoryRepository
	backgroundTimeout time.Duration
	log               zerolog.Logger
}

// NewConversationService creates a new conversation service. history may be nil.
func NewConversationService(
	generator *ResponseGenerator,
	analyzer *PatternAnalyzer,
	history repository.HistoryRepository,
	backgroundTimeout time.Duration,
	log zerolog.Logger,
) *ConversationService {
	return &ConversationService{
		generator:         generator,
		analyzer:          analyzer,
		history:           history,
		backgroundTimeout: backgroundTimeout,
		log:               log,
	}
}

// Start opens a conversation with a welcome message.
func (s *ConversationService) Start(ctx context.Context) ConversationStart {
	return ConversationStart{
		ConversationID: uuid.NewString(),
		Message:        "Hi! I'm Alex, your personal speaking coach. Tell me what you'd like to practice today, or pick one of the topics below.",
		CoachName:      CoachName,
		CoachingTips: []string{
			"Speak naturally, as if talking to a friend",
			"Don't worry about mistakes; we're here to practice",
		},
		Topics: s.Topics(),
	}
}

// Topics returns the suggested practice topics.
func (s *ConversationService) Topics() []ConversationTopic {
	out := make([]ConversationTopic, len(conversationTopics))
	copy(out, conversationTopics)
	return out
}

// Respond classifies the message, generates a reply and records the turn in the background.
func (s *ConversationService) Respond(ctx context.Context, req RespondRequest) (*ConversationReply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, errors.Validation("message is required")
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	history := req.History
	if len(history) == 0 && req.ConversationID != "" {
		history = s.storedHistory(ctx, req.ConversationID)
	}

	category := ClassifyIntent(message)
	reply := s.generator.Respond(ctx, category, message, history)
	analysis := s.analyzer.Analyze(ctx, message)
	now := time.Now().UTC()

	s.log.Info().
		Str("conversation_id", conversationID).
		Str("category", string(reply.Category)).
		Int("history", len(history)).
		Msg("Coaching reply generated")

	s.recordTurn(conversationID, message, reply, analysis, now)

	return &ConversationReply{
		ConversationID: conversationID,
		Reply:          reply,
		QuickAnalysis:  analysis,
		Timestamp:      now,
	}, nil
}

// History returns up to limit recorded turns, oldest first.
func (s *ConversationService) History(ctx context.Context, conversationID string, limit int) ([]repository.ConversationTurn, error) {
	if s.history == nil {
		return []repository.ConversationTurn{}, nil
	}
	turns, err := s.history.Recent(ctx, conversationID, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageService, "failed to load conversation history", err)
	}
	if turns == nil {
		turns = []repository.ConversationTurn{}
	}
	return turns, nil
}

// storedHistory flattens recorded turns into prompt messages. Failures yield no history.
func (s *ConversationService) storedHistory(ctx context.Context, conversationID string) []HistoryMessage {
	if s.history == nil {
		return nil
	}
	// Each turn is two messages; the prompt uses the last historyWindow messages.
	turns, err := s.history.Recent(ctx, conversationID, historyWindow/2)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Failed to load history")
		return nil
	}
	messages := make([]HistoryMessage, 0, len(turns)*2)
	for _, t := range turns {
		messages = append(messages,
			HistoryMessage{Speaker: "user", Text: t.UserMessage},
			HistoryMessage{Speaker: "coach", Text: t.AIResponse},
		)
	}
	return messages
}

// recordTurn persists the turn without blocking the reply.
func (s *ConversationService) recordTurn(conversationID, message string, reply CoachingReply, analysis SpeakingPatternResult, at time.Time) <-chan error {
	if s.history == nil {
		return nil
	}
	raw, err := json.Marshal(analysis)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to encode turn analysis")
		raw = nil
	}
	turn := repository.ConversationTurn{
		UserMessage: message,
		AIResponse:  reply.Text,
		Category:    string(reply.Category),
		Timestamp:   at,
		Analysis:    raw,
	}

	log := s.log
	return runDetached(s.backgroundTimeout, func(ctx context.Context) error {
		if err := s.history.Append(ctx, conversationID, turn); err != nil {
			log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Failed to record conversation turn")
			return err
		}
		return nil
	})
}
