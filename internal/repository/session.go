package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session kinds.
const (
	SessionKindPractice     = "practice"
	SessionKindComparison   = "comparison"
	SessionKindConversation = "conversation"
	SessionKindMeeting      = "meeting"
)

// Session is one stored practice record with its optional analysis.
type Session struct {
	ID            string                 `json:"session_id" bson:"_id"`
	Kind          string                 `json:"kind" bson:"kind"`
	Text          string                 `json:"text" bson:"text"`
	AudioDuration float64                `json:"audio_duration" bson:"audio_duration"`
	RecordedAt    string                 `json:"recorded_at,omitempty" bson:"recorded_at,omitempty"`
	Analysis      map[string]interface{} `json:"analysis,omitempty" bson:"analysis,omitempty"`
	CreatedAt     time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" bson:"updated_at"`
}

// GetID returns the session ID.
func (s *Session) GetID() string {
	return s.ID
}

// HasAnalysis reports whether an analysis has been attached.
func (s *Session) HasAnalysis() bool {
	return len(s.Analysis) > 0
}

// SessionRepository persists practice sessions.
type SessionRepository interface {
	// Create stores the session and fills in ID and timestamps.
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	// List returns the most recent sessions first.
	List(ctx context.Context, limit int) ([]*Session, error)
	UpdateAnalysis(ctx context.Context, id string, analysis map[string]interface{}) error
	// Backend names the storage engine.
	Backend() string
}

// MemorySessionRepository keeps sessions in process memory.
type MemorySessionRepository struct {
	store *MemoryStore[*Session]
	now   func() time.Time
}

// NewMemorySessionRepository creates an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		store: NewMemoryStore[*Session](),
		now:   time.Now,
	}
}

func (r *MemorySessionRepository) Create(_ context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := r.now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	stored := *session
	return r.store.Insert(&stored)
}

func (r *MemorySessionRepository) GetByID(_ context.Context, id string) (*Session, error) {
	session, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	out := *session
	return &out, nil
}

func (r *MemorySessionRepository) List(_ context.Context, limit int) ([]*Session, error) {
	all := r.store.All()
	sessions := make([]*Session, 0, len(all))
	// Insertion order is creation order, so walk it backwards for newest first.
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(sessions) == limit {
			break
		}
		out := *all[i]
		sessions = append(sessions, &out)
	}
	return sessions, nil
}

func (r *MemorySessionRepository) UpdateAnalysis(_ context.Context, id string, analysis map[string]interface{}) error {
	session, err := r.store.Get(id)
	if err != nil {
		return err
	}
	updated := *session
	updated.Analysis = analysis
	updated.UpdatedAt = r.now().UTC()
	return r.store.Update(&updated)
}

func (r *MemorySessionRepository) Backend() string {
	return "memory"
}
