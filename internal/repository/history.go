package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// ConversationTurn is one exchange between the student and the coach.
type ConversationTurn struct {
	UserMessage string          `json:"user_message"`
	AIResponse  string          `json:"ai_response"`
	Category    string          `json:"category"`
	Timestamp   time.Time       `json:"timestamp"`
	Analysis    json.RawMessage `json:"analysis,omitempty"`
}

// HistoryRepository keeps a bounded per-conversation transcript.
type HistoryRepository interface {
	Append(ctx context.Context, conversationID string, turn ConversationTurn) error
	// Recent returns up to n turns, oldest first.
	Recent(ctx context.Context, conversationID string, n int) ([]ConversationTurn, error)
}

// ListStore is the subset of Redis list commands the history store needs.
type ListStore interface {
	RPush(ctx context.Context, key string, value interface{}) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error
}

// maxStoredTurns bounds how much of a conversation is kept.
const maxStoredTurns = 50

// RedisHistoryRepository stores turns as JSON list entries under conversation:{id}:history.
type RedisHistoryRepository struct {
	lists ListStore
	ttl   time.Duration
}

func NewRedisHistoryRepository(lists ListStore, ttl time.Duration) *RedisHistoryRepository {
	return &RedisHistoryRepository{lists: lists, ttl: ttl}
}

func historyKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:history", conversationID)
}

func (r *RedisHistoryRepository) Append(ctx context.Context, conversationID string, turn ConversationTurn) error {
	key := historyKey(conversationID)
	if err := r.lists.RPush(ctx, key, turn); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	if err := r.lists.LTrim(ctx, key, -maxStoredTurns, -1); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	if r.ttl > 0 {
		if err := r.lists.SetExpiry(ctx, key, r.ttl); err != nil {
			return fmt.Errorf("failed to set history ttl: %w", err)
		}
	}
	return nil
}

func (r *RedisHistoryRepository) Recent(ctx context.Context, conversationID string, n int) ([]ConversationTurn, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := r.lists.LRange(ctx, historyKey(conversationID), int64(-n), -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	turns := make([]ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn ConversationTurn
		if err := json.Unmarshal(item, &turn); err != nil {
			// Skip entries written by an older format.
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// maxMemoryConversations caps how many conversations the in-process store holds.
const maxMemoryConversations = 1000

// defaultMemoryHistoryTTL matches the Redis history default.
const defaultMemoryHistoryTTL = 24 * time.Hour

type memoryConversation struct {
	turns     []ConversationTurn
	updatedAt time.Time
}

// MemoryHistoryRepository is the in-process fallback when Redis is not configured.
// Like the Redis keys, a conversation expires ttl after its last append.
// Past maxMemoryConversations the least recently updated one is dropped.
type MemoryHistoryRepository struct {
	mu            sync.Mutex
	conversations map[string]*memoryConversation
	ttl           time.Duration
	limit         int
	now           func() time.Time
}

func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		conversations: make(map[string]*memoryConversation),
		ttl:           defaultMemoryHistoryTTL,
		limit:         maxMemoryConversations,
		now:           time.Now,
	}
}

// WithTTL sets the idle expiry. Zero or less disables expiry.
func (r *MemoryHistoryRepository) WithTTL(ttl time.Duration) *MemoryHistoryRepository {
	r.ttl = ttl
	return r
}

// WithLimit sets how many conversations are kept.
func (r *MemoryHistoryRepository) WithLimit(limit int) *MemoryHistoryRepository {
	if limit > 0 {
		r.limit = limit
	}
	return r
}

// WithClock replaces the clock used for expiry.
func (r *MemoryHistoryRepository) WithClock(now func() time.Time) *MemoryHistoryRepository {
	r.now = now
	return r
}

func (r *MemoryHistoryRepository) Append(_ context.Context, conversationID string, turn ConversationTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	conv, ok := r.conversations[conversationID]
	if !ok || r.expired(conv, now) {
		conv = &memoryConversation{}
		r.conversations[conversationID] = conv
	}

	conv.turns = append(conv.turns, turn)
	if len(conv.turns) > maxStoredTurns {
		conv.turns = conv.turns[len(conv.turns)-maxStoredTurns:]
	}
	conv.updatedAt = now

	if len(r.conversations) > r.limit {
		r.evict(now)
	}
	return nil
}

func (r *MemoryHistoryRepository) Recent(_ context.Context, conversationID string, n int) ([]ConversationTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 {
		return nil, nil
	}
	conv, ok := r.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	if r.expired(conv, r.now()) {
		delete(r.conversations, conversationID)
		return nil, nil
	}

	turns := conv.turns
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

// Len returns the number of conversations held, expired ones included until evicted.
func (r *MemoryHistoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conversations)
}

func (r *MemoryHistoryRepository) expired(conv *memoryConversation, now time.Time) bool {
	return r.ttl > 0 && now.Sub(conv.updatedAt) >= r.ttl
}

// evict drops expired conversations, then the least recently updated ones until under the limit.
// Callers hold r.mu.
func (r *MemoryHistoryRepository) evict(now time.Time) {
	for id, conv := range r.conversations {
		if r.expired(conv, now) {
			delete(r.conversations, id)
		}
	}
	for len(r.conversations) > r.limit {
		var (
			oldestID string
			oldest   time.Time
		)
		for id, conv := range r.conversations {
			if oldestID == "" || conv.updatedAt.Before(oldest) {
				oldestID, oldest = id, conv.updatedAt
			}
		}
		delete(r.conversations, oldestID)
	}
}
