package repository

import (
	"sync"
)

// Entity is a base interface for all entities.
type Entity interface {
	GetID() string
}

// MemoryStore is an insertion-ordered in-memory entity store.
// It backs the static speech catalog and the session store used when no database is configured.
type MemoryStore[T Entity] struct {
	mu    sync.RWMutex
	order []string
	data  map[string]T
}

// NewMemoryStore creates a new in-memory store seeded with entities in order.
func NewMemoryStore[T Entity](seed ...T) *MemoryStore[T] {
	s := &MemoryStore[T]{
		data: make(map[string]T, len(seed)),
	}
	for _, entity := range seed {
		_ = s.Insert(entity)
	}
	return s
}

// Get retrieves an entity by ID.
func (s *MemoryStore[T]) Get(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	if entity, ok := s.data[id]; ok {
		return entity, nil
	}
	return zero, ErrNotFound
}

// All returns every entity in insertion order.
func (s *MemoryStore[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities := make([]T, 0, len(s.order))
	for _, id := range s.order {
		entities = append(entities, s.data[id])
	}
	return entities
}

// Len returns the number of stored entities.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Insert adds a new entity.
func (s *MemoryStore[T]) Insert(entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.GetID()
	if _, ok := s.data[id]; ok {
		return ErrAlreadyExists
	}
	s.data[id] = entity
	s.order = append(s.order, id)
	return nil
}

// Update replaces an existing entity.
func (s *MemoryStore[T]) Update(entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.GetID()
	if _, ok := s.data[id]; !ok {
		return ErrNotFound
	}
	s.data[id] = entity
	return nil
}

// Common repository errors
var (
	ErrNotFound      = &RepositoryError{Code: "NOT_FOUND", Message: "entity not found"}
	ErrAlreadyExists = &RepositoryError{Code: "ALREADY_EXISTS", Message: "entity already exists"}
	ErrNotConfigured = &RepositoryError{Code: "NOT_CONFIGURED", Message: "store not configured"}
)

// RepositoryError represents a repository error.
type RepositoryError struct {
	Code    string
	Message string
}

func (e *RepositoryError) Error() string {
	return e.Code + ": " + e.Message
}
