// Package memory provides a map-backed blocklist store for tests and local
// development. For production, use the Redis store instead.
package memory

import (
	"context"
	"sync"
)

// Store implements blocklist.Store over an in-process set.
type Store struct {
	mu       sync.RWMutex
	subjects map[string]struct{}
}

// New creates an empty in-memory blocklist store.
func New(subjects ...string) *Store {
	s := &Store{subjects: make(map[string]struct{}, len(subjects))}
	for _, subject := range subjects {
		s.subjects[subject] = struct{}{}
	}
	return s
}

// Contains reports membership of subject.
func (s *Store) Contains(ctx context.Context, subject string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subjects[subject]
	return ok, nil
}

// Add inserts a subject into the set.
func (s *Store) Add(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subject] = struct{}{}
}

// Remove deletes a subject from the set.
func (s *Store) Remove(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subjects, subject)
}
