package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps text documents in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates new in-memory storage.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Get returns an actual entry by the key.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || entry.Expired(time.Now()) {
		return nil, nil
	}

	return &entry, nil
}

// Set stores a text by the key.
func (s *MemoryStore) Set(_ context.Context, key, text string, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = Entry{Text: text, ExpiresAt: expiration(ttl)}
	s.mu.Unlock()

	return nil
}
