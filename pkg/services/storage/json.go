package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// JSONTextStore stores text documents in a file in json format.
type JSONTextStore struct {
	mu      sync.RWMutex
	entries map[string]Entry // map[key]Entry

	saveMu   sync.Mutex
	filePath string
}

// NewJSONTextStore creates new storage.
func NewJSONTextStore(filePath string) *JSONTextStore {
	return &JSONTextStore{
		filePath: filePath,
		entries:  make(map[string]Entry),
	}
}

// Load reads stored data from disk.
func (s *JSONTextStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// no stored data, ignore
			return nil
		}

		return errors.Wrap(err, "failed to read stored data")
	}

	return json.Unmarshal(data, &s.entries)
}

// Save writes stored data to disk. The file is replaced atomically so readers never see a partial dump.
func (s *JSONTextStore) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := json.Marshal(s.entries)
	s.mu.RUnlock()

	if err != nil {
		return errors.Wrap(err, "failed to encode stored data")
	}

	dir := filepath.Dir(s.filePath)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create a storage directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create a temporary storage file")
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to write stored data")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close a temporary storage file")
	}

	return errors.Wrap(os.Rename(tmp.Name(), s.filePath), "failed to replace the storage file")
}

// Get returns an actual entry by the key.
func (s *JSONTextStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || entry.Expired(time.Now()) {
		return nil, nil
	}

	return &entry, nil
}

// Set stores a text by the key and dumps data to disk.
func (s *JSONTextStore) Set(_ context.Context, key, text string, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = Entry{Text: text, ExpiresAt: expiration(ttl)}
	s.mu.Unlock()

	return s.Save()
}
