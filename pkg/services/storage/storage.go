/*
2021 © Postgres.ai
*/

// Package storage provides ability to keep cached text documents in memory, on disk or in Redis.
package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/postgres-ai/askdb/pkg/config"
)

// Supported storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Entry defines a stored text document.
type Entry struct {
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired checks if the entry is outdated at the given moment.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// TextStore getters and setters for cached text documents.
type TextStore interface {
	// Get returns nil without an error when no actual entry is stored by the key.
	Get(ctx context.Context, key string) (*Entry, error)
	// Set stores a text by the key. A non-positive TTL means the entry never expires.
	Set(ctx context.Context, key, text string, ttl time.Duration) error
}

// PersistentTextStore allows to dump data from memory to some persistent storage.
type PersistentTextStore interface {
	Load() error
	Save() error

	TextStore
}

// New creates a text store for the configured driver.
func New(cfg config.Storage) (TextStore, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil

	case DriverFile:
		store := NewJSONTextStore(cfg.FilePath)
		if err := store.Load(); err != nil {
			return nil, errors.Wrap(err, "failed to load stored data")
		}

		return store, nil

	case DriverRedis:
		return NewRedisStoreFromConfig(cfg), nil

	default:
		return nil, errors.Errorf("unknown storage driver given: %q", cfg.Driver)
	}
}

func expiration(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}

	return time.Now().Add(ttl)
}
