/*
2024 © Postgres.ai
*/

package schema

import (
	"context"
	"time"

	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/services/storage"
)

// CachedProvider keeps a computed schema text in a store for the configured time.
type CachedProvider struct {
	store    storage.TextStore
	key      string
	ttl      time.Duration
	provider Provider
}

// NewCachedProvider creates a caching wrapper around a provider.
func NewCachedProvider(store storage.TextStore, key string, ttl time.Duration, provider Provider) *CachedProvider {
	return &CachedProvider{
		store:    store,
		key:      key,
		ttl:      ttl,
		provider: provider,
	}
}

// Text returns a cached schema text or computes and caches a new one.
// Storage failures are logged and do not prevent the schema from being computed.
func (p *CachedProvider) Text(ctx context.Context) (string, error) {
	if p.store != nil {
		entry, err := p.store.Get(ctx, p.key)
		if err != nil {
			log.Err("failed to get cached schema:", err)
		}

		if entry != nil {
			return entry.Text, nil
		}
	}

	schemaText, err := p.provider.Text(ctx)
	if err != nil {
		return "", err
	}

	if p.store != nil {
		if err := p.store.Set(ctx, p.key, schemaText, p.ttl); err != nil {
			log.Err("failed to cache schema:", err)
		}
	}

	return schemaText, nil
}
