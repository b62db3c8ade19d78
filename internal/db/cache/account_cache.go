// Package cache decorates a status store with an in-process account cache.
// Accounts are read for every hydrated status and change rarely, so caching
// them cuts a store round trip per view. Statuses, media and counts are
// never cached.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"

	"Murmur/internal/core/statuses"
)

// DefaultAccountTTL bounds how stale a cached account may get
const DefaultAccountTTL = 5 * time.Minute

// NewRistretto builds the local cache client backing the account cache
func NewRistretto() (*ristretto.Cache, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return client, nil
}

type accountCache struct {
	statuses.Store
	marshal *marshaler.Marshaler
	logger  *slog.Logger
	ttl     time.Duration
}

// NewAccountCache wraps base so GetAccount is served from client when possible.
// Every other Store method passes straight through.
func NewAccountCache(base statuses.Store, client *ristretto.Cache, ttl time.Duration, logger *slog.Logger) statuses.Store {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultAccountTTL
	}

	cacheManager := cache.New[any](ristretto_store.NewRistretto(client))
	return &accountCache{
		Store:   base,
		marshal: marshaler.New(cacheManager),
		logger:  logger,
		ttl:     ttl,
	}
}

func accountKey(id string) string {
	return fmt.Sprintf("account#%s", id)
}

// GetAccount returns the cached account or loads and caches it.
// Misses and errors from the base store are not cached.
func (c *accountCache) GetAccount(ctx context.Context, id string) (*statuses.Account, error) {
	key := accountKey(id)

	if cached, err := c.marshal.Get(ctx, key, new(statuses.Account)); err == nil {
		if account, ok := cached.(*statuses.Account); ok {
			return account, nil
		}
	}

	account, err := c.Store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.marshal.Set(ctx, key, account, store.WithCost(1), store.WithExpiration(c.ttl)); err != nil {
		c.logger.Warn("failed to cache account", "account_id", id, "error", err)
	}

	return account, nil
}
