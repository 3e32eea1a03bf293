// Package redis caches token revocations in front of the durable
// blacklist so the hot validation path usually avoids a database
// round-trip.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/ports"
)

// RevocationCache layers a redis key-per-token cache over the durable
// RevocationStore. Writes go to the durable store first; the cache entry
// expires with the token itself.
type RevocationCache struct {
	client *redis.Client
	next   ports.RevocationStore
	prefix string
}

// NewRevocationCache wraps next with a redis cache.
func NewRevocationCache(client *redis.Client, next ports.RevocationStore) ports.RevocationStore {
	return &RevocationCache{
		client: client,
		next:   next,
		prefix: "sigil:revoked:",
	}
}

func (c *RevocationCache) Blacklist(ctx context.Context, entry *core.BlacklistEntry) error {
	if err := c.next.Blacklist(ctx, entry); err != nil {
		return err
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl < time.Hour {
		// Keep the cache entry around even for near-expired tokens so
		// slightly skewed clocks cannot resurrect them.
		ttl = time.Hour
	}

	if err := c.client.Set(ctx, c.prefix+entry.TokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("cache revocation: %w", err)
	}
	return nil
}

func (c *RevocationCache) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	exists, err := c.client.Exists(ctx, c.prefix+tokenID).Result()
	if err == nil && exists > 0 {
		return true, nil
	}

	// Cache miss or redis failure: the durable record decides.
	return c.next.IsBlacklisted(ctx, tokenID)
}
