// Package cache provides Redis-backed caching for expensive read paths.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dotoriham/backend/internal/domain/models"
)

const forestTTL = 10 * time.Minute

// ForestCache caches the fully assembled folder forest per account.
// A nil *ForestCache is valid and disables caching, so callers never
// need to branch on whether Redis is configured.
type ForestCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewForestCache creates a forest cache over the given Redis client.
// Pass a nil client to disable caching.
func NewForestCache(client *redis.Client, logger *slog.Logger) *ForestCache {
	if client == nil {
		return nil
	}
	return &ForestCache{client: client, logger: logger}
}

func forestKey(accountID string) string {
	return fmt.Sprintf("forest:%s", accountID)
}

// Get returns the cached forest for the account, or (nil, nil) on a miss.
// Cache errors are logged and treated as misses.
func (c *ForestCache) Get(ctx context.Context, accountID string) (*models.Forest, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, forestKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		c.logger.Warn("forest cache read failed", "account_id", accountID, "error", err)
		return nil, nil
	}

	var forest models.Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		c.logger.Warn("forest cache entry corrupt", "account_id", accountID, "error", err)
		return nil, nil
	}

	return &forest, nil
}

// Set stores the forest for the account with a short TTL
func (c *ForestCache) Set(ctx context.Context, accountID string, forest *models.Forest) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(forest)
	if err != nil {
		return fmt.Errorf("marshal forest: %w", err)
	}

	if err := c.client.Set(ctx, forestKey(accountID), data, forestTTL).Err(); err != nil {
		c.logger.Warn("forest cache write failed", "account_id", accountID, "error", err)
	}

	return nil
}

// Invalidate drops the cached forest for the account. Any mutation of
// the folder tree or bookmark counts must invalidate before returning.
func (c *ForestCache) Invalidate(ctx context.Context, accountID string) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, forestKey(accountID)).Err(); err != nil {
		c.logger.Warn("forest cache invalidation failed", "account_id", accountID, "error", err)
	}
}

// InvalidateAll drops the cached forest for every listed account
func (c *ForestCache) InvalidateAll(ctx context.Context, accountIDs []string) {
	for _, id := range accountIDs {
		c.Invalidate(ctx, id)
	}
}
