// Package cache implements an optional Redis-backed cache for the public
// diploma list. It is purely an accelerator: every failure reads as a miss
// and is logged, never surfaced.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pmorel/cv-backend/internal/logging"
	"github.com/pmorel/cv-backend/internal/server/diplomas"
)

const listKey = "diplomas:list"

// DiplomaList caches the ordered diploma list as JSON under a single key.
// It satisfies diplomas.ListCache.
type DiplomaList struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

func NewDiplomaList(client *redis.Client, ttl time.Duration, logger logging.Logger) *DiplomaList {
	return &DiplomaList{
		client: client,
		ttl:    ttl,
		logger: logger.With("module", "cache"),
	}
}

func (c *DiplomaList) Get(ctx context.Context) ([]*diplomas.Diploma, bool) {
	raw, err := c.client.Get(ctx, listKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "cache get failed", "error", err.Error())
		}
		return nil, false
	}

	var items []*diplomas.Diploma
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn(ctx, "cache entry corrupt, dropping", "error", err.Error())
		c.Invalidate(ctx)
		return nil, false
	}
	return items, true
}

func (c *DiplomaList) Set(ctx context.Context, items []*diplomas.Diploma) {
	raw, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn(ctx, "cache marshal failed", "error", err.Error())
		return
	}
	if err := c.client.Set(ctx, listKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "cache set failed", "error", err.Error())
	}
}

// Invalidate drops the cached list. A failed invalidation is tolerable:
// the entry still expires via its TTL.
func (c *DiplomaList) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, listKey).Err(); err != nil {
		c.logger.Warn(ctx, "cache invalidate failed", "error", err.Error())
	}
}
