package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

// Cache is a read-through redis cache for whole suggestion batches. The key
// embeds the ticket's updatedAt plus the thread's length and last activity,
// so both ticket mutations and new comments invalidate naturally.
// A nil Cache, or one without a client, is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache builds the cache; client may be nil to disable caching.
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached batch for the ticket's current revision and thread.
func (c *Cache) Get(ctx context.Context, ticket *domain.Ticket, thread []domain.Comment) ([]domain.Suggestion, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(ticket, thread)).Bytes()
	if err != nil {
		return nil, false
	}
	var batch []domain.Suggestion
	if err := json.Unmarshal(raw, &batch); err != nil {
		c.logger.Warn("discarding unreadable suggestion cache entry", zap.Error(err))
		return nil, false
	}
	return batch, true
}

// Set stores the batch, best-effort.
func (c *Cache) Set(ctx context.Context, ticket *domain.Ticket, thread []domain.Comment, batch []domain.Suggestion) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(batch)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(ticket, thread), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache suggestion batch", zap.Error(err))
	}
}

func cacheKey(ticket *domain.Ticket, thread []domain.Comment) string {
	var lastComment int64
	if n := len(thread); n > 0 {
		lastComment = thread[n-1].CreatedAt.Unix()
	}
	return fmt.Sprintf("suggestions:%s:%d:%d:%d", ticket.ID, ticket.UpdatedAt.Unix(), len(thread), lastComment)
}
