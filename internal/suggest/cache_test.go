package suggest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cassianoaxe/endurancy-support/internal/domain"
)

func TestCacheKeyChangesWhenThreadGrows(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", UpdatedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	thread := []domain.Comment{
		{ID: "c1", CreatedAt: time.Date(2025, 3, 10, 12, 5, 0, 0, time.UTC)},
	}

	before := cacheKey(ticket, thread)
	assert.Equal(t, before, cacheKey(ticket, thread))

	// A comment that triggers no status transition leaves UpdatedAt alone;
	// the key must still move so the old batch cannot be served.
	grown := append(thread, domain.Comment{
		ID:        "c2",
		CreatedAt: time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC),
	})
	assert.NotEqual(t, before, cacheKey(ticket, grown))

	bumped := *ticket
	bumped.UpdatedAt = bumped.UpdatedAt.Add(time.Minute)
	assert.NotEqual(t, before, cacheKey(&bumped, thread))
}

func TestCacheKeyEmptyThread(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", UpdatedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	assert.NotEqual(t, cacheKey(ticket, nil), cacheKey(ticket, []domain.Comment{
		{ID: "c1", CreatedAt: ticket.UpdatedAt},
	}))
}

func TestCacheWithoutClientIsNoOp(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", UpdatedAt: time.Now()}

	var nilCache *Cache
	batch, ok := nilCache.Get(context.Background(), ticket, nil)
	assert.False(t, ok)
	assert.Nil(t, batch)

	disabled := NewCache(nil, time.Minute, nil)
	batch, ok = disabled.Get(context.Background(), ticket, nil)
	assert.False(t, ok)
	assert.Nil(t, batch)
	disabled.Set(context.Background(), ticket, nil, []domain.Suggestion{{Type: domain.SuggestionTypeStatus}})
}
