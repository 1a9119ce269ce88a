package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pmorel/cv-backend/internal/logging"
	"github.com/pmorel/cv-backend/internal/server/diplomas"
)

func unreachableCache(t *testing.T) *DiplomaList {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewDiplomaList(client, time.Minute, logger)
}

// The cache is an accelerator only: with Redis down, every operation must
// degrade to a miss or a no-op without returning errors or panicking.
func TestDiplomaList_ToleratesUnreachableRedis(t *testing.T) {
	c := unreachableCache(t)
	ctx := context.Background()

	if _, ok := c.Get(ctx); ok {
		t.Fatal("unreachable redis must read as a miss")
	}

	c.Set(ctx, []*diplomas.Diploma{{ID: 1, Title: "x"}})
	c.Invalidate(ctx)
}

func TestDiplomaList_ImplementsListCache(t *testing.T) {
	var _ diplomas.ListCache = (*DiplomaList)(nil)
}
