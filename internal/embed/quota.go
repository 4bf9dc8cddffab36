package embed

import (
	"context"
	"strconv"
	"time"

	"github.com/robalyx/embedder/internal/cache"
	"go.uber.org/zap"
)

// QuotaWindow is the rolling window server quotas are counted over.
const QuotaWindow = 24 * time.Hour

// QuotaTracker counts the posts a server requested within the quota window.
type QuotaTracker struct {
	repo   PostRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewQuotaTracker creates a quota tracker.
func NewQuotaTracker(repo PostRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *QuotaTracker {
	return &QuotaTracker{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger.Named("quota"),
	}
}

func postCountKey(serverID int64) string {
	return "post_count:" + strconv.FormatInt(serverID, 10)
}

// CountLast24h returns the number of posts requested in the last 24 hours.
// The cached counter is trusted within its TTL; otherwise the count is rebuilt
// from the datastore.
func (q *QuotaTracker) CountLast24h(ctx context.Context, serverID int64) (int, error) {
	key := postCountKey(serverID)

	var count int
	found, err := q.cache.Get(ctx, key, &count)
	if err != nil {
		q.logger.Warn("Failed to read cached post count", zap.String("key", key), zap.Error(err))
	} else if found {
		return count, nil
	}

	count, err = q.repo.CountServerPosts(ctx, serverID, time.Now().Add(-QuotaWindow))
	if err != nil {
		return 0, err
	}

	if err := q.cache.Set(ctx, key, count, q.ttl); err != nil {
		q.logger.Warn("Failed to cache post count", zap.String("key", key), zap.Error(err))
	}

	return count, nil
}

// Increment bumps the cached counter after a post request was recorded.
// A missing counter stays missing so the next read recounts.
func (q *QuotaTracker) Increment(ctx context.Context, serverID int64) {
	key := postCountKey(serverID)

	if _, err := q.cache.IncrIfExists(ctx, key); err != nil {
		q.logger.Warn("Failed to increment post count, dropping counter", zap.String("key", key), zap.Error(err))
		if err := q.cache.Delete(ctx, key); err != nil {
			q.logger.Error("Failed to drop post count", zap.String("key", key), zap.Error(err))
		}
	}
}
