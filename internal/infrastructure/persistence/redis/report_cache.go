package redis

import (
	"context"
	"errors"
	"time"

	"github.com/toqeer-ahmed/MindMate/internal/domain/risk"
)

// ReportCache stores the latest advisor batch per window length.
type ReportCache struct {
	cache *Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewReportCache creates a ReportCache. Batches older than ttl are misses.
func NewReportCache(cache *Cache, ttl time.Duration) *ReportCache {
	return &ReportCache{cache: cache, ttl: ttl, now: time.Now}
}

// Store saves a batch as the latest one for its window length.
func (r *ReportCache) Store(ctx context.Context, b risk.Batch) error {
	return r.cache.Set(ctx, ReportsKey(b.WindowDays), b, r.ttl)
}

// Latest returns the latest fresh batch for a window length, or ErrCacheMiss.
func (r *ReportCache) Latest(ctx context.Context, windowDays int) (risk.Batch, error) {
	var b risk.Batch
	if err := r.cache.Get(ctx, ReportsKey(windowDays), &b); err != nil {
		return risk.Batch{}, err
	}
	if !r.fresh(b) {
		return risk.Batch{}, ErrCacheMiss
	}
	return b, nil
}

// Previous returns the stored batch regardless of age, for change detection.
func (r *ReportCache) Previous(ctx context.Context, windowDays int) (risk.Batch, bool, error) {
	var b risk.Batch
	err := r.cache.Get(ctx, ReportsKey(windowDays), &b)
	if errors.Is(err, ErrCacheMiss) {
		return risk.Batch{}, false, nil
	}
	if err != nil {
		return risk.Batch{}, false, err
	}
	return b, true, nil
}

// fresh guards against keys written without a TTL or with a skewed clock.
func (r *ReportCache) fresh(b risk.Batch) bool {
	if r.ttl <= 0 {
		return true
	}
	return r.now().Sub(b.ComputedAt) <= r.ttl
}
