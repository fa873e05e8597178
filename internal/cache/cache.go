package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// SummaryCache keeps computed summaries per user in one Redis hash, so a
// single DEL drops every cached period for that user.
type SummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient parses a redis:// URL and verifies the server is reachable.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.MaxRetries = 2

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func NewSummaryCache(rdb *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{rdb: rdb, ttl: ttl}
}

func summaryKey(userID string) string { return "summary:" + userID }

// Field identifies one resolved interval within a user's hash.
func Field(start, end *time.Time) string {
	f := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return f(start) + "|" + f(end)
}

func (c *SummaryCache) Get(ctx context.Context, userID, field string) (*domain.Summary, bool, error) {
	raw, err := c.rdb.HGet(ctx, summaryKey(userID), field).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.SummaryCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.SummaryCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("summary cache get: %w", err)
	}

	var s domain.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		metrics.SummaryCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("summary cache decode: %w", err)
	}
	metrics.SummaryCacheTotal.WithLabelValues("hit").Inc()
	return &s, true, nil
}

func (c *SummaryCache) Set(ctx context.Context, userID, field string, s *domain.Summary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("summary cache encode: %w", err)
	}

	key := summaryKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, field, raw)
	// The TTL is refreshed on every write, so a busy user's hash lives until
	// the next invalidation or ttl after their last summary request.
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("summary cache set: %w", err)
	}
	return nil
}

func (c *SummaryCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, summaryKey(userID)).Err(); err != nil {
		return fmt.Errorf("summary cache invalidate: %w", err)
	}
	return nil
}

// Nop is used when no Redis is configured. Every lookup misses.
type Nop struct{}

func (Nop) Get(context.Context, string, string) (*domain.Summary, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, string, string, *domain.Summary) error { return nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
