package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*SummaryCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return NewSummaryCache(rdb, ttl), mr
}

func sampleSummary() *domain.Summary {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return &domain.Summary{
		Start: &start,
		End:   &end,
		Total: decimal.RequireFromString("52.75"),
		Count: 2,
		Categories: []domain.CategoryTotal{
			{Category: domain.CategoryFoodDining, Total: decimal.RequireFromString("52.75"), Count: 2, Percentage: 100},
		},
	}
}

func TestSetAndGet(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)
	ctx := context.Background()
	want := sampleSummary()
	field := Field(want.Start, want.End)

	require.NoError(t, c.Set(ctx, "user-1", field, want))

	got, ok, err := c.Get(ctx, "user-1", field)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, want.Total.Equal(got.Total))
	assert.Equal(t, want.Count, got.Count)
	assert.True(t, want.Start.Equal(*got.Start))
	require.Len(t, got.Categories, 1)
	assert.Equal(t, domain.CategoryFoodDining, got.Categories[0].Category)
}

func TestGetMiss(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)

	_, ok, err := c.Get(context.Background(), "user-1", Field(nil, nil))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidateDropsEveryPeriod(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)
	ctx := context.Background()
	s := sampleSummary()

	require.NoError(t, c.Set(ctx, "user-1", Field(s.Start, s.End), s))
	require.NoError(t, c.Set(ctx, "user-1", Field(nil, nil), s))
	require.NoError(t, c.Set(ctx, "user-2", Field(nil, nil), s))

	require.NoError(t, c.Invalidate(ctx, "user-1"))

	_, ok, _ := c.Get(ctx, "user-1", Field(s.Start, s.End))
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "user-1", Field(nil, nil))
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "user-2", Field(nil, nil))
	assert.True(t, ok, "other users keep their cache")
}

func TestTTLExpiresHash(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()
	s := sampleSummary()

	require.NoError(t, c.Set(ctx, "user-1", Field(nil, nil), s))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "user-1", Field(nil, nil))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestField(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	assert.Equal(t, "2024-02-29T22:00:00Z|2024-03-01T22:00:00Z", Field(&start, &end))
	assert.Equal(t, "-|-", Field(nil, nil))
}

func TestNop(t *testing.T) {
	var c Nop
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "u", "f", sampleSummary()))
	_, ok, err := c.Get(ctx, "u", "f")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, "u"))
}
