package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

type countingStats struct {
	calls int
	err   error
}

func (c *countingStats) Stats(_ context.Context, leg models.ExtractedLeg) (StatsSignal, error) {
	c.calls++
	if c.err != nil {
		return StatsSignal{}, c.err
	}
	return DeriveStats(leg), nil
}

func TestCachedStatsProvider(t *testing.T) {
	inner := &countingStats{}
	cached := NewCachedStatsProvider(inner, time.Minute)
	ctx := context.Background()
	leg := models.ExtractedLeg{Selection: "Tatum over 29.5", Market: "points", Line: "29.5"}

	first, err := cached.Stats(ctx, leg)
	require.NoError(t, err)
	second, err := cached.Stats(ctx, models.ExtractedLeg{Selection: "TATUM OVER 29.5", Market: "pts", Line: "29.5"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cached.ItemCount())

	hits, misses, ratio := cached.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)

	// different line is a different key
	_, err = cached.Stats(ctx, models.ExtractedLeg{Selection: "Tatum over 29.5", Market: "points", Line: "31.5"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	cached.Clear()
	assert.Equal(t, 0, cached.ItemCount())
	hits, misses, _ = cached.CacheStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestCachedStatsProviderReturnsCopies(t *testing.T) {
	cached := NewCachedStatsProvider(HeuristicStats{}, time.Minute)
	leg := models.ExtractedLeg{Selection: "Tatum", Market: "points"}

	first, err := cached.Stats(context.Background(), leg)
	require.NoError(t, err)
	*first.Season = 0
	first.Notes[0] = "mutated"

	second, err := cached.Stats(context.Background(), leg)
	require.NoError(t, err)
	assert.NotEqual(t, 0, *second.Season)
	assert.NotEqual(t, "mutated", second.Notes[0])
}

func TestCachedStatsProviderDoesNotCacheErrors(t *testing.T) {
	inner := &countingStats{err: errors.New("down")}
	cached := NewCachedStatsProvider(inner, time.Minute)
	leg := models.ExtractedLeg{Selection: "A"}

	_, err := cached.Stats(context.Background(), leg)
	require.Error(t, err)
	_, err = cached.Stats(context.Background(), leg)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.ItemCount())
}
