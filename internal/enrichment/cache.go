package enrichment

import (
	"context"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/metrics"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// CachedStatsProvider memoizes another StatsProvider per selection, market and line
type CachedStatsProvider struct {
	next      StatsProvider
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCachedStatsProvider wraps next with a TTL cache
func NewCachedStatsProvider(next StatsProvider, ttl time.Duration) *CachedStatsProvider {
	return &CachedStatsProvider{
		next:  next,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func statsCacheKey(leg models.ExtractedLeg) string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(leg.Selection)),
		canonicalMarket(leg.Market),
		leg.Line,
	}, "|")
}

// Stats implements StatsProvider. Errors from the wrapped provider are not cached.
func (c *CachedStatsProvider) Stats(ctx context.Context, leg models.ExtractedLeg) (StatsSignal, error) {
	key := statsCacheKey(leg)
	if v, found := c.cache.Get(key); found {
		if signal, ok := v.(StatsSignal); ok {
			c.record(true)
			return copyStats(signal), nil
		}
	}
	c.record(false)

	signal, err := c.next.Stats(ctx, leg)
	if err != nil {
		return StatsSignal{}, err
	}
	c.cache.Set(key, copyStats(signal), c.ttl)
	return signal, nil
}

func (c *CachedStatsProvider) record(hit bool) {
	c.mu.Lock()
	if hit {
		c.hitCount++
	} else {
		c.missCount++
	}
	ratio := float64(c.hitCount) / float64(c.hitCount+c.missCount)
	c.mu.Unlock()
	metrics.UpdateStatsCacheHitRatio(ratio)
}

// CacheStats returns cache statistics
func (c *CachedStatsProvider) CacheStats() (hits, misses uint64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hits = c.hitCount
	misses = c.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// Clear flushes the cache and resets counters
func (c *CachedStatsProvider) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.hitCount = 0
	c.missCount = 0
}

// ItemCount returns the number of cached entries
func (c *CachedStatsProvider) ItemCount() int {
	return c.cache.ItemCount()
}

func copyStats(s StatsSignal) StatsSignal {
	out := s
	if s.Season != nil {
		v := *s.Season
		out.Season = &v
	}
	if s.VsOpponent != nil {
		v := *s.VsOpponent
		out.VsOpponent = &v
	}
	out.Notes = append([]string(nil), s.Notes...)
	return out
}
