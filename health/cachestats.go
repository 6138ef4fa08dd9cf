package health

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JayeshSL77/Quant-God-sub001/cache"
)

// CacheCheckerConfig configures the cache health checker.
type CacheCheckerConfig struct {
	// OccupancyThreshold is the fill ratio at which a namespace is reported
	// degraded. Value should be between 0 and 1. Default: 0.9 (90%)
	OccupancyThreshold float64

	// MinHitRate flags a namespace whose hit rate falls below it, once
	// enough lookups have been observed. Zero disables the check.
	MinHitRate float64

	// MinLookups is the number of lookups required before MinHitRate
	// applies. Default: 100
	MinLookups uint64
}

// CacheChecker reports cache namespace occupancy and hit rates. A full or
// cold cache is never unhealthy, only degraded: calls still succeed, they
// just stop getting cheaper.
type CacheChecker struct {
	config   CacheCheckerConfig
	registry *cache.Registry
}

// NewCacheChecker creates a checker over the given cache registry.
func NewCacheChecker(registry *cache.Registry, config CacheCheckerConfig) *CacheChecker {
	if config.OccupancyThreshold <= 0 || config.OccupancyThreshold > 1 {
		config.OccupancyThreshold = 0.9
	}
	if config.MinLookups == 0 {
		config.MinLookups = 100
	}
	return &CacheChecker{config: config, registry: registry}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return "caches"
}

// Check inspects every cache namespace created so far.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	stats := c.registry.Stats()

	var flagged []string
	details := make(map[string]any, len(stats))
	for category, s := range stats {
		name := string(category)
		occupancy := 0.0
		if s.Capacity > 0 {
			occupancy = float64(s.Size) / float64(s.Capacity)
		}
		details[name] = map[string]any{
			"size":      s.Size,
			"capacity":  s.Capacity,
			"occupancy": occupancy,
			"hits":      s.Hits,
			"misses":    s.Misses,
			"evictions": s.Evictions,
			"hit_rate":  s.HitRate(),
		}

		if occupancy >= c.config.OccupancyThreshold {
			flagged = append(flagged, name+" near capacity")
			continue
		}
		lookups := s.Hits + s.Misses
		if c.config.MinHitRate > 0 && lookups >= c.config.MinLookups && s.HitRate() < c.config.MinHitRate {
			flagged = append(flagged, name+" hit rate low")
		}
	}
	sort.Strings(flagged)

	if len(flagged) > 0 {
		return Degraded(strings.Join(flagged, "; ")).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d cache namespaces nominal", len(stats))).WithDetails(details)
}
