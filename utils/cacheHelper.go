package utils

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paynetra/reports_backend/config"
)

// Cache lifespans per report family. Summary tiles are "live" counters;
// the rollup-backed analytics can live much longer.
const (
	CacheTTLHistory   = 5 * time.Minute
	CacheTTLSummary   = 1 * time.Minute
	CacheTTLAnalytics = 30 * time.Minute
)

func CacheEnabled() bool {
	return os.Getenv("REPORT_CACHE_DISABLED") != "1"
}

// CacheTTLOverride returns the configured lifespan for a report family,
// falling back to def. REPORT_CACHE_TTL_<FAMILY> is in seconds.
func CacheTTLOverride(family string, def time.Duration) time.Duration {
	raw := os.Getenv("REPORT_CACHE_TTL_" + strings.ToUpper(family))
	if raw == "" {
		return def
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

// CacheKey builds "<prefix>:<md5 of sorted params>". Sorting the keys makes
// the digest independent of map iteration order, so two requests with the
// same parameters in a different order share one cache entry.
func CacheKey(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('&')
	}
	sum := md5.Sum([]byte(b.String()))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Redis errors are treated as misses so a flaky cache never breaks
// a report.
func GetOrCompute[T any](ctx context.Context, key string, ttl time.Duration, compute func() (T, error)) (T, bool, error) {
	var cached T
	if CacheEnabled() {
		exists, err := config.GetRedisObject(key, &cached)
		if err != nil {
			config.LogError(config.GetLogger(), "utils", "GetOrCompute", "redis get", key, err)
		} else if exists {
			return cached, true, nil
		}
	}

	result, err := compute()
	if err != nil {
		return result, false, err
	}

	if CacheEnabled() {
		if err := config.SetRedisObject(key, &result, ttl); err != nil {
			config.LogError(config.GetLogger(), "utils", "GetOrCompute", "redis set", key, err)
		}
	}
	return result, false, nil
}

// InvalidateCachePrefix drops every cached entry under prefix.
func InvalidateCachePrefix(ctx context.Context, prefix string) (int, error) {
	return config.RemoveRedisKeysByPrefix(ctx, prefix+":")
}
