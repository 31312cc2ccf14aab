package utils

import (
	"strings"
	"testing"
	"time"
)

func TestCacheKey_StableUnderMapOrder(t *testing.T) {
	a := map[string]string{"date_from": "2026-03-01", "status": "SUCCESS", "page": "2"}
	b := map[string]string{"page": "2", "status": "SUCCESS", "date_from": "2026-03-01"}

	k1 := CacheKey("report:history", a)
	// Build the key several times; map iteration order must not leak in.
	for i := 0; i < 20; i++ {
		if k := CacheKey("report:history", b); k != k1 {
			t.Fatalf("key unstable: %q vs %q", k1, k)
		}
	}
}

func TestCacheKey_DistinctParamsDistinctKeys(t *testing.T) {
	base := map[string]string{"status": "SUCCESS"}
	other := map[string]string{"status": "FAILED"}

	if CacheKey("report:history", base) == CacheKey("report:history", other) {
		t.Fatalf("different params must not collide")
	}
	if CacheKey("report:history", base) == CacheKey("report:summary", base) {
		t.Fatalf("different prefixes must not collide")
	}
}

func TestCacheKey_PrefixSurvives(t *testing.T) {
	key := CacheKey("report:summary", map[string]string{"a": "1"})
	if !strings.HasPrefix(key, "report:summary:") {
		t.Fatalf("expected prefix in key; got %q", key)
	}
}

func TestCacheTTLOverride(t *testing.T) {
	t.Setenv("REPORT_CACHE_TTL_HISTORY", "90")
	if got := CacheTTLOverride("history", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s; got %s", got)
	}

	t.Setenv("REPORT_CACHE_TTL_HISTORY", "not-a-number")
	if got := CacheTTLOverride("history", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback to default; got %s", got)
	}
}
