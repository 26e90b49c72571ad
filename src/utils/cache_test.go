package utils

import (
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	newCache := func() *Cache[string, int] {
		c := NewCache[string, int]()
		c.now = func() time.Time { return now }
		return c
	}

	t.Run("should return the cached value if valid", func(t *testing.T) {
		cache := newCache()
		cache.Set("a", 1, time.Minute)

		value, found := cache.Get("a")
		if !found || value != 1 {
			t.Errorf("expected 1, got %v (found=%v)", value, found)
		}
	})

	t.Run("should miss once the entry is expired", func(t *testing.T) {
		cache := newCache()
		cache.Set("a", 1, time.Minute)
		now = now.Add(2 * time.Minute)
		defer func() { now = now.Add(-2 * time.Minute) }()

		if value, found := cache.Get("a"); found {
			t.Error("expected cache miss, got", value)
		}
	})

	t.Run("should miss after Delete", func(t *testing.T) {
		cache := newCache()
		cache.Set("a", 1, time.Minute)
		cache.Delete("a")

		if _, found := cache.Get("a"); found {
			t.Error("expected cache miss after delete")
		}
	})

	t.Run("Purge drops only expired entries", func(t *testing.T) {
		cache := newCache()
		cache.Set("short", 1, time.Second)
		cache.Set("long", 2, time.Hour)
		now = now.Add(time.Minute)
		defer func() { now = now.Add(-time.Minute) }()

		if removed := cache.Purge(); removed != 1 {
			t.Errorf("expected 1 removed entry, got %d", removed)
		}
		if cache.Len() != 1 {
			t.Errorf("expected 1 remaining entry, got %d", cache.Len())
		}
		if value, found := cache.Get("long"); !found || value != 2 {
			t.Errorf("expected long entry to survive, got %v", value)
		}
	})
}
