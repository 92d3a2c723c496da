package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	cache := NewMemoryCache(&Options{
		DefaultTTL: 1 * time.Minute,
		MaxEntries: 100,
	})
	defer cache.Close()

	ctx := context.Background()
	key := "test-key"
	value := []byte("test-value")

	err := cache.Set(ctx, key, value, 0)
	if err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}

	if string(got) != string(value) {
		t.Errorf("expected %s, got %s", value, got)
	}
}

func TestMemoryCache_GetNotFound(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	_, err := cache.Get(ctx, "nonexistent")
	if err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	key := "test-key"

	cache.Set(ctx, key, []byte("value"), 0)

	err := cache.Delete(ctx, key)
	if err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	_, err = cache.Get(ctx, key)
	if err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	cache := NewMemoryCache(&Options{
		DefaultTTL:      100 * time.Millisecond,
		CleanupInterval: 50 * time.Millisecond,
	})
	defer cache.Close()

	ctx := context.Background()
	key := "test-key"

	cache.Set(ctx, key, []byte("value"), 100*time.Millisecond)

	_, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("expected key to exist: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	_, err = cache.Get(ctx, key)
	if err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound after TTL, got %v", err)
	}
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()

	cache.Set(ctx, "prefix:key1", []byte("value1"), 0)
	cache.Set(ctx, "prefix:key2", []byte("value2"), 0)
	cache.Set(ctx, "other:key3", []byte("value3"), 0)

	count, err := cache.DeleteByPattern(ctx, "prefix:*")
	if err != nil {
		t.Fatalf("failed to delete by pattern: %v", err)
	}

	if count != 2 {
		t.Errorf("expected 2 deleted, got %d", count)
	}

	if _, err := cache.Get(ctx, "other:key3"); err != nil {
		t.Error("other:key3 should still exist")
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	cache := NewMemoryCache(&Options{
		MaxEntries: 3,
		DefaultTTL: time.Minute,
	})
	defer cache.Close()

	ctx := context.Background()

	cache.Set(ctx, "key1", []byte("value1"), 0)
	time.Sleep(10 * time.Millisecond)
	cache.Set(ctx, "key2", []byte("value2"), 0)
	time.Sleep(10 * time.Millisecond)
	cache.Set(ctx, "key3", []byte("value3"), 0)

	// Access key1 to make it recently used
	cache.Get(ctx, "key1")

	// Add new key, should evict key2 (least recently used)
	cache.Set(ctx, "key4", []byte("value4"), 0)

	_, err := cache.Get(ctx, "key2")
	if err != ErrKeyNotFound {
		t.Error("expected key2 to be evicted")
	}

	_, err = cache.Get(ctx, "key1")
	if err != nil {
		t.Error("expected key1 to still exist")
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache(nil)

	ctx := context.Background()
	cache.Set(ctx, "key", []byte("value"), 0)

	err := cache.Close()
	if err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	_, err = cache.Get(ctx, "key")
	if err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}

	// Double close should be safe
	err = cache.Close()
	if err != nil {
		t.Errorf("double close should not error: %v", err)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		key     string
		want    bool
	}{
		{"* anything", "*", "anything", true},
		{"prefix:* prefix:key", "prefix:*", "prefix:key", true},
		{"prefix:* other:key", "prefix:*", "other:key", false},
		{"*:suffix prefix:suffix", "*:suffix", "prefix:suffix", true},
		{"*:suffix prefix:other", "*:suffix", "prefix:other", false},
		{"exact exact", "exact", "exact", true},
		{"exact other", "exact", "other", false},
		{"middle wildcard match", "assignment:*:order1", "assignment:abc:order1", true},
		{"middle wildcard no match prefix", "assignment:*:order1", "other:abc:order1", false},
		{"middle wildcard no match suffix", "assignment:*:order1", "assignment:abc:order2", false},
		{"middle wildcard empty middle", "assignment:*:order1", "assignment::order1", true},
		{"key too short", "prefix*suffix", "presuf", false},
		{"exact length match", "a*b", "ab", true},
		{"exact length match content", "a*b", "axb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchPattern(tt.pattern, tt.key); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}
