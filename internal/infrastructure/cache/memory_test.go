package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nutrikatori/backend/internal/domain"
)

// fakeClock lets tests move time forward without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache()
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value interface{}
		check func(t *testing.T, got interface{})
	}{
		{
			name:  "string round trips unchanged",
			key:   "aliases:salt",
			value: "namak",
			check: func(t *testing.T, got interface{}) {
				if got != "namak" {
					t.Errorf("Get() = %v, want namak", got)
				}
			},
		},
		{
			name:  "string slice comes back in JSON shape",
			key:   "aliases:jeera",
			value: []string{"cumin", "cumin seeds"},
			check: func(t *testing.T, got interface{}) {
				list, ok := got.([]interface{})
				if !ok {
					t.Fatalf("Get() type = %T, want []interface{}", got)
				}
				if len(list) != 2 || list[0] != "cumin" || list[1] != "cumin seeds" {
					t.Errorf("Get() = %v, want [cumin cumin seeds]", list)
				}
			},
		},
		{
			name:  "numbers decode as float64",
			key:   "grams",
			value: 150,
			check: func(t *testing.T, got interface{}) {
				if got != 150.0 {
					t.Errorf("Get() = %v (%T), want float64 150", got, got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCache()
			if err := c.Set(ctx, tt.key, tt.value, time.Minute); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := c.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	c, _ := newTestCache()

	_, err := c.Get(context.Background(), "non-existent-key")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()

	if err := c.Set(ctx, "aliases:aloo", []string{"potato"}, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	clock.Advance(59 * time.Minute)
	if _, err := c.Get(ctx, "aliases:aloo"); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	clock.Advance(2 * time.Minute)
	if exists, _ := c.Exists(ctx, "aliases:aloo"); exists {
		t.Error("Exists() = true, want false after expiry")
	}
	if _, err := c.Get(ctx, "aliases:aloo"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want %v", err, domain.ErrCacheMiss)
	}

	// Reading an expired entry drops it
	if size := c.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after expired read", size)
	}
}

func TestMemoryCache_NonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if exists, _ := c.Exists(ctx, "k"); exists {
		t.Error("Exists() = true, want false for zero TTL")
	}
}

func TestMemoryCache_UnencodableValue(t *testing.T) {
	c, _ := newTestCache()

	if err := c.Set(context.Background(), "k", make(chan int), time.Minute); err == nil {
		t.Error("Set() error = nil, want JSON encoding error")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()

	if err := c.Set(ctx, "delete-test", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "delete-test"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "delete-test"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Purge(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()

	for i, ttl := range []time.Duration{time.Minute, time.Minute, time.Hour} {
		key := string(rune('a' + i))
		if err := c.Set(ctx, key, i, ttl); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	clock.Advance(10 * time.Minute)

	if removed := c.Purge(); removed != 2 {
		t.Errorf("Purge() = %d, want 2", removed)
	}
	if size := c.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1 after purge", size)
	}
	if exists, _ := c.Exists(ctx, "c"); !exists {
		t.Error("Exists(c) = false, want true")
	}
}

func TestMemoryCache_SetSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()

	for i := 0; i < sweepEvery/2; i++ {
		if err := c.Set(ctx, fmt.Sprintf("aliases:stale-%d", i), []string{"x"}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	clock.Advance(time.Hour)

	// Never read the stale keys again; writes alone must reclaim them.
	for i := sweepEvery / 2; i < sweepEvery; i++ {
		if err := c.Set(ctx, fmt.Sprintf("aliases:fresh-%d", i), []string{"y"}, time.Hour); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := c.Size(); size != sweepEvery/2 {
		t.Errorf("Size() = %d, want %d after sweep", size, sweepEvery/2)
	}
	if exists, _ := c.Exists(ctx, fmt.Sprintf("aliases:fresh-%d", sweepEvery-1)); !exists {
		t.Error("fresh entry written during the sweep is missing")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := string(rune('a' + id))
			if err := c.Set(ctx, key, id, time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := c.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if size := c.Size(); size != 10 {
		t.Errorf("Size() = %d, want 10", size)
	}
}
