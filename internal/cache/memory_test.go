package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, ok, _ := m.Get(ctx, "rxnorm:197361"); ok {
		t.Fatal("expected miss on empty store")
	}

	if err := m.Set(ctx, "rxnorm:197361", []byte("amlodipine"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := m.Get(ctx, "rxnorm:197361")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(v) != "amlodipine" {
		t.Errorf("value changed in cache: %q", v)
	}
}

func TestMemory_TTLBoundary(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), 24*time.Hour)

	// One nanosecond before expiry: still a hit.
	now = now.Add(24*time.Hour - time.Nanosecond)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Error("expected hit just before TTL")
	}

	// Exactly at TTL: a miss.
	now = now.Add(time.Nanosecond)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("expected miss at TTL boundary")
	}
}

func TestMemory_LenSkipsExpired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	m.Set(ctx, "a", []byte("1"), time.Minute)
	m.Set(ctx, "b", []byte("2"), time.Hour)

	if n, _ := m.Len(ctx); n != 2 {
		t.Errorf("expected 2 live entries, got %d", n)
	}

	now = now.Add(30 * time.Minute)
	if n, _ := m.Len(ctx); n != 1 {
		t.Errorf("expected 1 live entry after expiry, got %d", n)
	}
}

func TestMemory_Purge(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "a", []byte("1"), time.Hour)
	m.Set(ctx, "b", []byte("2"), time.Hour)
	if err := m.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n, _ := m.Len(ctx); n != 0 {
		t.Errorf("expected empty store after purge, got %d entries", n)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Set(ctx, "shared", []byte("v"), time.Hour)
				m.Get(ctx, "shared")
			}
		}()
	}
	wg.Wait()

	v, ok, _ := m.Get(ctx, "shared")
	if !ok || string(v) != "v" {
		t.Errorf("expected consistent value after concurrent writes, got ok=%v v=%q", ok, v)
	}
}
