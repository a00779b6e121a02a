package terminology

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/chartmerge/internal/cache"
)

// countingClient is an ExternalClient fake that records call counts.
type countingClient struct {
	mu          sync.Mutex
	rxnormCalls int
	loincCalls  int
	classCalls  int

	rxnormInfo *CodeInfo
	loincInfo  *CodeInfo
	class      string
	err        error
}

func (c *countingClient) LookupRxNorm(_ context.Context, code string) (*CodeInfo, error) {
	c.mu.Lock()
	c.rxnormCalls++
	c.mu.Unlock()
	return c.rxnormInfo, c.err
}

func (c *countingClient) LookupLOINC(_ context.Context, code string) (*CodeInfo, error) {
	c.mu.Lock()
	c.loincCalls++
	c.mu.Unlock()
	return c.loincInfo, c.err
}

func (c *countingClient) DrugClass(_ context.Context, code string) (string, error) {
	c.mu.Lock()
	c.classCalls++
	c.mu.Unlock()
	return c.class, c.err
}

func newTestService(ext ExternalClient) *Service {
	return New(DefaultTables(), cache.NewMemory(), ext, zerolog.Nop())
}

func TestLookup_LocalTableSkipsExternal(t *testing.T) {
	ext := &countingClient{}
	svc := newTestService(ext)

	info := svc.Lookup(context.Background(), "197361", "rxnorm")
	if info == nil || info.Name != "Amlodipine 5 MG Oral Tablet" {
		t.Fatalf("expected local table hit, got %+v", info)
	}
	if ext.rxnormCalls != 0 {
		t.Errorf("local table hit must not invoke the external service, got %d calls", ext.rxnormCalls)
	}
}

func TestLookup_ExternalHitIsCached(t *testing.T) {
	ext := &countingClient{rxnormInfo: &CodeInfo{Name: "Examplinumab 100 MG", Category: "Monoclonal Antibody"}}
	svc := newTestService(ext)
	ctx := context.Background()

	first := svc.Lookup(ctx, "2599904", "rxnorm")
	if first == nil || first.Name != "Examplinumab 100 MG" {
		t.Fatalf("expected external result, got %+v", first)
	}

	second := svc.Lookup(ctx, "2599904", "rxnorm")
	if second == nil || second.Name != first.Name {
		t.Fatalf("expected cached result, got %+v", second)
	}
	if ext.rxnormCalls != 1 {
		t.Errorf("second lookup within TTL should hit the cache, got %d external calls", ext.rxnormCalls)
	}
}

func TestLookup_FailureNotCached(t *testing.T) {
	ext := &countingClient{err: errors.New("status 500")}
	svc := newTestService(ext)
	ctx := context.Background()

	if info := svc.Lookup(ctx, "999999999", "loinc"); info != nil {
		t.Fatalf("expected nil on external failure, got %+v", info)
	}
	if info := svc.Lookup(ctx, "999999999", "loinc"); info != nil {
		t.Fatalf("expected nil on second failure, got %+v", info)
	}
	if ext.loincCalls != 2 {
		t.Errorf("failed lookups must not be cached; expected 2 external calls, got %d", ext.loincCalls)
	}
}

func TestLookup_EmptyResultNotCached(t *testing.T) {
	ext := &countingClient{} // answers with no entry
	svc := newTestService(ext)
	ctx := context.Background()

	svc.Lookup(ctx, "77777-0", "loinc")
	svc.Lookup(ctx, "77777-0", "loinc")
	if ext.loincCalls != 2 {
		t.Errorf("empty results must not be cached; expected 2 external calls, got %d", ext.loincCalls)
	}
}

func TestLookup_ExpiredCacheEntryRetries(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := cache.NewMemoryWithClock(func() time.Time { return now })
	ext := &countingClient{loincInfo: &CodeInfo{Name: "Rare observation"}}
	svc := New(DefaultTables(), store, ext, zerolog.Nop())
	ctx := context.Background()

	svc.Lookup(ctx, "55555-5", "loinc")
	now = now.Add(DefaultTTL + time.Minute)
	svc.Lookup(ctx, "55555-5", "loinc")

	if ext.loincCalls != 2 {
		t.Errorf("expired entry should trigger a fresh external call, got %d", ext.loincCalls)
	}
}

func TestLookup_UnknownSystemAndEmptyCode(t *testing.T) {
	svc := newTestService(&countingClient{})
	ctx := context.Background()

	if info := svc.Lookup(ctx, "X", "http://example.org/homegrown"); info != nil {
		t.Errorf("unknown system should resolve to nil, got %+v", info)
	}
	if info := svc.Lookup(ctx, "", "loinc"); info != nil {
		t.Errorf("empty code should resolve to nil, got %+v", info)
	}
}

func TestLookup_NoExternalForICD10(t *testing.T) {
	ext := &countingClient{}
	svc := newTestService(ext)

	if info := svc.Lookup(context.Background(), "Z99.99", "icd-10"); info != nil {
		t.Errorf("unlisted ICD-10 code should be nil, got %+v", info)
	}
	if ext.rxnormCalls+ext.loincCalls != 0 {
		t.Error("no external service should be consulted for ICD-10")
	}
}

// slowClient blocks each call until released, so concurrent misses overlap.
type slowClient struct {
	countingClient
	release chan struct{}
	calls   atomic.Int64
}

func (s *slowClient) LookupRxNorm(_ context.Context, code string) (*CodeInfo, error) {
	s.calls.Add(1)
	<-s.release
	return &CodeInfo{Name: "Slow drug"}, nil
}

func TestLookup_SingleFlight(t *testing.T) {
	ext := &slowClient{release: make(chan struct{})}
	svc := newTestService(ext)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*CodeInfo, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Lookup(ctx, "3131313", "rxnorm")
		}(i)
	}

	// Let the callers pile up on the in-flight lookup, then release it.
	time.Sleep(50 * time.Millisecond)
	close(ext.release)
	wg.Wait()

	if n := ext.calls.Load(); n != 1 {
		t.Errorf("expected one shared external call for concurrent misses, got %d", n)
	}
	for i, r := range results {
		if r == nil || r.Name != "Slow drug" {
			t.Errorf("caller %d got %+v", i, r)
		}
	}
}

func TestGetDrugClass(t *testing.T) {
	ext := &countingClient{class: "Experimental Class"}
	svc := newTestService(ext)
	ctx := context.Background()

	if class := svc.GetDrugClass(ctx, "197361"); class != "Calcium Channel Blocker" {
		t.Errorf("bundled drug class: got %q", class)
	}
	if ext.classCalls != 0 {
		t.Error("bundled class hit must not invoke the external service")
	}

	if class := svc.GetDrugClass(ctx, "424242"); class != "Experimental Class" {
		t.Errorf("external drug class: got %q", class)
	}
	if class := svc.GetDrugClass(ctx, "424242"); class != "Experimental Class" {
		t.Errorf("cached drug class: got %q", class)
	}
	if ext.classCalls != 1 {
		t.Errorf("second class lookup within TTL should hit the cache, got %d external calls", ext.classCalls)
	}
}

func TestGetDrugClass_EmptyResultNotCached(t *testing.T) {
	ext := &countingClient{} // answers with no class
	svc := newTestService(ext)
	ctx := context.Background()

	svc.GetDrugClass(ctx, "424242")
	svc.GetDrugClass(ctx, "424242")
	if ext.classCalls != 2 {
		t.Errorf("empty classes must not be cached; expected 2 external calls, got %d", ext.classCalls)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	ext := &countingClient{rxnormInfo: &CodeInfo{Name: "Examplinumab"}}
	svc := newTestService(ext)
	ctx := context.Background()

	svc.Lookup(ctx, "2599904", "rxnorm") // miss, then cached
	svc.Lookup(ctx, "2599904", "rxnorm") // cache hit

	stats := svc.CacheStats(ctx)
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if err := svc.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	stats = svc.CacheStats(ctx)
	if stats.Hits != 0 || stats.Misses != 0 || stats.Entries != 0 {
		t.Errorf("stats should reset after clear: %+v", stats)
	}
}
