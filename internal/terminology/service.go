package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gyeh/chartmerge/internal/cache"
	"github.com/gyeh/chartmerge/internal/model"
)

// DefaultTTL is how long a resolved code stays valid in the cache tier.
const DefaultTTL = 24 * time.Hour

// Service resolves codes through three tiers, cheapest first: the bundled
// reference tables, the shared TTL cache, and the external terminology
// services. Every failure mode degrades to a nil result; nothing here
// returns an error to callers.
type Service struct {
	tables *Tables
	store  cache.Store
	ext    ExternalClient // nil disables the external tier
	ttl    time.Duration
	log    zerolog.Logger

	// Concurrent misses for the same (system, code) share one external call.
	flight singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// New builds a Service. ext may be nil, which restricts lookups to the
// local and cache tiers.
func New(tables *Tables, store cache.Store, ext ExternalClient, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		tables: tables,
		store:  store,
		ext:    ext,
		ttl:    DefaultTTL,
		log:    log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tables exposes the bundled reference data for the pure, local-only paths
// the normalizers take when enrichment is disabled.
func (s *Service) Tables() *Tables {
	return s.tables
}

// Lookup resolves a code given a raw system string (URI or free text).
func (s *Service) Lookup(ctx context.Context, code, system string) *CodeInfo {
	return s.LookupSystem(ctx, code, Classify(system))
}

// LookupSystem resolves a code against a classified system. Returns nil for
// unknown systems, empty codes, and every failure mode.
func (s *Service) LookupSystem(ctx context.Context, code string, system model.CodeSystem) *CodeInfo {
	if code == "" || system == model.CodeSystemUnknown {
		return nil
	}

	// Tier 1: bundled tables, including the NDC and SNOMED crosswalks.
	if info := s.tables.Lookup(code, system); info != nil {
		return info
	}

	// Crosswalk before the remote tiers so NDC and SNOMED misses retry as
	// the terminology the external services actually speak.
	switch system {
	case model.CodeSystemNDC:
		rx := s.tables.RxNormFromNDC(code)
		if rx == "" {
			return nil
		}
		return s.LookupSystem(ctx, rx, model.CodeSystemRxNorm)
	case model.CodeSystemSNOMED, model.CodeSystemICD10, model.CodeSystemCPT:
		// No external service for these; the bundled table was the last word.
		return nil
	}

	key := cacheKey(code, system)

	// Tier 2: shared cache.
	if raw, ok, err := s.store.Get(ctx, key); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
	} else if ok {
		var info CodeInfo
		if err := json.Unmarshal(raw, &info); err == nil {
			s.hits.Add(1)
			return &info
		}
		s.log.Debug().Str("key", key).Msg("corrupt cache entry, treating as miss")
	}
	s.misses.Add(1)

	// Tier 3: external service, single-flighted per key.
	if s.ext == nil {
		return nil
	}
	v, err, _ := s.flight.Do(key, func() (any, error) {
		return s.external(ctx, code, system)
	})
	if err != nil || v == nil {
		return nil
	}
	info := v.(*CodeInfo)
	if info == nil {
		return nil
	}

	// A nil result is deliberately not cached so transient outages are
	// retried on the next request.
	if raw, err := json.Marshal(info); err == nil {
		if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
			s.log.Debug().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return info
}

func (s *Service) external(ctx context.Context, code string, system model.CodeSystem) (*CodeInfo, error) {
	var (
		info *CodeInfo
		err  error
	)
	switch system {
	case model.CodeSystemRxNorm:
		info, err = s.ext.LookupRxNorm(ctx, code)
	case model.CodeSystemLOINC:
		info, err = s.ext.LookupLOINC(ctx, code)
	default:
		return nil, nil
	}
	if err != nil {
		s.log.Debug().Err(err).
			Str("code", code).
			Str("system", system.String()).
			Msg("external terminology lookup failed")
		return nil, nil
	}
	return info, nil
}

// GetDrugClass resolves the therapeutic class for an RxNorm code through
// the same tiers as LookupSystem: bundled table, shared cache, then the
// external RxClass service. Returns "" on any miss.
func (s *Service) GetDrugClass(ctx context.Context, code string) string {
	if class := s.tables.DrugClass(code); class != "" {
		return class
	}

	key := "class:" + code
	if raw, ok, err := s.store.Get(ctx, key); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
	} else if ok {
		s.hits.Add(1)
		return string(raw)
	}
	s.misses.Add(1)

	if s.ext == nil {
		return ""
	}
	v, err, _ := s.flight.Do(key, func() (any, error) {
		class, err := s.ext.DrugClass(ctx, code)
		if err != nil {
			s.log.Debug().Err(err).Str("code", code).Msg("drug class lookup failed")
			return "", nil
		}
		return class, nil
	})
	if err != nil {
		return ""
	}
	class := v.(string)

	// An empty class is not cached so transient outages retry next time.
	if class != "" {
		if err := s.store.Set(ctx, key, []byte(class), s.ttl); err != nil {
			s.log.Debug().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return class
}

// Stats is a snapshot of cache-tier behavior since process start. Bundled
// table resolutions never reach the cache and count as neither hit nor
// miss; the counters measure only the shared TTL store.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int64 `json:"entries"`
}

// CacheStats reports cache hit/miss counters and the live entry count.
func (s *Service) CacheStats(ctx context.Context) Stats {
	n, err := s.store.Len(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("cache len failed")
	}
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: n,
	}
}

// ClearCache empties the cache tier and resets the counters.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.store.Purge(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	s.hits.Store(0)
	s.misses.Store(0)
	return nil
}

func cacheKey(code string, system model.CodeSystem) string {
	return fmt.Sprintf("%s:%s", system, code)
}
