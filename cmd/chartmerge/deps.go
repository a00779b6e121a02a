package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/gyeh/chartmerge/internal/cache"
	"github.com/gyeh/chartmerge/internal/config"
	"github.com/gyeh/chartmerge/internal/exitcode"
	"github.com/gyeh/chartmerge/internal/refdata"
	"github.com/gyeh/chartmerge/internal/terminology"
)

// Public terminology service endpoints used unless the config overrides them.
const (
	defaultRxNormBase = "https://rxnav.nlm.nih.gov/REST"
	defaultLOINCBase  = "https://fhir.loinc.org"
)

// loadConfigFile merges the --config file into cfg, if one was given.
func loadConfigFile(log zerolog.Logger) {
	if configFile == "" {
		return
	}
	if err := cfg.LoadFromFile(configFile); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
}

// buildStore opens the configured terminology cache backend. The returned
// func releases the backend's connections.
func buildStore(ctx context.Context) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		r, err := cache.NewRedis(ctx, cfg.RedisAddr, "", 0)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return r, func() { _ = r.Close() }, nil
	case config.BackendPostgres:
		p, err := cache.NewPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return p, p.Close, nil
	default:
		return cache.NewMemory(), func() {}, nil
	}
}

// buildService assembles the terminology service: bundled tables, optional
// parquet reference data merged on top, the configured cache backend, and
// the external HTTP tier when lookups are enabled.
func buildService(ctx context.Context, log zerolog.Logger) (*terminology.Service, func(), error) {
	store, closeStore, err := buildStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	tables := terminology.DefaultTables()
	if cfg.RefDataPath != "" {
		rows, err := refdata.Load(cfg.RefDataPath)
		if err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("load reference data: %w", err)
		}
		tables.Merge(rows)
		log.Info().Int("rows", len(rows)).Str("file", cfg.RefDataPath).Msg("merged reference data")
	}

	var ext terminology.ExternalClient
	if cfg.EnableLookup {
		rxBase := cfg.RxNormBaseURL
		if rxBase == "" {
			rxBase = defaultRxNormBase
		}
		loincBase := cfg.LOINCBaseURL
		if loincBase == "" {
			loincBase = defaultLOINCBase
		}
		ext = terminology.NewHTTPClient(rxBase, loincBase, log)
	}

	var opts []terminology.Option
	if cfg.CacheTTL > 0 {
		opts = append(opts, terminology.WithTTL(cfg.CacheTTL))
	}
	return terminology.New(tables, store, ext, log, opts...), closeStore, nil
}
