package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/chartmerge/internal/pipeline"
)

// Cache backend names accepted by --cache-backend and the config file.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all runtime configuration for a chartmerge run.
type Config struct {
	DataDir      string // root of the per-connection FHIR export tree
	LogFormat    string // "text" or "json"
	Verbose      bool   // debug-level logging
	EnableLookup bool   // allow external terminology lookups on local misses
	IncludeRaw   bool   // keep original source records on canonical output

	CacheBackend string // memory, redis, or postgres
	RedisAddr    string
	DSN          string
	CacheTTL     time.Duration

	RxNormBaseURL string
	LOINCBaseURL  string
	RefDataPath   string // optional parquet file of extra reference codes

	Connections []pipeline.Connection
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Connections []pipeline.Connection `yaml:"connections"`
	Cache       struct {
		Backend   string `yaml:"backend"`
		RedisAddr string `yaml:"redis_addr"`
		DSN       string `yaml:"dsn"`
		TTL       string `yaml:"ttl"` // time.ParseDuration format, e.g. "24h"
	} `yaml:"cache"`
	Terminology struct {
		RxNormBaseURL string `yaml:"rxnorm_base_url"`
		LOINCBaseURL  string `yaml:"loinc_base_url"`
		RefDataPath   string `yaml:"refdata_path"`
	} `yaml:"terminology"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Values already set from flags win over file values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if len(c.Connections) == 0 {
		c.Connections = yc.Connections
	}
	if c.CacheBackend == "" {
		c.CacheBackend = yc.Cache.Backend
	}
	if c.RedisAddr == "" {
		c.RedisAddr = yc.Cache.RedisAddr
	}
	if c.DSN == "" {
		c.DSN = yc.Cache.DSN
	}
	if c.CacheTTL == 0 && yc.Cache.TTL != "" {
		ttl, err := time.ParseDuration(yc.Cache.TTL)
		if err != nil {
			return fmt.Errorf("parse cache ttl: %w", err)
		}
		c.CacheTTL = ttl
	}
	if c.RxNormBaseURL == "" {
		c.RxNormBaseURL = yc.Terminology.RxNormBaseURL
	}
	if c.LOINCBaseURL == "" {
		c.LOINCBaseURL = yc.Terminology.LOINCBaseURL
	}
	if c.RefDataPath == "" {
		c.RefDataPath = yc.Terminology.RefDataPath
	}
	return nil
}

// Validate checks required fields and returns an error if the config is
// invalid for a merge run.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("--data-dir is required")
	}
	if _, err := os.Stat(c.DataDir); err != nil {
		return fmt.Errorf("data dir not accessible: %w", err)
	}
	if len(c.Connections) == 0 {
		return fmt.Errorf("at least one connection is required (set connections in the config file)")
	}
	seen := make(map[string]bool, len(c.Connections))
	for i, conn := range c.Connections {
		if conn.ConnectionID == "" {
			return fmt.Errorf("connection %d: connection_id is required", i)
		}
		if conn.Provider == "" {
			return fmt.Errorf("connection %q: provider is required", conn.ConnectionID)
		}
		if seen[conn.ConnectionID] {
			return fmt.Errorf("duplicate connection_id %q", conn.ConnectionID)
		}
		seen[conn.ConnectionID] = true
	}
	return c.validateCache()
}

// validateCache checks the cache backend selection and its settings.
func (c *Config) validateCache() error {
	switch c.CacheBackend {
	case "", BackendMemory:
		c.CacheBackend = BackendMemory
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("cache backend %q requires --redis-addr", BackendRedis)
		}
	case BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("cache backend %q requires --dsn or DATABASE_URL", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}
