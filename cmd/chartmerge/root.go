package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/chartmerge/internal/config"
	"github.com/gyeh/chartmerge/internal/exitcode"
)

var (
	cfg        config.Config
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "chartmerge",
	Short: "Multi-source clinical record aggregator",
	Long:  "Normalizes FHIR exports from a patient's source connections into one canonical, code-enriched, deduplicated record set.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to YAML config file")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug-level logging")
	pf.StringVar(&cfg.CacheBackend, "cache-backend", "", "Terminology cache backend: memory, redis, or postgres")
	pf.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address for the redis cache backend")
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string for the postgres cache backend (or set DATABASE_URL)")
	pf.DurationVar(&cfg.CacheTTL, "cache-ttl", 0, "Terminology cache entry lifetime (default 24h)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
