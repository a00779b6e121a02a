package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/chartmerge/internal/config"
	"github.com/gyeh/chartmerge/internal/exitcode"
	"github.com/gyeh/chartmerge/internal/logging"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the terminology cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached terminology entry",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Verbose)
	ctx := context.Background()

	loadConfigFile(log)
	terms, cleanup, err := buildService(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("cache backend unavailable")
		os.Exit(exitcode.CacheConnError)
	}
	defer cleanup()

	backend := cfg.CacheBackend
	if backend == "" {
		backend = config.BackendMemory
	}

	stats := terms.CacheStats(ctx)
	fmt.Printf("Backend: %s\n", backend)
	fmt.Printf("Entries: %d\n", stats.Entries)
	fmt.Printf("Hits:    %d\n", stats.Hits)
	fmt.Printf("Misses:  %d\n", stats.Misses)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Verbose)
	ctx := context.Background()

	loadConfigFile(log)
	terms, cleanup, err := buildService(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("cache backend unavailable")
		os.Exit(exitcode.CacheConnError)
	}
	defer cleanup()

	if err := terms.ClearCache(ctx); err != nil {
		log.Error().Err(err).Msg("cache clear failed")
		os.Exit(exitcode.CacheConnError)
	}
	log.Info().Msg("terminology cache cleared")
	return nil
}
