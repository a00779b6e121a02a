package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/chartmerge/internal/exitcode"
	"github.com/gyeh/chartmerge/internal/logging"
	"github.com/gyeh/chartmerge/internal/pipeline"
)

var outputPath string

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Normalize and merge all connections into one record set",
	RunE:  runMerge,
}

func init() {
	f := mergeCmd.Flags()
	f.StringVar(&cfg.DataDir, "data-dir", "", "Root of the per-connection FHIR export tree (required)")
	f.BoolVar(&cfg.EnableLookup, "enable-lookup", false, "Call external terminology services for codes the local tables miss")
	f.BoolVar(&cfg.IncludeRaw, "include-raw", false, "Keep original source records on canonical output")
	f.StringVar(&cfg.RefDataPath, "refdata", "", "Parquet file of extra reference codes to merge over the bundled tables")
	f.StringVar(&outputPath, "output", "", "Write the merged record set to this file instead of stdout")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Verbose)
	ctx := context.Background()

	loadConfigFile(log)
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	terms, cleanup, err := buildService(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("cache backend unavailable")
		os.Exit(exitcode.CacheConnError)
	}
	defer cleanup()

	client := pipeline.NewDirClient(cfg.DataDir)
	set, err := pipeline.Run(ctx, client, terms, log, cfg.Connections, pipeline.Options{
		EnableLookup: cfg.EnableLookup,
		IncludeRaw:   cfg.IncludeRaw,
	})
	if err != nil {
		var perr *pipeline.PipelineError
		if errors.As(err, &perr) {
			log.Error().Err(perr.Err).Str("phase", perr.Phase).Msg("merge failed")
			if perr.Phase == "fetch" {
				os.Exit(exitcode.FetchError)
			}
			os.Exit(exitcode.MergeError)
		}
		log.Error().Err(err).Msg("merge failed")
		os.Exit(exitcode.MergeError)
	}

	if err := writeRecordSet(set); err != nil {
		log.Error().Err(err).Msg("failed to write record set")
		os.Exit(exitcode.MergeError)
	}

	s := set.Summary
	fmt.Fprintf(os.Stderr, "Merge complete: %d raw records from %d connections → %d medications, %d conditions, %d labs, %d encounters (%.1fs)\n",
		s.RawRecords, s.Connections,
		s.MergedMedications, s.MergedConditions, s.MergedLabs, s.MergedEncounters,
		s.Duration.Seconds())
	return nil
}

func writeRecordSet(set *pipeline.PatientRecordSet) error {
	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}
