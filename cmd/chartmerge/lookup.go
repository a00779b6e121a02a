package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/chartmerge/internal/exitcode"
	"github.com/gyeh/chartmerge/internal/logging"
	"github.com/gyeh/chartmerge/internal/model"
	"github.com/gyeh/chartmerge/internal/terminology"
)

var lookupSystem string

var lookupCmd = &cobra.Command{
	Use:   "lookup <code>",
	Short: "Resolve a single code through the terminology tiers",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	f := lookupCmd.Flags()
	f.StringVar(&lookupSystem, "system", "", "Code system name (LOINC, RXNORM, ICD10, SNOMED, CPT, NDC) or system URI")
	f.BoolVar(&cfg.EnableLookup, "enable-lookup", false, "Call external terminology services for codes the local tables miss")
	_ = lookupCmd.MarkFlagRequired("system")
	rootCmd.AddCommand(lookupCmd)
}

// classifySystemArg accepts both the short enum names and FHIR system URIs.
func classifySystemArg(s string) model.CodeSystem {
	for _, cs := range model.AllCodeSystems {
		if string(cs) == s {
			return cs
		}
	}
	return terminology.Classify(s)
}

func runLookup(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.Verbose)
	ctx := context.Background()

	loadConfigFile(log)

	terms, cleanup, err := buildService(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("cache backend unavailable")
		os.Exit(exitcode.CacheConnError)
	}
	defer cleanup()

	code := args[0]
	system := classifySystemArg(lookupSystem)
	if system == model.CodeSystemUnknown {
		log.Error().Str("system", lookupSystem).Msg("unrecognized code system")
		os.Exit(exitcode.UsageError)
	}

	info := terms.LookupSystem(ctx, code, system)
	if info == nil {
		fmt.Printf("%s %s: not found\n", system, code)
		os.Exit(exitcode.LookupMiss)
	}

	fmt.Printf("%s %s: %s\n", system, code, info.Name)
	if info.Category != "" {
		fmt.Printf("Category: %s\n", info.Category)
	}
	if system == model.CodeSystemRxNorm {
		if class := terms.GetDrugClass(ctx, code); class != "" {
			fmt.Printf("Drug class: %s\n", class)
		}
	}
	return nil
}
