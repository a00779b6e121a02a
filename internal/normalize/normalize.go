// Package normalize converts source-specific FHIR records into the
// canonical schema. Without enrichment enabled every function here is pure,
// synchronous, and total: malformed or missing source data degrades to
// documented fallback values, never to an error.
package normalize

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gyeh/chartmerge/internal/fhir"
	"github.com/gyeh/chartmerge/internal/model"
	"github.com/gyeh/chartmerge/internal/terminology"
)

// lookupConcurrency bounds the enrichment fan-out within one batch.
const lookupConcurrency = 8

// Options controls normalization behavior for one call.
type Options struct {
	// Terms supplies the local reference tables for display-name fallback
	// and, when EnableLookup is set, the cache/external enrichment tiers.
	Terms *terminology.Service
	// EnableLookup turns on best-effort enrichment for codes the local
	// tables cannot resolve. It is the only thing that makes a normalizer
	// perform I/O.
	EnableLookup bool
	// IncludeRaw keeps the original source record on each canonical record.
	IncludeRaw bool

	// Provenance stamped onto every record produced by the call.
	ConnectionID string
	LastSynced   time.Time
}

func (o Options) tables() *terminology.Tables {
	if o.Terms == nil {
		return nil
	}
	return o.Terms.Tables()
}

func (o Options) lookupEnabled() bool {
	return o.EnableLookup && o.Terms != nil
}

func (o Options) origin(id, source string) model.Origin {
	return model.Origin{
		ID:           id,
		Source:       source,
		ConnectionID: o.ConnectionID,
		LastSynced:   o.LastSynced,
	}
}

// resolveCoding picks the coding entry whose system classifies to the
// earliest entry of prefs. When no coding matches a preferred system, the
// first coding with a non-empty code wins with whatever system it
// classifies to, Unknown included.
func resolveCoding(cc *fhir.CodeableConcept, prefs ...model.CodeSystem) (code string, system model.CodeSystem, display string) {
	if cc == nil {
		return "", model.CodeSystemUnknown, ""
	}
	for _, pref := range prefs {
		for _, c := range cc.Coding {
			if c.Code != "" && terminology.Classify(c.System) == pref {
				return c.Code, pref, c.Display
			}
		}
	}
	for _, c := range cc.Coding {
		if c.Code != "" {
			return c.Code, terminology.Classify(c.System), c.Display
		}
	}
	return "", model.CodeSystemUnknown, ""
}

// displayName walks the label preference chain: the concept's free text,
// the chosen coding's display, the local reference table, and finally the
// per-type fallback. The chain never comes back empty.
func displayName(cc *fhir.CodeableConcept, codingDisplay string, tables *terminology.Tables, code string, system model.CodeSystem, fallback string) string {
	if cc != nil && cc.Text != "" {
		return cc.Text
	}
	if codingDisplay != "" {
		return codingDisplay
	}
	if tables != nil && code != "" {
		if info := tables.Lookup(code, system); info != nil {
			return info.Name
		}
	}
	return fallback
}

// localCategory reads a code's category from the local table, or "".
func localCategory(tables *terminology.Tables, code string, system model.CodeSystem) string {
	if tables == nil || code == "" {
		return ""
	}
	if info := tables.Lookup(code, system); info != nil {
		return info.Category
	}
	return ""
}

// enrichEach runs fn once per index with bounded concurrency. Each lookup
// is independent best-effort work: fn returns nothing and a slow or failed
// lookup never aborts the rest of the batch.
func enrichEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

// conceptToken extracts the status token from a status-shaped codeable
// concept: the first coding's code, else the free text.
func conceptToken(cc *fhir.CodeableConcept) string {
	if cc == nil {
		return ""
	}
	for _, c := range cc.Coding {
		if c.Code != "" {
			return c.Code
		}
	}
	return cc.Text
}
