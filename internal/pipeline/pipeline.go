// Package pipeline orchestrates one aggregation run: fetch raw FHIR records
// for every source connection, normalize them into the canonical schema,
// then deduplicate across connections into merged records with provenance.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/chartmerge/internal/dedup"
	"github.com/gyeh/chartmerge/internal/model"
	"github.com/gyeh/chartmerge/internal/normalize"
	"github.com/gyeh/chartmerge/internal/terminology"
)

// connectionConcurrency bounds the per-connection fetch/normalize fan-out.
const connectionConcurrency = 4

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ResourceType names the FHIR resource types the pipeline fetches.
type ResourceType string

const (
	ResourcePatient     ResourceType = "Patient"
	ResourceMedication  ResourceType = "MedicationRequest"
	ResourceCondition   ResourceType = "Condition"
	ResourceObservation ResourceType = "Observation"
	ResourceEncounter   ResourceType = "Encounter"
)

// AllResourceTypes lists every resource type fetched per connection.
var AllResourceTypes = []ResourceType{
	ResourcePatient,
	ResourceMedication,
	ResourceCondition,
	ResourceObservation,
	ResourceEncounter,
}

// Connection describes one linked source system for the patient.
type Connection struct {
	Provider     string    `yaml:"provider"`
	ConnectionID string    `yaml:"connection_id"`
	PatientID    string    `yaml:"patient_id"`
	LastSynced   time.Time `yaml:"last_synced"`
}

// FetchClient retrieves the raw records of one resource type for one
// connection. Implementations return an error per resource type; the
// orchestrator tolerates partial failure and normalizes what it has.
type FetchClient interface {
	Fetch(ctx context.Context, conn Connection, resource ResourceType) ([]json.RawMessage, error)
}

// Options controls a pipeline run.
type Options struct {
	EnableLookup bool // allow enrichment to call the external terminology service
	IncludeRaw   bool // keep original source records on canonical records
}

// PatientRecordSet is the output of one run: per-connection patient
// demographics candidates plus cross-connection merged clinical records.
type PatientRecordSet struct {
	Patients    []model.CanonicalPatient                        `json:"patients"`
	Medications []model.MergedRecord[model.CanonicalMedication] `json:"medications"`
	Conditions  []model.MergedRecord[model.CanonicalCondition]  `json:"conditions"`
	Labs        []model.MergedRecord[model.CanonicalLabResult]  `json:"labs"`
	Encounters  []model.MergedRecord[model.CanonicalEncounter]  `json:"encounters"`

	Summary MergeSummary `json:"summary"`
}

// MergeSummary reports what one run did.
type MergeSummary struct {
	RunID             string        `json:"runId"`
	Connections       int           `json:"connections"`
	FailedFetches     int           `json:"failedFetches"`
	RawRecords        int           `json:"rawRecords"`
	CanonicalRecords  int           `json:"canonicalRecords"`
	MergedMedications int           `json:"mergedMedications"`
	MergedConditions  int           `json:"mergedConditions"`
	MergedLabs        int           `json:"mergedLabs"`
	MergedEncounters  int           `json:"mergedEncounters"`
	Duration          time.Duration `json:"duration"`
}

// connectionRecords is one connection's normalized output.
type connectionRecords struct {
	patient       *model.CanonicalPatient
	medications   []model.CanonicalMedication
	conditions    []model.CanonicalCondition
	labs          []model.CanonicalLabResult
	encounters    []model.CanonicalEncounter
	rawCount      int
	failedFetches int
}

// Run executes the full pipeline: fetch and normalize every connection
// concurrently, then deduplicate across connections. A connection whose
// fetches partially fail still contributes the resource types it has; the
// run fails only when every fetch of every connection failed.
func Run(ctx context.Context, client FetchClient, terms *terminology.Service, log zerolog.Logger, conns []Connection, opts Options) (*PatientRecordSet, error) {
	totalStart := time.Now()

	if len(conns) == 0 {
		return nil, &PipelineError{Phase: "fetch", Err: errors.New("no source connections")}
	}

	// Phase 1: fetch + normalize, one goroutine per connection.
	results := make([]connectionRecords, len(conns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(connectionConcurrency)
	for i, conn := range conns {
		i, conn := i, conn
		g.Go(func() error {
			results[i] = collect(gctx, client, terms, log, conn, opts)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &PipelineError{Phase: "normalize", Err: err}
	}

	set := &PatientRecordSet{Summary: MergeSummary{
		RunID:       uuid.NewString(),
		Connections: len(conns),
	}}
	var meds []model.CanonicalMedication
	var conditions []model.CanonicalCondition
	var labs []model.CanonicalLabResult
	var encounters []model.CanonicalEncounter
	for _, r := range results {
		if r.patient != nil {
			set.Patients = append(set.Patients, *r.patient)
		}
		meds = append(meds, r.medications...)
		conditions = append(conditions, r.conditions...)
		labs = append(labs, r.labs...)
		encounters = append(encounters, r.encounters...)
		set.Summary.RawRecords += r.rawCount
		set.Summary.FailedFetches += r.failedFetches
	}

	if set.Summary.FailedFetches == len(conns)*len(AllResourceTypes) {
		return nil, &PipelineError{Phase: "fetch", Err: errors.New("every fetch failed for every connection")}
	}

	// Phase 2: cross-connection dedup/merge.
	set.Medications = dedup.Medications(meds)
	set.Conditions = dedup.Conditions(conditions)
	set.Labs = dedup.Labs(labs)
	set.Encounters = dedup.Encounters(encounters)

	set.Summary.CanonicalRecords = len(set.Patients) + len(meds) + len(conditions) + len(labs) + len(encounters)
	set.Summary.MergedMedications = len(set.Medications)
	set.Summary.MergedConditions = len(set.Conditions)
	set.Summary.MergedLabs = len(set.Labs)
	set.Summary.MergedEncounters = len(set.Encounters)
	set.Summary.Duration = time.Since(totalStart)

	log.Info().
		Str("run_id", set.Summary.RunID).
		Int("connections", set.Summary.Connections).
		Int("raw_records", set.Summary.RawRecords).
		Int("failed_fetches", set.Summary.FailedFetches).
		Int("merged_medications", set.Summary.MergedMedications).
		Int("merged_conditions", set.Summary.MergedConditions).
		Int("merged_labs", set.Summary.MergedLabs).
		Int("merged_encounters", set.Summary.MergedEncounters).
		Dur("duration", set.Summary.Duration).
		Msg("pipeline run complete")

	return set, nil
}

// collect fetches and normalizes every resource type for one connection.
// Fetch failures are logged and skipped so the other resource types still
// come through.
func collect(ctx context.Context, client FetchClient, terms *terminology.Service, log zerolog.Logger, conn Connection, opts Options) connectionRecords {
	nopts := normalize.Options{
		Terms:        terms,
		EnableLookup: opts.EnableLookup,
		IncludeRaw:   opts.IncludeRaw,
		ConnectionID: conn.ConnectionID,
		LastSynced:   conn.LastSynced,
	}

	var out connectionRecords
	for _, rt := range AllResourceTypes {
		raws, err := client.Fetch(ctx, conn, rt)
		if err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", conn.ConnectionID).
				Str("provider", conn.Provider).
				Str("resource", string(rt)).
				Msg("fetch failed, skipping resource type")
			out.failedFetches++
			continue
		}
		out.rawCount += len(raws)

		switch rt {
		case ResourcePatient:
			if len(raws) > 0 {
				out.patient = normalize.Patient(raws[0], conn.Provider, nopts)
			}
		case ResourceMedication:
			out.medications = normalize.Medications(ctx, raws, conn.Provider, nopts)
		case ResourceCondition:
			out.conditions = normalize.Conditions(ctx, raws, conn.Provider, nopts)
		case ResourceObservation:
			out.labs = normalize.Labs(ctx, raws, conn.Provider, nopts)
		case ResourceEncounter:
			out.encounters = normalize.Encounters(raws, conn.Provider, nopts)
		}
	}
	return out
}
