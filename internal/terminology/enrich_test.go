package terminology

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gyeh/chartmerge/internal/fhir"
	"github.com/gyeh/chartmerge/internal/model"
)

func TestEnrichCode_Hit(t *testing.T) {
	svc := newTestService(&countingClient{})

	out := svc.EnrichCode(context.Background(), fhir.Coding{
		System: "http://www.nlm.nih.gov/research/umls/rxnorm",
		Code:   "197361",
	})

	if out.CodeSystem != model.CodeSystemRxNorm {
		t.Errorf("codeSystem = %s", out.CodeSystem)
	}
	if !out.Enriched {
		t.Error("expected _enriched=true on a table hit")
	}
	if out.Name != "Amlodipine 5 MG Oral Tablet" {
		t.Errorf("name = %q", out.Name)
	}
	if out.Category != "Calcium Channel Blocker" {
		t.Errorf("category = %q", out.Category)
	}
	if out.Display != "Amlodipine 5 MG Oral Tablet" {
		t.Errorf("empty display should be filled from the lookup, got %q", out.Display)
	}
}

func TestEnrichCode_PreservesExistingDisplay(t *testing.T) {
	svc := newTestService(&countingClient{})

	out := svc.EnrichCode(context.Background(), fhir.Coding{
		System:  "rxnorm",
		Code:    "197361",
		Display: "amLODIPine 5 mg tablet",
	})
	if out.Display != "amLODIPine 5 mg tablet" {
		t.Errorf("pre-existing display must be preserved, got %q", out.Display)
	}
	if out.Name != "Amlodipine 5 MG Oral Tablet" {
		t.Errorf("name = %q", out.Name)
	}
}

func TestEnrichCode_Miss(t *testing.T) {
	svc := newTestService(&countingClient{err: errors.New("status 502")})

	out := svc.EnrichCode(context.Background(), fhir.Coding{
		System: "http://loinc.org",
		Code:   "X",
	})

	if out.CodeSystem != model.CodeSystemLOINC {
		t.Errorf("codeSystem must be set even on a miss, got %s", out.CodeSystem)
	}
	if out.Enriched {
		t.Error("expected _enriched=false on a miss")
	}
	if out.Name != "" {
		t.Errorf("a miss must not fabricate a name, got %q", out.Name)
	}
}

func TestEnrichCode_UnknownSystem(t *testing.T) {
	svc := newTestService(&countingClient{})

	out := svc.EnrichCode(context.Background(), fhir.Coding{
		System: "http://example.org/local-codes",
		Code:   "ABC",
	})
	if out.CodeSystem != model.CodeSystemUnknown {
		t.Errorf("codeSystem = %s, want UNKNOWN", out.CodeSystem)
	}
	if out.Enriched {
		t.Error("unknown system cannot enrich")
	}
}

func TestEnrichCode_Idempotent(t *testing.T) {
	svc := newTestService(&countingClient{})
	ctx := context.Background()

	first := svc.EnrichCode(ctx, fhir.Coding{System: "rxnorm", Code: "197361"})
	second := svc.EnrichCode(ctx, first.Coding)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("EnrichCode is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
