package terminology

import (
	"testing"

	"github.com/gyeh/chartmerge/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want model.CodeSystem
	}{
		{"http://loinc.org", model.CodeSystemLOINC},
		{"http://www.nlm.nih.gov/research/umls/rxnorm", model.CodeSystemRxNorm},
		{"http://hl7.org/fhir/sid/icd-10-cm", model.CodeSystemICD10},
		{"ICD10", model.CodeSystemICD10},
		{"http://snomed.info/sct", model.CodeSystemSNOMED},
		{"SNOMED CT", model.CodeSystemSNOMED},
		{"http://www.ama-assn.org/go/cpt", model.CodeSystemCPT},
		{"http://hl7.org/fhir/sid/ndc", model.CodeSystemNDC},
		{"rxnorm", model.CodeSystemRxNorm},
		{"  LOINC  ", model.CodeSystemLOINC},
		{"", model.CodeSystemUnknown},
		{"http://example.org/custom-codes", model.CodeSystemUnknown},
		{"urn:oid:2.16.840.1.113883.6.1000", model.CodeSystemUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.in); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTables_Lookup(t *testing.T) {
	tables := DefaultTables()

	if info := tables.Lookup("197361", model.CodeSystemRxNorm); info == nil || info.Name != "Amlodipine 5 MG Oral Tablet" {
		t.Errorf("rxnorm 197361: got %+v", info)
	}
	if info := tables.Lookup("e11.9", model.CodeSystemICD10); info == nil {
		t.Error("icd10 lookup should be case-insensitive on the code")
	}

	// SNOMED resolves through the ICD-10 crosswalk.
	if info := tables.Lookup("44054006", model.CodeSystemSNOMED); info == nil || info.Category != "Endocrine" {
		t.Errorf("snomed 44054006 via crosswalk: got %+v", info)
	}

	// NDC resolves through the RxNorm crosswalk.
	if info := tables.Lookup("00093731001", model.CodeSystemNDC); info == nil || info.Name != "Amlodipine 5 MG Oral Tablet" {
		t.Errorf("ndc 00093731001 via crosswalk: got %+v", info)
	}

	if info := tables.Lookup("nope", model.CodeSystemLOINC); info != nil {
		t.Errorf("expected nil for unknown code, got %+v", info)
	}
	if info := tables.Lookup("", model.CodeSystemLOINC); info != nil {
		t.Errorf("expected nil for empty code, got %+v", info)
	}
	if info := tables.Lookup("X", model.CodeSystemUnknown); info != nil {
		t.Errorf("expected nil for unknown system, got %+v", info)
	}
}

func TestTables_Merge(t *testing.T) {
	tables := DefaultTables()
	tables.Merge([]RefRow{
		{System: "http://loinc.org", Code: "999-9", Display: "Test observation", Category: "Test"},
		{System: "rxnorm", Code: "197361", Display: "Overridden name", Category: "Overridden class"},
	})

	if info := tables.Lookup("999-9", model.CodeSystemLOINC); info == nil || info.Name != "Test observation" {
		t.Errorf("merged loinc row not found: %+v", info)
	}
	if info := tables.Lookup("197361", model.CodeSystemRxNorm); info == nil || info.Name != "Overridden name" {
		t.Errorf("merge should overwrite existing entries: %+v", info)
	}
	if class := tables.DrugClass("197361"); class != "Overridden class" {
		t.Errorf("merge should update drug class: %q", class)
	}
}
