// Package terminology resolves clinical codes to human-readable names and
// categories through a three-tier lookup: bundled reference tables, a shared
// TTL cache, and external terminology services.
package terminology

import (
	"strings"

	"github.com/gyeh/chartmerge/internal/model"
)

// Well-known code system URIs.
const (
	SystemLOINC  = "http://loinc.org"
	SystemRxNorm = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemICD10  = "http://hl7.org/fhir/sid/icd-10-cm"
	SystemSNOMED = "http://snomed.info/sct"
	SystemCPT    = "http://www.ama-assn.org/go/cpt"
	SystemNDC    = "http://hl7.org/fhir/sid/ndc"
)

// classifyChecks are ordered most specific first; the first matching
// substring wins. "icd" alone would also match "icd-10", so longer markers
// must stay ahead of shorter ones if systems sharing substrings are added.
var classifyChecks = []struct {
	marker string
	system model.CodeSystem
}{
	{"loinc", model.CodeSystemLOINC},
	{"rxnorm", model.CodeSystemRxNorm},
	{"icd-10", model.CodeSystemICD10},
	{"icd10", model.CodeSystemICD10},
	{"snomed", model.CodeSystemSNOMED},
	{"sct", model.CodeSystemSNOMED},
	{"cpt", model.CodeSystemCPT},
	{"ndc", model.CodeSystemNDC},
}

// Classify maps a code system URI or free-form system string to the closed
// CodeSystem enum. Unrecognized input classifies as Unknown, never an error.
func Classify(system string) model.CodeSystem {
	s := strings.ToLower(strings.TrimSpace(system))
	if s == "" {
		return model.CodeSystemUnknown
	}
	for _, c := range classifyChecks {
		if strings.Contains(s, c.marker) {
			return c.system
		}
	}
	return model.CodeSystemUnknown
}
