package terminology

import (
	"context"

	"github.com/gyeh/chartmerge/internal/fhir"
	"github.com/gyeh/chartmerge/internal/model"
)

// EnrichedCoding is a source coding annotated with the lookup outcome.
// CodeSystem is always set, Unknown included, and Enriched reports whether
// a lookup actually resolved the code.
type EnrichedCoding struct {
	fhir.Coding

	Name       string           `json:"name,omitempty"`
	Category   string           `json:"category,omitempty"`
	CodeSystem model.CodeSystem `json:"codeSystem"`
	Enriched   bool             `json:"_enriched"`
}

// EnrichCode classifies a coding's system and, on a lookup hit, fills in
// the human-readable name and category. A display already present on the
// coding is preserved. The function is idempotent: re-running it on its own
// output with the same cache state yields the same result.
func (s *Service) EnrichCode(ctx context.Context, coding fhir.Coding) EnrichedCoding {
	out := EnrichedCoding{
		Coding:     coding,
		CodeSystem: Classify(coding.System),
	}

	info := s.LookupSystem(ctx, coding.Code, out.CodeSystem)
	if info == nil {
		return out
	}

	out.Name = info.Name
	out.Category = info.Category
	out.Enriched = true
	if out.Display == "" {
		out.Display = info.Name
	}
	return out
}
