package normalize

import (
	"encoding/json"

	"github.com/gyeh/chartmerge/internal/fhir"
	"github.com/gyeh/chartmerge/internal/model"
)

// Encounters converts raw Encounter resources into canonical visit
// records. Nil or empty input yields an empty slice; records that do not
// decode are skipped. Encounters carry no terminology codes worth
// enriching, so this normalizer is always pure.
func Encounters(raws []json.RawMessage, source string, opts Options) []model.CanonicalEncounter {
	out := make([]model.CanonicalEncounter, 0, len(raws))
	for _, raw := range raws {
		var e fhir.Encounter
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		enc := encounterFromFHIR(&e, source, opts)
		if opts.IncludeRaw {
			enc.Raw = raw
		}
		out = append(out, enc)
	}
	return out
}

func encounterFromFHIR(e *fhir.Encounter, source string, opts Options) model.CanonicalEncounter {
	out := model.CanonicalEncounter{
		Origin: opts.origin(e.ID, source),
		Type:   encounterType(e),
		Status: EncounterStatus(e.Status),
	}

	if e.Period != nil {
		out.StartDate = e.Period.Start
		out.EndDate = e.Period.End
	}
	for _, loc := range e.Location {
		if loc.Location.Display != "" {
			out.Location = loc.Location.Display
			break
		}
	}
	for _, p := range e.Participant {
		if p.Individual != nil && p.Individual.Display != "" {
			out.Provider = p.Individual.Display
			break
		}
	}

	return out
}

func encounterType(e *fhir.Encounter) string {
	for _, t := range e.Type {
		if t.Text != "" {
			return t.Text
		}
		for _, c := range t.Coding {
			if c.Display != "" {
				return c.Display
			}
		}
	}
	if e.Class != nil && e.Class.Display != "" {
		return e.Class.Display
	}
	return ""
}
