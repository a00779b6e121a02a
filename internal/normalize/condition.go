package normalize

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gyeh/chartmerge/internal/fhir"
	"github.com/gyeh/chartmerge/internal/model"
)

const unknownCondition = "Unknown Condition"

// Conditions converts raw Condition resources into canonical condition
// records. Nil or empty input yields an empty slice; records that do not
// decode are skipped.
func Conditions(ctx context.Context, raws []json.RawMessage, source string, opts Options) []model.CanonicalCondition {
	out := make([]model.CanonicalCondition, 0, len(raws))
	for _, raw := range raws {
		var c fhir.Condition
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		cc := conditionFromFHIR(&c, source, opts)
		if opts.IncludeRaw {
			cc.Raw = raw
		}
		out = append(out, cc)
	}

	if opts.lookupEnabled() {
		enrichEach(ctx, len(out), func(ctx context.Context, i int) {
			enrichCondition(ctx, &out[i], opts)
		})
	}
	return out
}

func conditionFromFHIR(c *fhir.Condition, source string, opts Options) model.CanonicalCondition {
	code, system, codingDisplay := resolveCoding(c.Code, model.CodeSystemICD10, model.CodeSystemSNOMED)
	if system != model.CodeSystemICD10 && system != model.CodeSystemSNOMED {
		system = model.CodeSystemUnknown
	}

	out := model.CanonicalCondition{
		Origin:             opts.origin(c.ID, source),
		Name:               displayName(c.Code, codingDisplay, opts.tables(), code, system, unknownCondition),
		Code:               code,
		CodeSystem:         system,
		ClinicalStatus:     ClinicalStatus(conceptToken(c.ClinicalStatus)),
		VerificationStatus: VerificationStatus(conceptToken(c.VerificationStatus)),
		OnsetDate:          extractOnset(c),
		Category:           conditionCategory(c.Category),
		RecordedDate:       c.RecordedDate,
	}

	if c.Severity != nil {
		sevCode, _, sevDisplay := resolveCoding(c.Severity)
		if sevDisplay == "" {
			sevDisplay = c.Severity.Text
		}
		if sevCode != "" || sevDisplay != "" {
			out.Severity = &model.Severity{Code: sevCode, Display: sevDisplay}
		}
	}

	return out
}

// extractOnset walks the fixed priority order: literal dateTime, period
// start, age rendered as "Age N", then free text. Deterministic by
// construction.
func extractOnset(c *fhir.Condition) string {
	if c.OnsetDateTime != "" {
		return c.OnsetDateTime
	}
	if c.OnsetPeriod != nil && c.OnsetPeriod.Start != "" {
		return c.OnsetPeriod.Start
	}
	if c.OnsetAge != nil && c.OnsetAge.Value != nil {
		return fmt.Sprintf("Age %s", formatQuantity(*c.OnsetAge.Value))
	}
	return c.OnsetString
}

func conditionCategory(categories []fhir.CodeableConcept) model.ConditionCategory {
	for _, cc := range categories {
		for _, c := range cc.Coding {
			switch c.Code {
			case "problem-list-item":
				return model.CategoryProblem
			case "encounter-diagnosis":
				return model.CategoryDiagnosis
			case "health-concern":
				return model.CategoryConcern
			}
		}
	}
	return model.CategoryProblem
}

// enrichCondition fills name and category for codes the local table and
// crosswalk could not resolve.
func enrichCondition(ctx context.Context, c *model.CanonicalCondition, opts Options) {
	if c.Code == "" || c.CodeSystem == model.CodeSystemUnknown {
		return
	}
	if opts.tables().Lookup(c.Code, c.CodeSystem) != nil {
		return
	}

	if info := opts.Terms.LookupSystem(ctx, c.Code, c.CodeSystem); info != nil {
		c.Name = info.Name
	}
}
