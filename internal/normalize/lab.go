package normalize

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gyeh/chartmerge/internal/fhir"
	"github.com/gyeh/chartmerge/internal/model"
)

const unknownLab = "Unknown Lab Result"

// Labs converts raw Observation resources into canonical lab results.
// Nil or empty input yields an empty slice; records that do not decode
// are skipped.
func Labs(ctx context.Context, raws []json.RawMessage, source string, opts Options) []model.CanonicalLabResult {
	out := make([]model.CanonicalLabResult, 0, len(raws))
	for _, raw := range raws {
		var o fhir.Observation
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		lab := labFromFHIR(&o, source, opts)
		if opts.IncludeRaw {
			lab.Raw = raw
		}
		out = append(out, lab)
	}

	if opts.lookupEnabled() {
		enrichEach(ctx, len(out), func(ctx context.Context, i int) {
			enrichLab(ctx, &out[i], opts)
		})
	}
	return out
}

func labFromFHIR(o *fhir.Observation, source string, opts Options) model.CanonicalLabResult {
	code, system, codingDisplay := resolveCoding(o.Code, model.CodeSystemLOINC)
	if system != model.CodeSystemLOINC {
		system = model.CodeSystemUnknown
	}

	lab := model.CanonicalLabResult{
		Origin:         opts.origin(o.ID, source),
		Name:           displayName(o.Code, codingDisplay, opts.tables(), code, system, unknownLab),
		Code:           code,
		CodeSystem:     system,
		Date:           extractLabDate(o),
		Category:       localCategory(opts.tables(), code, system),
		Interpretation: extractInterpretation(o.Interpretation),
		ReferenceRange: extractReferenceRange(o.ReferenceRange),
	}

	if o.ValueQuantity != nil && o.ValueQuantity.Value != nil {
		lab.Value = formatQuantity(*o.ValueQuantity.Value)
		lab.Unit = o.ValueQuantity.Unit
		if lab.Unit == "" {
			lab.Unit = o.ValueQuantity.Code
		}
	} else if o.ValueString != "" {
		lab.Value = o.ValueString
	}

	return lab
}

// extractLabDate prefers the clinically relevant effective time over the
// instant the result was released.
func extractLabDate(o *fhir.Observation) string {
	if o.EffectiveDateTime != "" {
		return o.EffectiveDateTime
	}
	if o.EffectivePeriod != nil && o.EffectivePeriod.Start != "" {
		return o.EffectivePeriod.Start
	}
	return o.Issued
}

func extractInterpretation(concepts []fhir.CodeableConcept) string {
	for _, cc := range concepts {
		if cc.Text != "" {
			return cc.Text
		}
		for _, c := range cc.Coding {
			if c.Display != "" {
				return c.Display
			}
			if c.Code != "" {
				return c.Code
			}
		}
	}
	return ""
}

func extractReferenceRange(ranges []fhir.ReferenceRange) string {
	if len(ranges) == 0 {
		return ""
	}
	r := ranges[0]
	if r.Text != "" {
		return r.Text
	}

	var low, high, unit string
	if r.Low != nil && r.Low.Value != nil {
		low = formatQuantity(*r.Low.Value)
		unit = r.Low.Unit
	}
	if r.High != nil && r.High.Value != nil {
		high = formatQuantity(*r.High.Value)
		if unit == "" {
			unit = r.High.Unit
		}
	}
	switch {
	case low != "" && high != "":
		return strings.TrimSpace(low + " - " + high + " " + unit)
	case low != "":
		return strings.TrimSpace(">= " + low + " " + unit)
	case high != "":
		return strings.TrimSpace("<= " + high + " " + unit)
	default:
		return ""
	}
}

// enrichLab fills name and test class for codes the local table could not
// resolve.
func enrichLab(ctx context.Context, lab *model.CanonicalLabResult, opts Options) {
	if lab.Code == "" || lab.CodeSystem == model.CodeSystemUnknown {
		return
	}
	if opts.tables().Lookup(lab.Code, lab.CodeSystem) != nil {
		return
	}

	if info := opts.Terms.LookupSystem(ctx, lab.Code, lab.CodeSystem); info != nil {
		lab.Name = info.Name
		if info.Category != "" {
			lab.Category = info.Category
		}
	}
}
