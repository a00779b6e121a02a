package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gyeh/chartmerge/internal/fhir"
	"github.com/gyeh/chartmerge/internal/model"
)

const unknownMedication = "Unknown Medication"

// Medications converts raw MedicationRequest resources into canonical
// medication records. Nil or empty input yields an empty slice; records
// that do not decode are skipped.
func Medications(ctx context.Context, raws []json.RawMessage, source string, opts Options) []model.CanonicalMedication {
	out := make([]model.CanonicalMedication, 0, len(raws))
	for _, raw := range raws {
		var mr fhir.MedicationRequest
		if err := json.Unmarshal(raw, &mr); err != nil {
			continue
		}
		m := medicationFromFHIR(&mr, source, opts)
		if opts.IncludeRaw {
			m.Raw = raw
		}
		out = append(out, m)
	}

	if opts.lookupEnabled() {
		enrichEach(ctx, len(out), func(ctx context.Context, i int) {
			enrichMedication(ctx, &out[i], opts)
		})
	}
	return out
}

func medicationFromFHIR(mr *fhir.MedicationRequest, source string, opts Options) model.CanonicalMedication {
	concept := mr.MedicationCodeableConcept
	code, system, codingDisplay := resolveCoding(concept, model.CodeSystemRxNorm, model.CodeSystemNDC)

	// An NDC code is a packaging identifier; cross-reference it to the
	// RxNorm concept when the crosswalk knows it.
	if system == model.CodeSystemNDC {
		if t := opts.tables(); t != nil {
			if rx := t.RxNormFromNDC(NormalizeCode(code)); rx != "" {
				code, system = rx, model.CodeSystemRxNorm
			}
		}
	}
	if system != model.CodeSystemRxNorm && system != model.CodeSystemNDC {
		system = model.CodeSystemUnknown
	}

	m := model.CanonicalMedication{
		Origin:         opts.origin(mr.ID, source),
		Name:           displayName(concept, codingDisplay, opts.tables(), code, system, unknownMedication),
		Code:           code,
		CodeSystem:     system,
		Status:         MedicationStatus(mr.Status),
		PrescribedDate: mr.AuthoredOn,
		Category:       localCategory(opts.tables(), code, system),
	}
	if m.Name == unknownMedication && mr.MedicationReference != nil && mr.MedicationReference.Display != "" {
		m.Name = mr.MedicationReference.Display
	}

	if mr.Requester != nil && (mr.Requester.Display != "" || mr.Requester.Reference != "") {
		m.Prescriber = &model.Prescriber{
			Name:      mr.Requester.Display,
			Reference: mr.Requester.Reference,
		}
	}

	m.Dosage, m.DosageDetails = extractDosage(mr.DosageInstruction)

	if dr := mr.DispenseRequest; dr != nil {
		if dr.NumberOfRepeatsAllowed != nil {
			m.RefillsAllowed = *dr.NumberOfRepeatsAllowed
		}
		if dr.Quantity != nil && dr.Quantity.Value != nil {
			m.Quantity = strings.TrimSpace(formatQuantity(*dr.Quantity.Value) + " " + dr.Quantity.Unit)
		}
		if dr.ExpectedSupplyDuration != nil && dr.ExpectedSupplyDuration.Value != nil {
			m.DaysSupply = int(*dr.ExpectedSupplyDuration.Value)
		}
	}

	return m
}

// extractDosage combines a dose quantity/unit with either the coded
// frequency label or a computed "Nx per M unit" string from the structured
// repeat. Absence of all dosage fields yields "", nil, never an error.
func extractDosage(instructions []fhir.Dosage) (string, *model.DosageDetails) {
	if len(instructions) == 0 {
		return "", nil
	}
	d := instructions[0]

	details := &model.DosageDetails{
		Instructions: d.PatientInstruction,
	}
	if details.Instructions == "" {
		details.Instructions = d.Text
	}

	if len(d.DoseAndRate) > 0 && d.DoseAndRate[0].DoseQuantity != nil {
		q := d.DoseAndRate[0].DoseQuantity
		if q.Value != nil {
			details.Dose = formatQuantity(*q.Value)
		}
		details.DoseUnit = q.Unit
		if details.DoseUnit == "" {
			details.DoseUnit = q.Code
		}
	}

	if d.Timing != nil {
		details.Frequency = frequencyLabel(d.Timing)
	}

	if d.Route != nil {
		if d.Route.Text != "" {
			details.Route = d.Route.Text
		} else {
			for _, c := range d.Route.Coding {
				if c.Display != "" {
					details.Route = c.Display
					break
				}
			}
		}
	}

	if (model.DosageDetails{}) == *details {
		details = nil
	}

	freeText := d.Text
	if freeText == "" && details != nil {
		freeText = strings.TrimSpace(strings.Join([]string{details.Dose, details.DoseUnit, details.Frequency}, " "))
		freeText = strings.Join(strings.Fields(freeText), " ")
	}
	return freeText, details
}

// frequencyLabel prefers the coded timing label and falls back to a
// computed rendering of the structured repeat.
func frequencyLabel(t *fhir.Timing) string {
	if t.Code != nil {
		if t.Code.Text != "" {
			return t.Code.Text
		}
		for _, c := range t.Code.Coding {
			if c.Display != "" {
				return c.Display
			}
		}
	}
	r := t.Repeat
	if r == nil || r.Frequency == 0 || r.Period == nil {
		return ""
	}
	return fmt.Sprintf("%dx per %s %s", r.Frequency, formatQuantity(*r.Period), periodUnitName(r.PeriodUnit))
}

var periodUnits = map[string]string{
	"s":   "second",
	"min": "minute",
	"h":   "hour",
	"d":   "day",
	"wk":  "week",
	"mo":  "month",
	"a":   "year",
}

func periodUnitName(code string) string {
	if name, ok := periodUnits[code]; ok {
		return name
	}
	return code
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// enrichMedication fills name and therapeutic class for codes the local
// table could not resolve. A failed or empty lookup leaves the fallback
// name untouched.
func enrichMedication(ctx context.Context, m *model.CanonicalMedication, opts Options) {
	if m.Code == "" || m.CodeSystem == model.CodeSystemUnknown {
		return
	}
	if opts.tables().Lookup(m.Code, m.CodeSystem) != nil {
		return // local table already answered
	}

	if info := opts.Terms.LookupSystem(ctx, m.Code, m.CodeSystem); info != nil {
		m.Name = info.Name
		if info.Category != "" {
			m.Category = info.Category
		}
	}
	if m.Category == "" && m.CodeSystem == model.CodeSystemRxNorm {
		m.Category = opts.Terms.GetDrugClass(ctx, m.Code)
	}
}
