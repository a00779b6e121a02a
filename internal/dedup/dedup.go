package dedup

import (
	"github.com/gyeh/chartmerge/internal/model"
	"github.com/gyeh/chartmerge/internal/normalize"
)

// medicationWindowDays tolerates prescription re-submission lag between
// source systems reporting the same order.
const medicationWindowDays = 7

// fuzzyName builds the fallback grouping key from display text. Placeholder
// names assigned during normalization carry no identity and never match.
func fuzzyName(name, placeholder string) string {
	if name == placeholder {
		return ""
	}
	return normalize.NormalizeName(name)
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Medications merges medication records that share an RxNorm code within a
// seven-day prescribed-date window, or failing a code, the same normalized
// drug name within that window.
func Medications(records []model.CanonicalMedication) []model.MergedRecord[model.CanonicalMedication] {
	return deduplicate(records,
		func(m model.CanonicalMedication) groupKey {
			return groupKey{
				code:   m.Code,
				system: m.CodeSystem,
				name:   fuzzyName(m.Name, "Unknown Medication"),
				date:   m.PrescribedDate,
			}
		},
		withinWindow(medicationWindowDays),
		func(m model.CanonicalMedication) model.CodeSystem { return m.CodeSystem },
		fillMedication,
	)
}

func fillMedication(base, other model.CanonicalMedication) model.CanonicalMedication {
	if base.Name == "" || base.Name == "Unknown Medication" {
		base.Name = pick(other.Name, base.Name)
	}
	if base.Code == "" {
		base.Code = other.Code
		base.CodeSystem = other.CodeSystem
	}
	if base.Status == model.MedicationUnknown {
		base.Status = other.Status
	}
	base.PrescribedDate = pick(base.PrescribedDate, other.PrescribedDate)
	base.Dosage = pick(base.Dosage, other.Dosage)
	if base.DosageDetails == nil {
		base.DosageDetails = other.DosageDetails
	}
	if base.Prescriber == nil {
		base.Prescriber = other.Prescriber
	}
	if base.RefillsAllowed == 0 {
		base.RefillsAllowed = other.RefillsAllowed
	}
	base.Quantity = pick(base.Quantity, other.Quantity)
	if base.DaysSupply == 0 {
		base.DaysSupply = other.DaysSupply
	}
	base.Category = pick(base.Category, other.Category)
	return base
}

// Conditions merges condition records on code identity alone. A chronic
// diagnosis is the same fact regardless of when each source recorded it, so
// no date window applies.
func Conditions(records []model.CanonicalCondition) []model.MergedRecord[model.CanonicalCondition] {
	return deduplicate(records,
		func(c model.CanonicalCondition) groupKey {
			return groupKey{
				code:   c.Code,
				system: c.CodeSystem,
				name:   fuzzyName(c.Name, "Unknown Condition"),
				date:   c.RecordedDate,
			}
		},
		anyDate,
		func(c model.CanonicalCondition) model.CodeSystem { return c.CodeSystem },
		fillCondition,
	)
}

func fillCondition(base, other model.CanonicalCondition) model.CanonicalCondition {
	if base.Name == "" || base.Name == "Unknown Condition" {
		base.Name = pick(other.Name, base.Name)
	}
	if base.Code == "" {
		base.Code = other.Code
		base.CodeSystem = other.CodeSystem
	}
	if base.ClinicalStatus == model.ClinicalUnknown {
		base.ClinicalStatus = other.ClinicalStatus
	}
	if base.VerificationStatus == model.VerificationUnknown {
		base.VerificationStatus = other.VerificationStatus
	}
	base.OnsetDate = pick(base.OnsetDate, other.OnsetDate)
	if base.Category == "" {
		base.Category = other.Category
	}
	if base.Severity == nil {
		base.Severity = other.Severity
	}
	base.RecordedDate = pick(base.RecordedDate, other.RecordedDate)
	return base
}

// Labs merges observations that share a LOINC code on the same calendar
// day. The same test run on different days is a distinct result, so the
// window is a single day.
func Labs(records []model.CanonicalLabResult) []model.MergedRecord[model.CanonicalLabResult] {
	return deduplicate(records,
		func(l model.CanonicalLabResult) groupKey {
			return groupKey{
				code:   l.Code,
				system: l.CodeSystem,
				name:   fuzzyName(l.Name, "Unknown Lab Result"),
				date:   l.Date,
			}
		},
		sameDay,
		func(l model.CanonicalLabResult) model.CodeSystem { return l.CodeSystem },
		fillLab,
	)
}

func fillLab(base, other model.CanonicalLabResult) model.CanonicalLabResult {
	if base.Name == "" || base.Name == "Unknown Lab Result" {
		base.Name = pick(other.Name, base.Name)
	}
	if base.Code == "" {
		base.Code = other.Code
		base.CodeSystem = other.CodeSystem
	}
	base.Date = pick(base.Date, other.Date)
	base.Value = pick(base.Value, other.Value)
	base.Unit = pick(base.Unit, other.Unit)
	base.ReferenceRange = pick(base.ReferenceRange, other.ReferenceRange)
	base.Interpretation = pick(base.Interpretation, other.Interpretation)
	base.Category = pick(base.Category, other.Category)
	return base
}

// Encounters merges visit records with the same normalized type on the same
// start day. Encounters carry no terminology code, so type text is the only
// identity signal.
func Encounters(records []model.CanonicalEncounter) []model.MergedRecord[model.CanonicalEncounter] {
	return deduplicate(records,
		func(e model.CanonicalEncounter) groupKey {
			return groupKey{
				name: normalize.NormalizeName(e.Type),
				date: e.StartDate,
			}
		},
		sameDay,
		func(model.CanonicalEncounter) model.CodeSystem { return model.CodeSystemUnknown },
		fillEncounter,
	)
}

func fillEncounter(base, other model.CanonicalEncounter) model.CanonicalEncounter {
	base.Type = pick(base.Type, other.Type)
	base.StartDate = pick(base.StartDate, other.StartDate)
	base.EndDate = pick(base.EndDate, other.EndDate)
	if base.Status == model.EncounterUnknown {
		base.Status = other.Status
	}
	base.Location = pick(base.Location, other.Location)
	base.Provider = pick(base.Provider, other.Provider)
	return base
}
