package normalize

import (
	"strings"

	"github.com/gyeh/chartmerge/internal/model"
)

// The status maps are total by construction: every known source vocabulary
// value maps to a canonical member, and anything absent from a map falls
// through to the unknown member. Sources drift; these functions never fail.

var medicationStatusMap = map[string]model.MedicationStatus{
	"active":           model.MedicationActive,
	"current":          model.MedicationActive,
	"completed":        model.MedicationCompleted,
	"finished":         model.MedicationCompleted,
	"stopped":          model.MedicationStopped,
	"discontinued":     model.MedicationStopped,
	"ended":            model.MedicationStopped,
	"on-hold":          model.MedicationOnHold,
	"onhold":           model.MedicationOnHold,
	"suspended":        model.MedicationOnHold,
	"cancelled":        model.MedicationCancelled,
	"canceled":         model.MedicationCancelled,
	"entered-in-error": model.MedicationError,
	"error":            model.MedicationError,
	"draft":            model.MedicationDraft,
	"intended":         model.MedicationDraft,
	"proposed":         model.MedicationDraft,
	"unknown":          model.MedicationUnknown,
}

// MedicationStatus maps a source medication status to the canonical enum.
func MedicationStatus(s string) model.MedicationStatus {
	if v, ok := medicationStatusMap[normToken(s)]; ok {
		return v
	}
	return model.MedicationUnknown
}

var clinicalStatusMap = map[string]model.ClinicalStatus{
	"active":     model.ClinicalActive,
	"recurrence": model.ClinicalActive,
	"relapse":    model.ClinicalActive,
	"inactive":   model.ClinicalInactive,
	"remission":  model.ClinicalInactive,
	"resolved":   model.ClinicalResolved,
	"unknown":    model.ClinicalUnknown,
}

// ClinicalStatus maps a source condition clinical status to the canonical enum.
func ClinicalStatus(s string) model.ClinicalStatus {
	if v, ok := clinicalStatusMap[normToken(s)]; ok {
		return v
	}
	return model.ClinicalUnknown
}

var verificationStatusMap = map[string]model.VerificationStatus{
	"confirmed":        model.VerificationConfirmed,
	"provisional":      model.VerificationProvisional,
	"differential":     model.VerificationProvisional,
	"unconfirmed":      model.VerificationUnconfirmed,
	"refuted":          model.VerificationRefuted,
	"entered-in-error": model.VerificationError,
	"error":            model.VerificationError,
	"unknown":          model.VerificationUnknown,
}

// VerificationStatus maps a source verification status to the canonical enum.
func VerificationStatus(s string) model.VerificationStatus {
	if v, ok := verificationStatusMap[normToken(s)]; ok {
		return v
	}
	return model.VerificationUnknown
}

var encounterStatusMap = map[string]model.EncounterStatus{
	"planned":     model.EncounterPlanned,
	"arrived":     model.EncounterInProgress,
	"triaged":     model.EncounterInProgress,
	"in-progress": model.EncounterInProgress,
	"onleave":     model.EncounterInProgress,
	"finished":    model.EncounterFinished,
	"completed":   model.EncounterFinished,
	"cancelled":   model.EncounterCancelled,
	"canceled":    model.EncounterCancelled,
	"unknown":     model.EncounterUnknown,
}

// EncounterStatus maps a source encounter status to the canonical enum.
func EncounterStatus(s string) model.EncounterStatus {
	if v, ok := encounterStatusMap[normToken(s)]; ok {
		return v
	}
	return model.EncounterUnknown
}

var genderMap = map[string]model.Gender{
	"male":   model.GenderMale,
	"m":      model.GenderMale,
	"female": model.GenderFemale,
	"f":      model.GenderFemale,
	"other":  model.GenderOther,
	"o":      model.GenderOther,
}

// Gender maps a source gender value to the canonical enum.
func Gender(s string) model.Gender {
	if v, ok := genderMap[normToken(s)]; ok {
		return v
	}
	return model.GenderUnknown
}

func normToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
