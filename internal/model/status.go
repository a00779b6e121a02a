package model

// Gender is the canonical administrative gender.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// MedicationStatus is the canonical medication order status.
type MedicationStatus string

const (
	MedicationActive    MedicationStatus = "active"
	MedicationCompleted MedicationStatus = "completed"
	MedicationStopped   MedicationStatus = "stopped"
	MedicationOnHold    MedicationStatus = "on-hold"
	MedicationCancelled MedicationStatus = "cancelled"
	MedicationError     MedicationStatus = "error"
	MedicationDraft     MedicationStatus = "draft"
	MedicationUnknown   MedicationStatus = "unknown"
)

// ClinicalStatus is the canonical condition clinical status.
type ClinicalStatus string

const (
	ClinicalActive   ClinicalStatus = "active"
	ClinicalInactive ClinicalStatus = "inactive"
	ClinicalResolved ClinicalStatus = "resolved"
	ClinicalUnknown  ClinicalStatus = "unknown"
)

// VerificationStatus is the canonical condition verification status.
type VerificationStatus string

const (
	VerificationConfirmed   VerificationStatus = "confirmed"
	VerificationProvisional VerificationStatus = "provisional"
	VerificationUnconfirmed VerificationStatus = "unconfirmed"
	VerificationRefuted     VerificationStatus = "refuted"
	VerificationError       VerificationStatus = "error"
	VerificationUnknown     VerificationStatus = "unknown"
)

// ConditionCategory distinguishes how a condition was recorded at the source.
type ConditionCategory string

const (
	CategoryProblem   ConditionCategory = "problem"
	CategoryDiagnosis ConditionCategory = "diagnosis"
	CategoryConcern   ConditionCategory = "concern"
)

// EncounterStatus is the canonical encounter workflow status.
type EncounterStatus string

const (
	EncounterPlanned    EncounterStatus = "planned"
	EncounterInProgress EncounterStatus = "in-progress"
	EncounterFinished   EncounterStatus = "finished"
	EncounterCancelled  EncounterStatus = "cancelled"
	EncounterUnknown    EncounterStatus = "unknown"
)
