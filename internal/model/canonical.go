package model

import (
	"encoding/json"
	"time"
)

// Origin carries the provenance fields shared by every canonical record:
// the source-local resource ID, the provider key of the source system, the
// connection the record was fetched through, and when that connection last
// synced. Raw is the original source record, kept only when raw inclusion
// is requested.
type Origin struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	ConnectionID string          `json:"connectionId,omitempty"`
	LastSynced   time.Time       `json:"lastSynced,omitempty"`
	Raw          json.RawMessage `json:"_raw,omitempty"`
}

// Ref returns the provenance reference used in merged-record envelopes.
func (o Origin) Ref() SourceRef {
	return SourceRef{Provider: o.Source, ConnectionID: o.ConnectionID}
}

// Synced reports when the record's connection last synced.
func (o Origin) Synced() time.Time {
	return o.LastSynced
}

// Address is a canonical postal address.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CanonicalPatient is the normalized demographics record for one source.
type CanonicalPatient struct {
	Origin

	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	FullName    string   `json:"fullName,omitempty"`
	DateOfBirth string   `json:"dateOfBirth,omitempty"`
	Gender      Gender   `json:"gender"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	Address     *Address `json:"address,omitempty"`
}

// DosageDetails is the structured breakdown of a medication dosage.
type DosageDetails struct {
	Dose         string `json:"dose,omitempty"`
	DoseUnit     string `json:"doseUnit,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	Route        string `json:"route,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescriber identifies the ordering practitioner.
type Prescriber struct {
	Name      string `json:"name,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// CanonicalMedication is the normalized medication order for one source.
type CanonicalMedication struct {
	Origin

	Name           string           `json:"name"`
	Code           string           `json:"code,omitempty"`
	CodeSystem     CodeSystem       `json:"codeSystem"`
	Status         MedicationStatus `json:"status"`
	PrescribedDate string           `json:"prescribedDate,omitempty"`
	Dosage         string           `json:"dosage,omitempty"`
	DosageDetails  *DosageDetails   `json:"dosageDetails,omitempty"`
	Prescriber     *Prescriber      `json:"prescriber,omitempty"`
	RefillsAllowed int              `json:"refillsAllowed,omitempty"`
	Quantity       string           `json:"quantity,omitempty"`
	DaysSupply     int              `json:"daysSupply,omitempty"`
	Category       string           `json:"category,omitempty"`
}

// Severity is a coded condition severity with its display text.
type Severity struct {
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// CanonicalCondition is the normalized condition/diagnosis for one source.
// OnsetDate may be an ISO date, an age description like "Age 45", or free
// text, whichever the source provided.
type CanonicalCondition struct {
	Origin

	Name               string             `json:"name"`
	Code               string             `json:"code,omitempty"`
	CodeSystem         CodeSystem         `json:"codeSystem"`
	ClinicalStatus     ClinicalStatus     `json:"clinicalStatus"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	OnsetDate          string             `json:"onsetDate,omitempty"`
	Category           ConditionCategory  `json:"category,omitempty"`
	Severity           *Severity          `json:"severity,omitempty"`
	RecordedDate       string             `json:"recordedDate,omitempty"`
}

// CanonicalLabResult is the normalized laboratory observation for one source.
type CanonicalLabResult struct {
	Origin

	Name           string     `json:"name"`
	Code           string     `json:"code,omitempty"`
	CodeSystem     CodeSystem `json:"codeSystem"`
	Date           string     `json:"date,omitempty"`
	Value          string     `json:"value,omitempty"`
	Unit           string     `json:"unit,omitempty"`
	ReferenceRange string     `json:"referenceRange,omitempty"`
	Interpretation string     `json:"interpretation,omitempty"`
	Category       string     `json:"category,omitempty"`
}

// CanonicalEncounter is the normalized visit record for one source.
type CanonicalEncounter struct {
	Origin

	Type      string          `json:"type,omitempty"`
	StartDate string          `json:"startDate,omitempty"`
	EndDate   string          `json:"endDate,omitempty"`
	Status    EncounterStatus `json:"status"`
	Location  string          `json:"location,omitempty"`
	Provider  string          `json:"provider,omitempty"`
}
