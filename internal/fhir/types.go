// Package fhir holds the minimal FHIR R4 shapes the normalizers consume.
// Only the elements the pipeline reads are modeled; everything else in a
// source record survives unmodified inside the raw JSON pass-through.
// Date and dateTime elements stay strings because sources emit partial
// dates ("2019", "2019-03") that time.Time cannot represent.
package fhir

import "encoding/json"

// Coding is a code from a terminology system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Version string `json:"version,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept is a concept with free text and zero or more codings.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// HumanName carries either structured name parts or a free-text rendering.
type HumanName struct {
	Use    string   `json:"use,omitempty"` // usual | official | temp | nickname | ...
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

// ContactPoint is a phone number, email address, or similar.
type ContactPoint struct {
	System string `json:"system,omitempty"` // phone | fax | email | ...
	Value  string `json:"value,omitempty"`
	Use    string `json:"use,omitempty"`
}

// Address is a postal address.
type Address struct {
	Line       []string `json:"line,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Country    string   `json:"country,omitempty"`
}

// Reference points at another resource.
type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

// Period is a start/end time range.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Quantity is a measured amount.
type Quantity struct {
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`
	Code  string   `json:"code,omitempty"`
}

// Age is a duration-of-life quantity, used for condition onset.
type Age struct {
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`
}

// Repeat is the structured recurrence part of a Timing.
type Repeat struct {
	Frequency  int      `json:"frequency,omitempty"`
	Period     *float64 `json:"period,omitempty"`
	PeriodUnit string   `json:"periodUnit,omitempty"` // s | min | h | d | wk | mo | a
}

// Timing describes when a medication should be taken.
type Timing struct {
	Repeat *Repeat          `json:"repeat,omitempty"`
	Code   *CodeableConcept `json:"code,omitempty"`
}

// DoseAndRate is one dose entry of a dosage instruction.
type DoseAndRate struct {
	DoseQuantity *Quantity `json:"doseQuantity,omitempty"`
}

// Dosage is a medication dosage instruction.
type Dosage struct {
	Text               string           `json:"text,omitempty"`
	PatientInstruction string           `json:"patientInstruction,omitempty"`
	Timing             *Timing          `json:"timing,omitempty"`
	Route              *CodeableConcept `json:"route,omitempty"`
	DoseAndRate        []DoseAndRate    `json:"doseAndRate,omitempty"`
}

// Bundle is a FHIR searchset or collection bundle.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

// BundleEntry holds one resource; it stays raw so each resource type can be
// decoded by the normalizer that understands it.
type BundleEntry struct {
	Resource json.RawMessage `json:"resource"`
}

// Resources returns the raw resource payloads of a bundle, skipping empty
// entries. A nil bundle yields nil.
func (b *Bundle) Resources() []json.RawMessage {
	if b == nil {
		return nil
	}
	out := make([]json.RawMessage, 0, len(b.Entry))
	for _, e := range b.Entry {
		if len(e.Resource) > 0 {
			out = append(out, e.Resource)
		}
	}
	return out
}
