package fhir

// Patient is the demographics resource.
type Patient struct {
	ResourceType string         `json:"resourceType,omitempty"`
	ID           string         `json:"id,omitempty"`
	Name         []HumanName    `json:"name,omitempty"`
	Gender       string         `json:"gender,omitempty"`
	BirthDate    string         `json:"birthDate,omitempty"`
	Telecom      []ContactPoint `json:"telecom,omitempty"`
	Address      []Address      `json:"address,omitempty"`
}

// DispenseRequest is the fulfillment part of a MedicationRequest.
type DispenseRequest struct {
	NumberOfRepeatsAllowed *int      `json:"numberOfRepeatsAllowed,omitempty"`
	Quantity               *Quantity `json:"quantity,omitempty"`
	ExpectedSupplyDuration *Quantity `json:"expectedSupplyDuration,omitempty"`
}

// MedicationRequest is a medication order.
type MedicationRequest struct {
	ResourceType               string           `json:"resourceType,omitempty"`
	ID                         string           `json:"id,omitempty"`
	Status                     string           `json:"status,omitempty"`
	Intent                     string           `json:"intent,omitempty"`
	MedicationCodeableConcept  *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	MedicationReference        *Reference       `json:"medicationReference,omitempty"`
	AuthoredOn                 string           `json:"authoredOn,omitempty"`
	Requester                  *Reference       `json:"requester,omitempty"`
	DosageInstruction          []Dosage         `json:"dosageInstruction,omitempty"`
	DispenseRequest            *DispenseRequest `json:"dispenseRequest,omitempty"`
}

// Condition is a problem, diagnosis, or health concern.
type Condition struct {
	ResourceType       string            `json:"resourceType,omitempty"`
	ID                 string            `json:"id,omitempty"`
	ClinicalStatus     *CodeableConcept  `json:"clinicalStatus,omitempty"`
	VerificationStatus *CodeableConcept  `json:"verificationStatus,omitempty"`
	Category           []CodeableConcept `json:"category,omitempty"`
	Severity           *CodeableConcept  `json:"severity,omitempty"`
	Code               *CodeableConcept  `json:"code,omitempty"`
	OnsetDateTime      string            `json:"onsetDateTime,omitempty"`
	OnsetPeriod        *Period           `json:"onsetPeriod,omitempty"`
	OnsetAge           *Age              `json:"onsetAge,omitempty"`
	OnsetString        string            `json:"onsetString,omitempty"`
	RecordedDate       string            `json:"recordedDate,omitempty"`
}

// ReferenceRange is a normal range for an observation value.
type ReferenceRange struct {
	Low  *Quantity `json:"low,omitempty"`
	High *Quantity `json:"high,omitempty"`
	Text string    `json:"text,omitempty"`
}

// Observation is a lab result or other measurement.
type Observation struct {
	ResourceType      string            `json:"resourceType,omitempty"`
	ID                string            `json:"id,omitempty"`
	Status            string            `json:"status,omitempty"`
	Code              *CodeableConcept  `json:"code,omitempty"`
	EffectiveDateTime string            `json:"effectiveDateTime,omitempty"`
	EffectivePeriod   *Period           `json:"effectivePeriod,omitempty"`
	Issued            string            `json:"issued,omitempty"`
	ValueQuantity     *Quantity         `json:"valueQuantity,omitempty"`
	ValueString       string            `json:"valueString,omitempty"`
	Interpretation    []CodeableConcept `json:"interpretation,omitempty"`
	ReferenceRange    []ReferenceRange  `json:"referenceRange,omitempty"`
}

// EncounterLocation is one location entry of an encounter.
type EncounterLocation struct {
	Location Reference `json:"location"`
}

// EncounterParticipant is one participant entry of an encounter.
type EncounterParticipant struct {
	Individual *Reference `json:"individual,omitempty"`
}

// Encounter is a patient visit.
type Encounter struct {
	ResourceType string                 `json:"resourceType,omitempty"`
	ID           string                 `json:"id,omitempty"`
	Status       string                 `json:"status,omitempty"`
	Class        *Coding                `json:"class,omitempty"`
	Type         []CodeableConcept      `json:"type,omitempty"`
	Period       *Period                `json:"period,omitempty"`
	Location     []EncounterLocation    `json:"location,omitempty"`
	Participant  []EncounterParticipant `json:"participant,omitempty"`
}
