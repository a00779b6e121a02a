package model

// CodeSystem identifies the terminology system a clinical code belongs to.
// Unknown is a real member, not an absence: every canonical record carries
// one of these values so consumers can switch exhaustively.
type CodeSystem string

const (
	CodeSystemLOINC   CodeSystem = "LOINC"
	CodeSystemRxNorm  CodeSystem = "RXNORM"
	CodeSystemICD10   CodeSystem = "ICD10"
	CodeSystemSNOMED  CodeSystem = "SNOMED"
	CodeSystemCPT     CodeSystem = "CPT"
	CodeSystemNDC     CodeSystem = "NDC"
	CodeSystemUnknown CodeSystem = "UNKNOWN"
)

// AllCodeSystems lists the recognized terminology systems in canonical order.
var AllCodeSystems = []CodeSystem{
	CodeSystemLOINC,
	CodeSystemRxNorm,
	CodeSystemICD10,
	CodeSystemSNOMED,
	CodeSystemCPT,
	CodeSystemNDC,
}

func (c CodeSystem) String() string {
	return string(c)
}
