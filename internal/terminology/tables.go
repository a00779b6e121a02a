package terminology

import (
	"strings"

	"github.com/gyeh/chartmerge/internal/model"
)

// CodeInfo is the resolved human-readable view of one clinical code.
type CodeInfo struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Tables holds the bundled read-only reference data, one table per
// terminology system, plus the NDC→RxNorm and SNOMED→ICD-10 crosswalks.
// A Tables value is constructed once at startup and never mutated after,
// so concurrent reads need no locking.
type Tables struct {
	loinc  map[string]CodeInfo
	rxnorm map[string]CodeInfo
	icd10  map[string]CodeInfo
	cpt    map[string]CodeInfo

	ndcToRxNorm   map[string]string
	snomedToICD10 map[string]string
	drugClass     map[string]string
}

// Lookup resolves a code against the bundled table for its system.
// SNOMED codes resolve through the ICD-10 crosswalk; NDC codes through the
// RxNorm crosswalk. Returns nil when the table has no entry.
func (t *Tables) Lookup(code string, system model.CodeSystem) *CodeInfo {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	switch system {
	case model.CodeSystemLOINC:
		return t.get(t.loinc, code)
	case model.CodeSystemRxNorm:
		return t.get(t.rxnorm, code)
	case model.CodeSystemICD10:
		return t.get(t.icd10, strings.ToUpper(code))
	case model.CodeSystemCPT:
		return t.get(t.cpt, code)
	case model.CodeSystemSNOMED:
		if icd, ok := t.snomedToICD10[code]; ok {
			return t.get(t.icd10, icd)
		}
		return nil
	case model.CodeSystemNDC:
		if rx, ok := t.ndcToRxNorm[code]; ok {
			return t.get(t.rxnorm, rx)
		}
		return nil
	default:
		return nil
	}
}

// RxNormFromNDC returns the RxNorm cross-reference for an NDC code, or "".
func (t *Tables) RxNormFromNDC(ndc string) string {
	return t.ndcToRxNorm[strings.TrimSpace(ndc)]
}

// ICD10FromSNOMED returns the ICD-10 cross-reference for a SNOMED code, or "".
func (t *Tables) ICD10FromSNOMED(sct string) string {
	return t.snomedToICD10[strings.TrimSpace(sct)]
}

// DrugClass returns the therapeutic class for an RxNorm code, or "".
func (t *Tables) DrugClass(rxcui string) string {
	return t.drugClass[strings.TrimSpace(rxcui)]
}

func (t *Tables) get(m map[string]CodeInfo, code string) *CodeInfo {
	if info, ok := m[code]; ok {
		c := info
		return &c
	}
	return nil
}

// DefaultTables returns the bundled reference data. Entries cover the codes
// most frequently seen across connected sources; anything absent falls
// through to the cache and external tiers at lookup time.
func DefaultTables() *Tables {
	return &Tables{
		loinc: map[string]CodeInfo{
			"2345-7":  {Name: "Glucose [Mass/volume] in Serum or Plasma", Category: "Chemistry"},
			"2160-0":  {Name: "Creatinine [Mass/volume] in Serum or Plasma", Category: "Chemistry"},
			"3094-0":  {Name: "Urea nitrogen [Mass/volume] in Serum or Plasma", Category: "Chemistry"},
			"2951-2":  {Name: "Sodium [Moles/volume] in Serum or Plasma", Category: "Chemistry"},
			"2823-3":  {Name: "Potassium [Moles/volume] in Serum or Plasma", Category: "Chemistry"},
			"17861-6": {Name: "Calcium [Mass/volume] in Serum or Plasma", Category: "Chemistry"},
			"1975-2":  {Name: "Bilirubin.total [Mass/volume] in Serum or Plasma", Category: "Chemistry"},
			"4548-4":  {Name: "Hemoglobin A1c/Hemoglobin.total in Blood", Category: "Chemistry"},
			"718-7":   {Name: "Hemoglobin [Mass/volume] in Blood", Category: "Hematology"},
			"789-8":   {Name: "Erythrocytes [#/volume] in Blood by Automated count", Category: "Hematology"},
			"6690-2":  {Name: "Leukocytes [#/volume] in Blood by Automated count", Category: "Hematology"},
			"777-3":   {Name: "Platelets [#/volume] in Blood by Automated count", Category: "Hematology"},
			"2093-3":  {Name: "Cholesterol [Mass/volume] in Serum or Plasma", Category: "Lipids"},
			"2571-8":  {Name: "Triglyceride [Mass/volume] in Serum or Plasma", Category: "Lipids"},
			"2085-9":  {Name: "Cholesterol in HDL [Mass/volume] in Serum or Plasma", Category: "Lipids"},
			"13457-7": {Name: "Cholesterol in LDL [Mass/volume] in Serum or Plasma by calculation", Category: "Lipids"},
			"8867-4":  {Name: "Heart rate", Category: "Vital Signs"},
			"8310-5":  {Name: "Body temperature", Category: "Vital Signs"},
			"8302-2":  {Name: "Body height", Category: "Vital Signs"},
			"29463-7": {Name: "Body weight", Category: "Vital Signs"},
			"39156-5": {Name: "Body mass index (BMI) [Ratio]", Category: "Vital Signs"},
			"85354-9": {Name: "Blood pressure panel with all children optional", Category: "Vital Signs"},
			"3016-3":  {Name: "Thyrotropin [Units/volume] in Serum or Plasma", Category: "Chemistry"},
			"1742-6":  {Name: "Alanine aminotransferase [Enzymatic activity/volume] in Serum or Plasma", Category: "Chemistry"},
			"1920-8":  {Name: "Aspartate aminotransferase [Enzymatic activity/volume] in Serum or Plasma", Category: "Chemistry"},
		},
		rxnorm: map[string]CodeInfo{
			"197361":  {Name: "Amlodipine 5 MG Oral Tablet", Category: "Calcium Channel Blocker"},
			"314076":  {Name: "Lisinopril 10 MG Oral Tablet", Category: "ACE Inhibitor"},
			"860975":  {Name: "Metformin hydrochloride 1000 MG Oral Tablet", Category: "Biguanide"},
			"861007":  {Name: "Metformin hydrochloride 500 MG Oral Tablet", Category: "Biguanide"},
			"617312":  {Name: "Atorvastatin 20 MG Oral Tablet", Category: "Statin"},
			"617314":  {Name: "Atorvastatin 40 MG Oral Tablet", Category: "Statin"},
			"312961":  {Name: "Simvastatin 20 MG Oral Tablet", Category: "Statin"},
			"197696":  {Name: "Furosemide 40 MG Oral Tablet", Category: "Loop Diuretic"},
			"199247":  {Name: "Levothyroxine Sodium 0.05 MG Oral Tablet", Category: "Thyroid Hormone"},
			"308136":  {Name: "Amoxicillin 500 MG Oral Capsule", Category: "Penicillin Antibiotic"},
			"313782":  {Name: "Acetaminophen 325 MG Oral Tablet", Category: "Analgesic"},
			"310965":  {Name: "Ibuprofen 200 MG Oral Tablet", Category: "NSAID"},
			"855332":  {Name: "Warfarin Sodium 5 MG Oral Tablet", Category: "Anticoagulant"},
			"1049683": {Name: "Oxycodone Hydrochloride 10 MG Oral Tablet", Category: "Opioid Analgesic"},
			"866924":  {Name: "Metoprolol succinate 50 MG Extended Release Oral Tablet", Category: "Beta Blocker"},
			"311036":  {Name: "Omeprazole 20 MG Delayed Release Oral Capsule", Category: "Proton Pump Inhibitor"},
		},
		icd10: map[string]CodeInfo{
			"E11.9":   {Name: "Type 2 diabetes mellitus without complications", Category: "Endocrine"},
			"I10":     {Name: "Essential (primary) hypertension", Category: "Circulatory"},
			"E78.5":   {Name: "Hyperlipidemia, unspecified", Category: "Endocrine"},
			"J45.909": {Name: "Unspecified asthma, uncomplicated", Category: "Respiratory"},
			"J44.9":   {Name: "Chronic obstructive pulmonary disease, unspecified", Category: "Respiratory"},
			"M54.5":   {Name: "Low back pain", Category: "Musculoskeletal"},
			"F41.9":   {Name: "Anxiety disorder, unspecified", Category: "Mental Health"},
			"F32.9":   {Name: "Major depressive disorder, single episode, unspecified", Category: "Mental Health"},
			"K21.9":   {Name: "Gastro-esophageal reflux disease without esophagitis", Category: "Digestive"},
			"N39.0":   {Name: "Urinary tract infection, site not specified", Category: "Genitourinary"},
			"J06.9":   {Name: "Acute upper respiratory infection, unspecified", Category: "Respiratory"},
			"I25.10":  {Name: "Atherosclerotic heart disease of native coronary artery without angina pectoris", Category: "Circulatory"},
			"E03.9":   {Name: "Hypothyroidism, unspecified", Category: "Endocrine"},
			"G43.909": {Name: "Migraine, unspecified, not intractable, without status migrainosus", Category: "Nervous System"},
			"D64.9":   {Name: "Anemia, unspecified", Category: "Blood"},
		},
		cpt: map[string]CodeInfo{
			"99213": {Name: "Office or other outpatient visit, established patient, low complexity", Category: "Evaluation and Management"},
			"99214": {Name: "Office or other outpatient visit, established patient, moderate complexity", Category: "Evaluation and Management"},
			"80053": {Name: "Comprehensive metabolic panel", Category: "Laboratory"},
			"85025": {Name: "Complete blood count with automated differential", Category: "Laboratory"},
			"93000": {Name: "Electrocardiogram, routine, with interpretation and report", Category: "Cardiology"},
		},
		ndcToRxNorm: map[string]string{
			"00093731001": "197361",
			"68180051301": "314076",
			"00093104801": "860975",
			"00071015523": "617312",
			"00054435725": "197696",
		},
		snomedToICD10: map[string]string{
			"44054006":  "E11.9",
			"38341003":  "I10",
			"55822004":  "E78.5",
			"195967001": "J45.909",
			"13645005":  "J44.9",
			"279039007": "M54.5",
			"197480006": "F41.9",
			"370143000": "F32.9",
			"235595009": "K21.9",
			"68566005":  "N39.0",
			"40930008":  "E03.9",
			"37796009":  "G43.909",
			"271737000": "D64.9",
		},
		drugClass: map[string]string{
			"197361":  "Calcium Channel Blocker",
			"314076":  "ACE Inhibitor",
			"860975":  "Biguanide",
			"861007":  "Biguanide",
			"617312":  "Statin",
			"617314":  "Statin",
			"312961":  "Statin",
			"197696":  "Loop Diuretic",
			"199247":  "Thyroid Hormone",
			"308136":  "Penicillin Antibiotic",
			"313782":  "Analgesic",
			"310965":  "NSAID",
			"855332":  "Anticoagulant",
			"1049683": "Opioid Analgesic",
			"866924":  "Beta Blocker",
			"311036":  "Proton Pump Inhibitor",
		},
	}
}

// Merge overlays supplemental reference rows (e.g. loaded from a refdata
// file) onto the bundled tables. Later rows win on key collision.
func (t *Tables) Merge(rows []RefRow) {
	for _, r := range rows {
		info := CodeInfo{Name: r.Display, Category: r.Category}
		switch Classify(r.System) {
		case model.CodeSystemLOINC:
			t.loinc[r.Code] = info
		case model.CodeSystemRxNorm:
			t.rxnorm[r.Code] = info
			if r.Category != "" {
				t.drugClass[r.Code] = r.Category
			}
		case model.CodeSystemICD10:
			t.icd10[strings.ToUpper(r.Code)] = info
		case model.CodeSystemCPT:
			t.cpt[r.Code] = info
		}
	}
}

// RefRow is one supplemental reference-table row.
type RefRow struct {
	System   string `parquet:"system"`
	Code     string `parquet:"code"`
	Display  string `parquet:"display"`
	Category string `parquet:"category,optional"`
}
