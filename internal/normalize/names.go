package normalize

import (
	"regexp"
	"strings"

	"github.com/gyeh/chartmerge/internal/fhir"
)

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeName lowercases, collapses whitespace, and trims the input.
// Used as the fuzzy grouping key for records without a resolvable code.
// Returns "" for empty or whitespace-only input.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	return multiSpace.ReplaceAllString(s, " ")
}

// parseHumanName extracts first and last name from a patient's name
// records. The "official" record is preferred; structured given/family
// fields win over free text. Free text is parsed as "LAST, FIRST" when
// comma-delimited, otherwise as "First Middle Last" with the first token
// as given name and the remainder as family name. Missing data yields
// empty strings, never an error.
func parseHumanName(names []fhir.HumanName) (first, last string) {
	if len(names) == 0 {
		return "", ""
	}

	name := names[0]
	for _, n := range names {
		if n.Use == "official" {
			name = n
			break
		}
	}

	if name.Family != "" || len(name.Given) > 0 {
		return strings.TrimSpace(strings.Join(name.Given, " ")), strings.TrimSpace(name.Family)
	}
	return parseNameText(name.Text)
}

func parseNameText(text string) (first, last string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	if before, after, found := strings.Cut(text, ","); found {
		return strings.TrimSpace(after), strings.TrimSpace(before)
	}

	parts := strings.Fields(text)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// fullName joins the name parts, tolerating either being empty.
func fullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
