package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9.]`)

// NormalizeCode trims whitespace, uppercases, and strips characters that
// are neither alphanumeric nor a dot (ICD-10 codes keep their dot).
// Returns "" if nothing usable remains.
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(s), "")
}
