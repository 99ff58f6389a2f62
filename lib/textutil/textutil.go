package textutil

import (
	"strings"
)

// NormalizeLabel turns a scraped detail-field label into its lookup
// form: trailing colon removed, surrounding whitespace trimmed,
// uppercased. "Customs Release:" and "CUSTOMS RELEASE" normalize to
// the same key.
func NormalizeLabel(label string) string {
	label = strings.Trim(label, " \n\t")
	label = strings.TrimSuffix(label, ":")
	return strings.ToUpper(strings.Trim(label, " \n\t"))
}

// ContainsAny reports whether s contains any of the given substrings,
// case-insensitively.
func ContainsAny(s string, substrings ...string) bool {
	s = strings.ToUpper(s)
	for _, sub := range substrings {
		if strings.Contains(s, strings.ToUpper(sub)) {
			return true
		}
	}
	return false
}
