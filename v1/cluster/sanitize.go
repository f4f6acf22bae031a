package cluster

import "regexp"

// ASCII whitespace including vertical tab; RE2's \s alone omits \v.
var specialChars = regexp.MustCompile(`[^a-zA-Z0-9\s\v]`)

// SanitizeID derives a registry key from a raw cluster name by replacing
// every character outside letters, digits and ASCII whitespace
// (space, \t, \n, \v, \f, \r) with an underscore.
//
// The mapping is lossy: "a:b" and "a.b" both become "a_b".
func SanitizeID(raw string) string {
	return specialChars.ReplaceAllString(raw, "_")
}
