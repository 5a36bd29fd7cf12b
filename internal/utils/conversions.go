package utils

import "strings"

// StripPrefixes removes every occurrence of each prefix from s, in order.
func StripPrefixes(s string, prefixes ...string) string {
	for _, p := range prefixes {
		s = strings.ReplaceAll(s, p, "")
	}
	return s
}
