// Package names normalizes raw author names into given-name keys for
// gender inference.
package names

import (
	"strings"
	"unicode/utf8"
)

// Given extracts the lowercased given-name token from a raw author name.
//
// Three forms are recognized:
//   - "Maria Lopez" or "Maria J Lopez" (given name first)
//   - "Lopez, Maria" (comma means "Last, Given")
//   - "Maria" (single token)
//
// Hyphenated names are kept whole ("anne-marie"). The second return value is
// false when no usable token exists: empty input, or an initial of a single
// character with or without a trailing period ("K", "K.").
func Given(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if comma := strings.Index(s, ","); comma != -1 {
		s = s[comma+1:]
	}

	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", false
	}

	tok := strings.ToLower(strings.Trim(fields[0], "."))
	if utf8.RuneCountInString(tok) <= 1 {
		return "", false
	}

	return tok, true
}
