package gender

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	pairRe          = regexp.MustCompile(`(?i)"([^"]+)"\s*:\s*"(male|female|unknown)"`)
)

// ParseMapping extracts a name-to-label mapping from a model response,
// trying progressively more tolerant strategies:
//
//  1. strict parse of the whole trimmed response
//  2. strict parse of the contents of a fenced code block
//  3. repair of trailing commas, then re-parse
//  4. regex extraction of individual "name": "label" pairs
//
// Keys are lowercased. Values other than male, female, and unknown are
// dropped, leaving their names unresolved.
func ParseMapping(text string) map[string]string {
	trimmed := strings.TrimSpace(text)

	if m, err := parseStrict(trimmed); err == nil {
		return m
	}

	candidate := trimmed
	if block := extractFencedBlock(trimmed); block != "" {
		candidate = block
		if m, err := parseStrict(candidate); err == nil {
			return m
		}
	}

	if m, err := parseStrict(repairJSON(candidate)); err == nil {
		return m
	}

	return extractPairs(text)
}

// parseStrict unmarshals a flat JSON object, keeping recognized labels.
func parseStrict(text string) (map[string]string, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}

	m := make(map[string]string, len(raw))
	for k, v := range raw {
		label := strings.ToLower(strings.TrimSpace(v))
		switch label {
		case "male", "female", "unknown":
			m[strings.ToLower(strings.TrimSpace(k))] = label
		}
	}
	return m, nil
}

// extractFencedBlock returns the contents of the first ``` fenced block,
// tolerating a language tag and prose around the fence. Empty when the text
// has no usable fence.
func extractFencedBlock(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return ""
	}
	rest := text[start+3:]

	// Drop the rest of the fence line (language tag or nothing)
	nl := strings.Index(rest, "\n")
	if nl == -1 {
		return ""
	}
	rest = rest[nl+1:]

	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// repairJSON clamps the text to its outermost object and removes trailing
// commas before closing braces and brackets.
func repairJSON(text string) string {
	if i := strings.Index(text, "{"); i >= 0 {
		if j := strings.LastIndex(text, "}"); j > i {
			text = text[i : j+1]
		}
	}
	return trailingCommaRe.ReplaceAllString(text, "$1")
}

// extractPairs scavenges individual name/label pairs from otherwise
// unparseable output.
func extractPairs(text string) map[string]string {
	matches := pairRe.FindAllStringSubmatch(text, -1)
	m := make(map[string]string, len(matches))
	for _, match := range matches {
		m[strings.ToLower(match[1])] = strings.ToLower(match[2])
	}
	return m
}
