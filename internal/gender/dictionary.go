package gender

import (
	_ "embed"
	"strings"
)

//go:embed names.txt
var dictData string

// Dictionary is the offline tier: a static table of common given names.
// Labels are male, female, mostly_male, mostly_female, and andy (ambiguous).
type Dictionary struct {
	labels map[string]string
}

// NewDictionary parses the embedded name table.
func NewDictionary() *Dictionary {
	return parseDictionary(dictData)
}

// parseDictionary reads "name label" pairs, one per line. Blank lines and
// lines starting with # are skipped.
func parseDictionary(data string) *Dictionary {
	labels := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		labels[strings.ToLower(fields[0])] = fields[1]
	}
	return &Dictionary{labels: labels}
}

// Lookup resolves a lowercased name against the table. ok is false when the
// name is absent or ambiguous, which sends the chain to the next tier.
func (d *Dictionary) Lookup(name string) (Result, bool) {
	switch d.labels[name] {
	case "male":
		return Result{Gender: Male, PFemale: ptr(0.0), Source: SourceDictionary}, true
	case "female":
		return Result{Gender: Female, PFemale: ptr(1.0), Source: SourceDictionary}, true
	case "mostly_male":
		return Result{Gender: Male, PFemale: ptr(0.25), Source: SourceDictionary}, true
	case "mostly_female":
		return Result{Gender: Female, PFemale: ptr(0.75), Source: SourceDictionary}, true
	}
	return Result{}, false
}

// Len returns the number of table entries.
func (d *Dictionary) Len() int {
	return len(d.labels)
}
