// Package record parses publication records from fetch export files.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	// Try int directly
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*f = FlexibleString(strconv.Itoa(i))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// Publication is one bibliographic record from an export file. Authors holds
// the raw display names in byline order ("Given Last" per PubMed convention,
// "Last, Given" tolerated downstream).
type Publication struct {
	ExternalID string
	Title      string
	Year       int
	Journal    string
	Authors    []string
}

// exportEntry mirrors one element of an export JSON array. Fetch scripts are
// inconsistent about whether identifiers and years are strings or numbers.
type exportEntry struct {
	ExternalID FlexibleString `json:"external_id"`
	Title      string         `json:"title"`
	Year       FlexibleString `json:"year"`
	Journal    string         `json:"journal"`
	Authors    []string       `json:"authors"`
}

// ParseExport parses a JSON export (an array of publication records) and
// returns the valid records plus one error per rejected entry. A rejected
// entry never aborts the batch.
func ParseExport(data []byte) ([]Publication, []error) {
	var entries []exportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing export JSON: %w", err)}
	}

	var pubs []Publication
	var errs []error

	for i, entry := range entries {
		pub, err := entryToPublication(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.ExternalID, err))
			continue
		}
		pubs = append(pubs, pub)
	}

	return pubs, errs
}

// entryToPublication converts one export entry, validating required fields.
func entryToPublication(entry exportEntry) (Publication, error) {
	if entry.ExternalID.String() == "" {
		return Publication{}, fmt.Errorf("missing required field 'external_id'")
	}
	if entry.Year.String() == "" {
		return Publication{}, fmt.Errorf("missing required field 'year'")
	}

	year, err := strconv.Atoi(entry.Year.String())
	if err != nil {
		return Publication{}, fmt.Errorf("invalid year: %s", entry.Year.String())
	}

	return Publication{
		ExternalID: entry.ExternalID.String(),
		Title:      entry.Title,
		Year:       year,
		Journal:    entry.Journal,
		Authors:    entry.Authors,
	}, nil
}
