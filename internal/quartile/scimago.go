// Package quartile parses Scimago journal rankings and matches corpus
// journal names against them.
package quartile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Ranking is one ranked journal from a Scimago CSV export.
type Ranking struct {
	Title    string
	Norm     string // normalized title, the matching key
	Quartile string
}

// ParseRankings reads a Scimago CSV export (';'-separated, one header row)
// and returns the journals ranked Q1 through Q4. Unranked rows and rows too
// short to carry both columns are skipped.
func ParseRankings(r io.Reader) ([]Ranking, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	titleIdx, quartileIdx := -1, -1
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		switch {
		case strings.EqualFold(col, "Title"):
			titleIdx = i
		case strings.EqualFold(col, "SJR Best Quartile"):
			quartileIdx = i
		}
	}
	if titleIdx < 0 || quartileIdx < 0 {
		return nil, fmt.Errorf("header missing Title or SJR Best Quartile column: %v", header)
	}

	var rankings []Ranking
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if len(rec) <= titleIdx || len(rec) <= quartileIdx {
			continue
		}

		title := strings.TrimSpace(rec[titleIdx])
		if title == "" {
			continue
		}
		quartile := strings.TrimSpace(rec[quartileIdx])
		switch quartile {
		case "Q1", "Q2", "Q3", "Q4":
		default:
			continue
		}

		rankings = append(rankings, Ranking{Title: title, Norm: Normalize(title), Quartile: quartile})
	}
	return rankings, nil
}
