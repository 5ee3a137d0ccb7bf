// Package stats runs grouped bootstrap estimates over the stored corpus.
package stats

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/byline/internal/bootstrap"
	"github.com/matsen/byline/internal/storage"
)

// Dimensions are the valid grouping keys, in sweep order.
var Dimensions = []string{"position", "dataset", "year", "period", "quartile"}

// ValidDimension reports whether name is a grouping key Sweep understands.
func ValidDimension(name string) bool {
	for _, d := range Dimensions {
		if name == d {
			return true
		}
	}
	return false
}

// Period is an inclusive year range with a display name.
type Period struct {
	Name string
	From int
	To   int
}

// ParsePeriods parses a comma-separated list of year ranges like
// "2018-2019,2020-2021". A bare year is a one-year range.
func ParsePeriods(s string) ([]Period, error) {
	var periods []Period
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		p := Period{Name: tok}
		if i := strings.Index(tok, "-"); i >= 0 {
			from, err := strconv.Atoi(strings.TrimSpace(tok[:i]))
			if err != nil {
				return nil, fmt.Errorf("invalid year range %q: %w", tok, err)
			}
			to, err := strconv.Atoi(strings.TrimSpace(tok[i+1:]))
			if err != nil {
				return nil, fmt.Errorf("invalid year range %q: %w", tok, err)
			}
			if from > to {
				return nil, fmt.Errorf("invalid year range %q: starts after it ends", tok)
			}
			p.From, p.To = from, to
		} else {
			year, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q: %w", tok, err)
			}
			p.From, p.To = year, year
		}
		periods = append(periods, p)
	}
	if len(periods) == 0 {
		return nil, errors.New("no year ranges given")
	}
	return periods, nil
}

// Row is one sweep cell: the estimate for one combination of grouping
// values. Inactive dimensions stay at their zero value and are omitted
// from JSON.
type Row struct {
	Position string `json:"position,omitempty"`
	Dataset  string `json:"dataset,omitempty"`
	Year     int    `json:"year,omitempty"`
	Period   string `json:"period,omitempty"`
	Quartile string `json:"quartile,omitempty"`
	bootstrap.Result
}

// Options configures a sweep.
type Options struct {
	GroupBy    []string // grouping keys; empty means one overall estimate
	Periods    []Period // required when grouping by period
	Iterations int
	Seed       int64 // 0 means time-seeded
}

type cell struct {
	row     Row
	filters storage.Filters
}

// Sweep runs one bootstrap estimate per combination of the requested
// grouping dimensions. Dimensions cross in a fixed order (position, dataset,
// year or period, quartile) with values sorted, so output order is stable.
// Combinations without data come back as rows with N=0 and nil estimates.
func Sweep(db *storage.DB, opts Options) ([]Row, error) {
	active := make(map[string]bool, len(opts.GroupBy))
	for _, dim := range opts.GroupBy {
		if !ValidDimension(dim) {
			return nil, fmt.Errorf("unknown dimension %q (valid: %s)", dim, strings.Join(Dimensions, ", "))
		}
		active[dim] = true
	}
	if active["period"] && len(opts.Periods) == 0 {
		return nil, errors.New("period grouping requires year ranges")
	}
	if active["year"] && active["period"] {
		return nil, errors.New("year and period grouping are mutually exclusive")
	}

	cells := []cell{{}}

	if active["position"] {
		positions, err := db.DistinctPositions()
		if err != nil {
			return nil, err
		}
		cells = expand(cells, len(positions), func(c *cell, i int) {
			c.row.Position = positions[i]
			c.filters.Position = positions[i]
		})
	}
	if active["dataset"] {
		datasets, err := db.DistinctDatasets()
		if err != nil {
			return nil, err
		}
		cells = expand(cells, len(datasets), func(c *cell, i int) {
			c.row.Dataset = datasets[i]
			c.filters.Dataset = datasets[i]
		})
	}
	if active["year"] {
		years, err := db.DistinctYears()
		if err != nil {
			return nil, err
		}
		cells = expand(cells, len(years), func(c *cell, i int) {
			c.row.Year = years[i]
			c.filters.Year = years[i]
		})
	}
	if active["period"] {
		cells = expand(cells, len(opts.Periods), func(c *cell, i int) {
			c.row.Period = opts.Periods[i].Name
			c.filters.YearFrom = opts.Periods[i].From
			c.filters.YearTo = opts.Periods[i].To
		})
	}
	if active["quartile"] {
		quartiles, err := db.DistinctQuartiles()
		if err != nil {
			return nil, err
		}
		cells = expand(cells, len(quartiles), func(c *cell, i int) {
			c.row.Quartile = quartiles[i]
			c.filters.Quartile = quartiles[i]
		})
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	rows := make([]Row, 0, len(cells))
	for _, c := range cells {
		probs, err := db.Probabilities(c.filters)
		if err != nil {
			return nil, err
		}
		c.row.Result = bootstrap.Estimate(probs, opts.Iterations, rng)
		rows = append(rows, c.row)
	}
	return rows, nil
}

// expand crosses the current cells with n values of one dimension.
func expand(cells []cell, n int, apply func(c *cell, i int)) []cell {
	out := make([]cell, 0, len(cells)*n)
	for _, c := range cells {
		for i := 0; i < n; i++ {
			next := c
			apply(&next, i)
			out = append(out, next)
		}
	}
	return out
}
