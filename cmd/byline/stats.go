package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matsen/byline/internal/bootstrap"
	"github.com/matsen/byline/internal/stats"
	"github.com/matsen/byline/internal/storage"
	"github.com/spf13/cobra"
)

var (
	statsDBPath     string
	statsGroupBy    string
	statsPeriods    string
	statsIterations int
	statsSeed       int64
	statsCSV        bool
)

func init() {
	statsCmd.Flags().StringVar(&statsDBPath, "db", "", "Database path (default from config)")
	statsCmd.Flags().StringVar(&statsGroupBy, "group-by", "", "Comma-separated grouping dimensions (position, dataset, year, period, quartile)")
	statsCmd.Flags().StringVar(&statsPeriods, "periods", "", "Comma-separated year ranges like 2018-2019,2020-2021")
	statsCmd.Flags().IntVar(&statsIterations, "iterations", bootstrap.DefaultIterations, "Bootstrap resamples per group")
	statsCmd.Flags().Int64Var(&statsSeed, "seed", 0, "Random seed (0 seeds from the clock)")
	statsCmd.Flags().BoolVar(&statsCSV, "csv", false, "Write rows as CSV")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Estimate gender representation across stored bylines",
	Long: `Estimate the proportion of women among authors, overall or grouped by
byline position, dataset, year, year period, or journal quartile.

Each group's estimate is a bootstrap over the female probabilities of
its author-position pairs, reported as the mean with a 95% confidence
interval. Authors without a resolved binary gender are excluded.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	var groupBy []string
	for _, dim := range strings.Split(statsGroupBy, ",") {
		if dim = strings.TrimSpace(dim); dim != "" {
			groupBy = append(groupBy, dim)
		}
	}

	var periods []stats.Period
	if statsPeriods != "" {
		var err error
		periods, err = stats.ParsePeriods(statsPeriods)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if !contains(groupBy, "period") {
			groupBy = append(groupBy, "period")
		}
	}

	db, err := storage.OpenDB(dbPath(statsDBPath))
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer db.Close()

	opts := stats.Options{
		GroupBy:    groupBy,
		Periods:    periods,
		Iterations: statsIterations,
		Seed:       statsSeed,
	}
	rows, err := stats.Sweep(db, opts)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if statsCSV {
		if err := writeStatsCSV(os.Stdout, groupBy, rows); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		return nil
	}
	if jsonOutput {
		return outputJSON(rows)
	}

	dims := activeDimensions(groupBy)
	for _, row := range rows {
		var parts []string
		for _, dim := range dims {
			parts = append(parts, dim+"="+dimValue(row, dim))
		}
		label := "overall"
		if len(parts) > 0 {
			label = strings.Join(parts, " ")
		}
		if row.Mean == nil {
			fmt.Printf("%s: no data (n=%d)\n", label, row.N)
			continue
		}
		fmt.Printf("%s: mean=%.4f CI[%.4f, %.4f] n=%d\n", label, *row.Mean, *row.CILower, *row.CIUpper, row.N)
	}
	return nil
}

// writeStatsCSV writes one row per group with dimension columns in sweep
// order followed by the estimate columns.
func writeStatsCSV(w io.Writer, groupBy []string, rows []stats.Row) error {
	cw := csv.NewWriter(w)
	dims := activeDimensions(groupBy)

	header := append(append([]string{}, dims...), "mean", "ci_lower", "ci_upper", "n")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := make([]string, 0, len(header))
		for _, dim := range dims {
			rec = append(rec, dimValue(row, dim))
		}
		rec = append(rec, formatEstimate(row.Mean), formatEstimate(row.CILower), formatEstimate(row.CIUpper), strconv.Itoa(row.N))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// activeDimensions filters groupBy to valid dimensions in sweep order.
func activeDimensions(groupBy []string) []string {
	var dims []string
	for _, dim := range stats.Dimensions {
		if contains(groupBy, dim) {
			dims = append(dims, dim)
		}
	}
	return dims
}

func dimValue(row stats.Row, dim string) string {
	switch dim {
	case "position":
		return row.Position
	case "dataset":
		return row.Dataset
	case "year":
		return strconv.Itoa(row.Year)
	case "period":
		return row.Period
	case "quartile":
		return row.Quartile
	}
	return ""
}

func formatEstimate(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 6, 64)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
