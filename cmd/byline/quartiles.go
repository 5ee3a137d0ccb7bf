package main

import (
	"fmt"
	"os"

	"github.com/matsen/byline/internal/quartile"
	"github.com/matsen/byline/internal/storage"
	"github.com/spf13/cobra"
)

var quartilesDBPath string

func init() {
	quartilesCmd.Flags().StringVar(&quartilesDBPath, "db", "", "Database path (default from config)")
	rootCmd.AddCommand(quartilesCmd)
}

var quartilesCmd = &cobra.Command{
	Use:   "quartiles <rankings.csv>",
	Short: "Match stored journals against a Scimago ranking export",
	Long: `Match the journals of stored publications against a Scimago CSV export
and tag publications with their journal's best quartile.

Journal names are matched case-insensitively, exact names first, then by
similarity with a 0.8 cutoff. Matches persist, so re-running with a new
export only resolves journals not seen before.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuartiles,
}

// QuartileResult reports one quartile matching run.
type QuartileResult struct {
	Rankings  int   `json:"rankings"`
	Journals  int   `json:"journals"`
	Exact     int   `json:"exact"`
	Fuzzy     int   `json:"fuzzy"`
	Unmatched int   `json:"unmatched"`
	Tagged    int64 `json:"publications_tagged"`
}

func runQuartiles(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer f.Close()

	rankings, err := quartile.ParseRankings(f)
	if err != nil {
		exitWithError(ExitDataError, "%s: %v", args[0], err)
	}
	if len(rankings) == 0 {
		exitWithError(ExitDataError, "%s contains no ranked journals", args[0])
	}

	db, err := storage.OpenDB(dbPath(quartilesDBPath))
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer db.Close()

	journals, err := db.DistinctJournals()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	known, err := db.KnownJournals()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	var pending []string
	for _, j := range journals {
		if !known[j] {
			pending = append(pending, j)
		}
	}

	result := QuartileResult{Rankings: len(rankings), Journals: len(journals)}

	if len(pending) > 0 {
		fmt.Fprintf(os.Stderr, "Matching %d journals against %d rankings...\n", len(pending), len(rankings))
		for _, m := range quartile.MatchAll(pending, rankings) {
			if err := db.SaveQuartileEntry(storage.QuartileEntry{
				Journal:  m.Journal,
				Matched:  m.Matched,
				Quartile: m.Quartile,
				Score:    m.Score,
				Exact:    m.Exact,
			}); err != nil {
				exitWithError(ExitError, "%v", err)
			}
			switch {
			case m.Exact:
				result.Exact++
			case m.Matched != "":
				result.Fuzzy++
			default:
				result.Unmatched++
			}
		}
	}

	// Publications ingested since the last run may use already-matched
	// journals, so tagging runs even when nothing new matched.
	result.Tagged, err = db.AttachQuartiles()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Printf("Matched %d journals against %d rankings\n", len(pending), result.Rankings)
	fmt.Printf("  Exact:     %d\n", result.Exact)
	fmt.Printf("  Fuzzy:     %d\n", result.Fuzzy)
	fmt.Printf("  Unmatched: %d\n", result.Unmatched)
	fmt.Printf("Tagged %d publications\n", result.Tagged)
	return nil
}
