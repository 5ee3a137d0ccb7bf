package main

import (
	"fmt"
	"sort"

	"github.com/matsen/byline/internal/storage"
	"github.com/spf13/cobra"
)

var summaryDBPath string

func init() {
	summaryCmd.Flags().StringVar(&summaryDBPath, "db", "", "Database path (default from config)")
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show corpus counts",
	Long:  `Show how many publications, authors, and byline links are stored, broken down by dataset, year, gender, source, and position.`,
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.OpenDB(dbPath(summaryDBPath))
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer db.Close()

	s, err := db.Summarize()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if jsonOutput {
		return outputJSON(s)
	}

	fmt.Printf("Publications: %d\n", s.Publications)
	for _, k := range sortedKeys(s.ByDataset) {
		fmt.Printf("  %s: %d\n", k, s.ByDataset[k])
	}
	years := make([]int, 0, len(s.ByYear))
	for y := range s.ByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		fmt.Printf("  %d: %d\n", y, s.ByYear[y])
	}

	fmt.Printf("Authors: %d\n", s.Authors)
	for _, k := range sortedKeys(s.ByGender) {
		fmt.Printf("  %s: %d\n", k, s.ByGender[k])
	}
	fmt.Println("By source:")
	for _, k := range sortedKeys(s.BySource) {
		fmt.Printf("  %s: %d\n", k, s.BySource[k])
	}

	fmt.Printf("Links: %d\n", s.Links)
	for _, k := range sortedKeys(s.ByPosition) {
		fmt.Printf("  %s: %d\n", k, s.ByPosition[k])
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
