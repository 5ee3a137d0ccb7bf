// Package main provides the byline CLI entry point.
package main

import (
	"os"

	"github.com/matsen/byline/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// jsonOutput controls whether structured JSON replaces human-readable output
var jsonOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "byline",
	Short: "Author-gender representation analysis over publication bylines",
	Long: `byline ingests bibliographic exports, infers author gender from given
names through a layered classifier (offline dictionary, probabilistic
name-gender service, batch LLM), assigns byline positions, matches journals
to Scimago quartiles, and reports bootstrap-resampled estimates of female
representation by position, year, dataset, and journal tier.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Use JSON output instead of human-readable text")
	rootCmd.Version = Version
}

// dbPath resolves the database path: flag first, then config, then the
// working-directory default.
func dbPath(flag string) string {
	if flag != "" {
		return config.ExpandPath(flag)
	}
	return config.GetDBPath()
}

// cachePath resolves the name-gender cache path the same way.
func cachePath(flag string) string {
	if flag != "" {
		return config.ExpandPath(flag)
	}
	return config.GetCachePath()
}
