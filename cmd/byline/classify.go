package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/byline/internal/config"
	"github.com/matsen/byline/internal/gender"
	"github.com/matsen/byline/internal/genderapi"
	"github.com/matsen/byline/internal/llm"
	"github.com/matsen/byline/internal/storage"
	"github.com/spf13/cobra"
)

var (
	classifyDBPath      string
	classifyCachePath   string
	classifyBatchSize   int
	classifyConcurrency int
	classifySkipLLM     bool
	classifyRetry       bool
)

func init() {
	classifyCmd.Flags().StringVar(&classifyDBPath, "db", "", "Database path (default from config)")
	classifyCmd.Flags().StringVar(&classifyCachePath, "cache", "", "Name-gender cache path (default from config)")
	classifyCmd.Flags().IntVar(&classifyBatchSize, "batch-size", gender.DefaultBatchSize, "Names per LLM batch")
	classifyCmd.Flags().IntVar(&classifyConcurrency, "concurrency", gender.DefaultConcurrency, "Concurrent name-gender service lookups")
	classifyCmd.Flags().BoolVar(&classifySkipLLM, "skip-llm", false, "Skip the LLM tier")
	classifyCmd.Flags().BoolVar(&classifyRetry, "retry", false, "Re-submit names the LLM tier left unresolved")
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Infer gender for unclassified author names",
	Long: `Infer gender for stored author names through the layered classifier:
cache, offline dictionary, probabilistic name-gender service, then batch
LLM. Every outcome is cached, so reruns only query new names.

With --retry, names whose previous LLM batch could not be parsed are
cleared from the cache and re-submitted to the LLM tier only.`,
	RunE: runClassify,
}

// ClassifyResult reports one classification run.
type ClassifyResult struct {
	Classified int          `json:"classified"`
	Retry      bool         `json:"retry,omitempty"`
	Stats      gender.Stats `json:"stats"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	if classifyRetry && classifySkipLLM {
		exitWithError(ExitConfigError, "--retry re-submits names to the LLM tier and cannot be combined with --skip-llm")
	}

	db, err := storage.OpenDB(dbPath(classifyDBPath))
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer db.Close()

	cache := gender.OpenCache(cachePath(classifyCachePath))

	var serviceOpts []genderapi.ClientOption
	if base := config.GetGenderizeBaseURL(); base != "" {
		serviceOpts = append(serviceOpts, genderapi.WithBaseURL(base))
	}
	if key := config.GetGenderizeAPIKey(); key != "" {
		serviceOpts = append(serviceOpts, genderapi.WithAPIKey(key))
	}

	opts := []gender.Option{
		gender.WithService(genderapi.NewClient(serviceOpts...)),
		gender.WithBatchSize(classifyBatchSize),
		gender.WithConcurrency(classifyConcurrency),
	}
	if !classifySkipLLM {
		provider := llm.NewProvider(config.GetLLMProvider(), config.GetLLMModel(), config.GetLLMBaseURL())
		if !provider.IsConfigured() {
			exitWithError(ExitConfigError, "LLM tier needs an API key: set ANTHROPIC_API_KEY, GROQ_API_KEY, or OPENAI_API_KEY, or pass --skip-llm")
		}
		opts = append(opts, gender.WithProvider(provider))
	}
	clf := gender.New(cache, opts...)

	var pending []string
	if classifyRetry {
		pending, err = db.AuthorsBySource(gender.SourceLLMUnparsed)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		cache.RemoveBySource(gender.SourceLLMUnparsed)
	} else {
		pending, err = db.UnclassifiedAuthors()
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	result := ClassifyResult{Retry: classifyRetry}
	if len(pending) == 0 {
		if jsonOutput {
			return outputJSON(result)
		}
		fmt.Println("Nothing to classify")
		return nil
	}

	fmt.Fprintf(os.Stderr, "Classifying %d names...\n", len(pending))

	ctx := context.Background()
	var results map[string]gender.Result
	if classifyRetry {
		results, result.Stats, err = clf.RetryUnresolved(ctx, pending)
	} else {
		results, result.Stats, err = clf.ClassifyAll(ctx, pending)
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	for name, r := range results {
		if err := db.UpdateAuthorGender(name, r.Gender, r.PFemale, r.Source); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}
	result.Classified = len(results)

	if jsonOutput {
		return outputJSON(result)
	}

	s := result.Stats
	fmt.Printf("Classified %d names\n", result.Classified)
	fmt.Printf("  Cache hits:  %d\n", s.CacheHits)
	fmt.Printf("  Too short:   %d\n", s.TooShort)
	fmt.Printf("  Dictionary:  %d\n", s.Dictionary)
	fmt.Printf("  Service:     %d\n", s.Service)
	fmt.Printf("  LLM:         %d\n", s.LLM)
	fmt.Printf("  Unresolved:  %d\n", s.Unresolved)
	if s.ServiceErrors > 0 {
		fmt.Fprintf(os.Stderr, "  warning: %d service lookups failed and fell through\n", s.ServiceErrors)
	}
	return nil
}
