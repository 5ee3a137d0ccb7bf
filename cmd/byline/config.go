package main

import (
	"fmt"

	"github.com/matsen/byline/internal/config"
	"github.com/matsen/byline/internal/genderapi"
	"github.com/matsen/byline/internal/llm"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  `Show where the config file lives and the settings byline will run with, defaults filled in. API keys are never printed.`,
	RunE:  runConfig,
}

// ConfigResult reports the effective settings. Keys are omitted on purpose.
type ConfigResult struct {
	Path             string `json:"path"`
	DBPath           string `json:"db_path"`
	CachePath        string `json:"cache_path"`
	LLMProvider      string `json:"llm_provider"`
	LLMModel         string `json:"llm_model"`
	LLMBaseURL       string `json:"llm_base_url,omitempty"`
	GenderizeBaseURL string `json:"genderize_base_url"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	if _, err := config.LoadGlobalConfig(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	result := ConfigResult{
		Path:             config.GlobalConfigPath(),
		DBPath:           config.GetDBPath(),
		CachePath:        config.GetCachePath(),
		LLMProvider:      config.GetLLMProvider(),
		LLMModel:         config.GetLLMModel(),
		LLMBaseURL:       config.GetLLMBaseURL(),
		GenderizeBaseURL: config.GetGenderizeBaseURL(),
	}
	if result.LLMProvider == "" {
		result.LLMProvider = "openai"
	}
	if result.LLMModel == "" {
		if result.LLMProvider == "anthropic" {
			result.LLMModel = llm.DefaultAnthropicModel
		} else {
			result.LLMModel = llm.DefaultModel
		}
	}
	if result.LLMBaseURL == "" && result.LLMProvider != "anthropic" {
		result.LLMBaseURL = llm.DefaultBaseURL
	}
	if result.GenderizeBaseURL == "" {
		result.GenderizeBaseURL = genderapi.BaseURL
	}

	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Printf("Config file: %s\n", result.Path)
	fmt.Printf("Database:    %s\n", result.DBPath)
	fmt.Printf("Cache:       %s\n", result.CachePath)
	fmt.Printf("LLM:         %s (%s)\n", result.LLMProvider, result.LLMModel)
	if result.LLMBaseURL != "" {
		fmt.Printf("LLM URL:     %s\n", result.LLMBaseURL)
	}
	fmt.Printf("Genderize:   %s\n", result.GenderizeBaseURL)
	return nil
}
