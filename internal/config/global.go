// Package config handles byline's global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/byline/config.yml.
type GlobalConfig struct {
	DBPath    string          `yaml:"db_path,omitempty"`
	CachePath string          `yaml:"cache_path,omitempty"`
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Genderize GenderizeConfig `yaml:"genderize,omitempty"`
}

// LLMConfig selects and points the generative classification backend.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"` // "openai" (default) or "anthropic"
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// GenderizeConfig points the name-gender service client.
type GenderizeConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "byline"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/byline/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
// The returned config is never nil.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return &GlobalConfig{}, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &GlobalConfig{}, fmt.Errorf("parsing global config: %w", err)
	}

	// Expand tilde in paths
	if cfg.DBPath != "" {
		cfg.DBPath = ExpandPath(cfg.DBPath)
	}
	if cfg.CachePath != "" {
		cfg.CachePath = ExpandPath(cfg.CachePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetDBPath returns the configured database path, or DefaultDBFile in the
// working directory.
func GetDBPath() string {
	cfg, _ := LoadGlobalConfig()
	if cfg.DBPath != "" {
		return cfg.DBPath
	}
	return DefaultDBFile
}

// GetCachePath returns the configured name-gender cache path, or CacheFile
// next to the global config.
func GetCachePath() string {
	cfg, _ := LoadGlobalConfig()
	if cfg.CachePath != "" {
		return cfg.CachePath
	}
	if configPath := GlobalConfigPath(); configPath != "" {
		return filepath.Join(filepath.Dir(configPath), CacheFile)
	}
	return CacheFile
}

// GetLLMProvider returns the configured LLM provider name.
func GetLLMProvider() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.LLM.Provider
}

// GetLLMModel returns the configured LLM model.
func GetLLMModel() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.LLM.Model
}

// GetLLMBaseURL returns the configured LLM base URL.
func GetLLMBaseURL() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.LLM.BaseURL
}

// GetGenderizeBaseURL returns the configured name-gender service base URL.
func GetGenderizeBaseURL() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.Genderize.BaseURL
}

// GetGenderizeAPIKey returns the configured name-gender service API key.
func GetGenderizeAPIKey() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.Genderize.APIKey
}
