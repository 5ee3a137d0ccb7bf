package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Test with custom XDG_CONFIG_HOME
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/byline/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Test with empty XDG_CONFIG_HOME (should use ~/.config)
	os.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "byline", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	// Point to an empty directory
	os.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.DBPath != "" || cfg.LLM.Provider != "" {
		t.Errorf("LoadGlobalConfig() = %+v, want empty config", cfg)
	}
}

func writeGlobalConfig(t *testing.T, tmpDir, body string) {
	t.Helper()

	configDir := filepath.Join(tmpDir, "byline")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, `db_path: ~/data/byline.db
cache_path: /var/cache/gender.json
llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
genderize:
  base_url: https://genderize.example
  api_key: gz-test-key
`)
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	// Check tilde expansion
	home, _ := os.UserHomeDir()
	wantPath := filepath.Join(home, "data/byline.db")
	if cfg.DBPath != wantPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, wantPath)
	}

	if cfg.CachePath != "/var/cache/gender.json" {
		t.Errorf("CachePath = %q, want /var/cache/gender.json", cfg.CachePath)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("LLM.Provider = %q, want anthropic", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "claude-3-5-haiku-latest" {
		t.Errorf("LLM.Model = %q, want claude-3-5-haiku-latest", cfg.LLM.Model)
	}
	if cfg.Genderize.BaseURL != "https://genderize.example" {
		t.Errorf("Genderize.BaseURL = %q, want https://genderize.example", cfg.Genderize.BaseURL)
	}
	if cfg.Genderize.APIKey != "gz-test-key" {
		t.Errorf("Genderize.APIKey = %q, want gz-test-key", cfg.Genderize.APIKey)
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, "llm: [unclosed")
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestGetDBPath(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	// Without config, falls back to the working-directory default.
	if got := GetDBPath(); got != DefaultDBFile {
		t.Errorf("GetDBPath() = %q, want %q", got, DefaultDBFile)
	}

	ResetGlobalConfigCache()
	writeGlobalConfig(t, tmpDir, "db_path: /srv/byline.db\n")
	if got := GetDBPath(); got != "/srv/byline.db" {
		t.Errorf("GetDBPath() = %q, want /srv/byline.db", got)
	}
}

func TestGetCachePath(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	// Without config, the cache lives next to the global config file.
	want := filepath.Join(tmpDir, "byline", CacheFile)
	if got := GetCachePath(); got != want {
		t.Errorf("GetCachePath() = %q, want %q", got, want)
	}

	ResetGlobalConfigCache()
	writeGlobalConfig(t, tmpDir, "cache_path: /srv/cache.json\n")
	if got := GetCachePath(); got != "/srv/cache.json" {
		t.Errorf("GetCachePath() = %q, want /srv/cache.json", got)
	}
}

func TestGlobalConfigCache(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, "db_path: /first.db\n")
	os.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg1, _ := LoadGlobalConfig()
	if cfg1.DBPath != "/first.db" {
		t.Errorf("First load: DBPath = %q, want /first.db", cfg1.DBPath)
	}

	// Modify file; second load should return the cached value.
	writeGlobalConfig(t, tmpDir, "db_path: /second.db\n")
	cfg2, _ := LoadGlobalConfig()
	if cfg2.DBPath != "/first.db" {
		t.Errorf("Second load: DBPath = %q, want /first.db (cached)", cfg2.DBPath)
	}

	// Reset cache; third load should read the modified file.
	ResetGlobalConfigCache()
	cfg3, _ := LoadGlobalConfig()
	if cfg3.DBPath != "/second.db" {
		t.Errorf("Third load: DBPath = %q, want /second.db", cfg3.DBPath)
	}
}
