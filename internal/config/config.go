package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultDBFile is the database created in the working directory when no
	// path is configured.
	DefaultDBFile = "byline.db"
	// CacheFile is the name-gender cache stored next to the global config.
	CacheFile = "gender_cache.json"
)

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
