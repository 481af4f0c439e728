// Package config resolves the on-disk locations ThreadBox uses for its
// data directory and database.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir resolves the base directory for all ThreadBox storage. An explicit
// override (typically the CLI's --data-path flag) always wins; otherwise it
// falls back to $HOME/.threadbox/data on Unix or %USERPROFILE%\.threadbox\data
// on Windows.
func DataDir(override string) string {
	if override != "" {
		return override
	}

	home := os.Getenv("HOME")
	if runtime.GOOS == "windows" {
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			home = userProfile
		}
	}
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		} else {
			home = os.TempDir()
		}
	}

	return filepath.Join(home, ".threadbox", "data")
}

// DatabasePath returns the path to the SQLite database file inside a data
// directory. It is absolute only when dataDir is.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "index.db")
}
