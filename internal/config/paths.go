package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Well-known file names inside the feed directory.
const (
	ConfigFileName = "config.json"
	StatusFileName = "risk_status.json"
	LogFileName    = "agent_logs.txt"
)

// DetectProjectRoot walks up from the current working directory looking for
// a directory that contains config.json. Returns the absolute path or an
// error if not found.
func DetectProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return findUp(dir, ConfigFileName)
}

// findUp returns the first directory at or above start containing name.
func findUp(start, name string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found in any parent directory", name)
		}
		dir = parent
	}
}

// EnsureFeedDir creates the feed directory if the status or log resource
// is a local file. URLs need no directory.
func EnsureFeedDir(c *Config) error {
	for _, loc := range []string{c.Feed.Status, c.Feed.Logs} {
		if isURL(loc) {
			continue
		}
		dir := filepath.Dir(loc)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
