// Package refs implements C12: named, weighted external reference stores
// that index a path the same way a project is indexed, and feed an extra
// ranked list into retrieval's RRF fusion. Reference content lives under a
// host-level data directory keyed by name, grounded on the teacher's
// internal/cache.Cache "root directory + key subdirectory" pattern
// (internal/cache/cache.go), adapted from git-remote-keyed caching to
// explicit name-keyed reference stores.
package refs

import (
	"os"
	"path/filepath"
)

// DataDir resolves the host data directory references live under:
// $CQS_DATA_DIR if set, otherwise os.UserHomeDir()/.cqs.
func DataDir() (string, error) {
	if v := os.Getenv("CQS_DATA_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cqs"), nil
}

// StorePath returns the directory a named reference's store lives in:
// <dataDir>/refs/<name>/.
func StorePath(dataDir, name string) string {
	return filepath.Join(dataDir, "refs", name)
}
