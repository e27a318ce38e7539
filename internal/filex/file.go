// Package filex holds small filesystem helpers for the CLI's local files
// (database, log, uploaded images).
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold filePath.
// Paths without a directory component (or SQLite ":memory:") are left alone.
func EnsureParentDir(filePath string) error {
	if filePath == "" || filePath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadLimited reads a file, rejecting files larger than maxBytes.
func ReadLimited(path string, maxBytes int64) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && fi.Size() > maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, fi.Size(), maxBytes)
	}
	return os.ReadFile(path)
}
