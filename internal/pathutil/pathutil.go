// Package pathutil screens file paths supplied by clients before the
// process opens them.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects paths that could escape the working tree: empty
// paths, paths with null bytes, and any path with a ".." segment. Segments
// are inspected before cleaning, so "exports/../../etc/passwd" is caught even
// though its cleaned form no longer contains "..".
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("data path contains invalid characters")
	}

	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return fmt.Errorf("data path escapes the working tree: %q", path)
		}
	}
	return nil
}
