// Package pathutil converts between absolute and relative paths.
//
// manifold keys every store record by the path relative to the ingest
// root (spec §3); this package is the conversion layer between absolute
// filesystem paths produced by directory walks/watchers and the relative
// keys the index store expects.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already
// relative, or if the result would escape the root.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return filepath.ToSlash(absPath)
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return filepath.ToSlash(relPath)
}

// ToAbsolute joins a relative key back onto the ingest root.
func ToAbsolute(relPath, rootDir string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(rootDir, filepath.FromSlash(relPath))
}
