// Package ingest walks a repository tree and populates the index store with
// one FileRecord per surviving file, mirroring the teacher's FileScanner
// pruning/classification pipeline (internal/indexing in the teacher repo).
package ingest

import (
	"path/filepath"
	"strings"
)

// SkipDirs are directory names pruned at the parent level during the walk,
// carried over from the teacher's project-detection exclusion list and
// extended with Python-specific virtualenv/cache directories original_source
// itself skips.
var SkipDirs = map[string]bool{
	".git":             true,
	".hg":               true,
	".svn":              true,
	"__pycache__":       true,
	".mypy_cache":       true,
	".pytest_cache":     true,
	".tox":              true,
	".venv":             true,
	"venv":              true,
	"env":                true,
	".env":               true,
	"node_modules":      true,
	"dist":              true,
	"build":             true,
	"target":            true,
	".idea":             true,
	".vscode":           true,
	".cache":            true,
	"htmlcov":           true,
	"vendor":            true,
	".next":             true,
	".nuxt":             true,
	"site-packages":     true,
	".eggs":             true,
	".mvn":              true,
}

// skipExtensions are binary/media/archive/compiled extensions dropped before
// a FileRecord is ever considered, lifted from the teacher's BinaryDetector
// extension table (the entries marked true there).
var skipExtensions = map[string]bool{
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true, ".tif": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true, ".jar": true, ".war": true, ".ear": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true,
	".o": true, ".obj": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".wav": true, ".flac": true, ".ogg": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
	".pyc": true, ".pyo": true, ".class": true, ".pickle": true, ".pkl": true,
}

// IsSkippedDir reports whether a directory name is pruned during the walk.
func IsSkippedDir(name string) bool {
	return SkipDirs[name]
}

// IsSkippedFile reports whether a filename matches the hard-drop extension
// set. Surviving files still go through classifyBinary for the text/binary
// split (spec.md §4.4 step 2), since unknown extensions are not pruned here.
func IsSkippedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return skipExtensions[ext]
}

// docOrTestExtensions/docOrTestMarkers identify paths lite ingest treats as
// "docs/tests", for which chaos computation is skipped (spec.md §4.4 step 5).
var docOrTestExtensions = map[string]bool{
	".md": true, ".rst": true, ".txt": true,
}

var docOrTestMarkers = []string{"test_", "_test.", ".test.", "spec_", "_spec."}

// IsDocOrTest reports whether a surviving path should be excluded from chaos
// computation in lite ingest mode.
func IsDocOrTest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if docOrTestExtensions[ext] {
		return true
	}
	base := strings.ToLower(filepath.Base(path))
	for _, marker := range docOrTestMarkers {
		if strings.Contains(base, marker) {
			return true
		}
	}
	return false
}
