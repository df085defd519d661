package ingest

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	manifolderrors "github.com/standardbeagle/manifold/internal/errors"
)

// candidate is one surviving file discovered by walk, paired with its
// path relative to the ingest root.
type candidate struct {
	abs string
	rel string
}

// walk performs the sorted, depth-first traversal spec.md §4.4 requires:
// directory names in SkipDirs (plus any project-manifest-declared build
// output directory DetectExtraSkipDirs finds at root) are pruned at the
// parent level, filenames matching skipExtensions are dropped before any
// read.
func walk(root string) ([]candidate, error) {
	extraSkipDirs := DetectExtraSkipDirs(root)
	var out []candidate
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (IsSkippedDir(d.Name()) || extraSkipDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSkippedFile(path) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		out = append(out, candidate{abs: path, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rel < out[j].rel })
	return out, nil
}

// readCapped reads up to maxBytes of a file, the per-file read cap of
// spec.md §4.4 step 1.
func readCapped(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, manifolderrors.New(manifolderrors.PerFileIO, "read_file", err).
			WithPath(path).WithRecoverable(true)
	}
	defer f.Close()

	buf := make([]byte, maxBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, manifolderrors.New(manifolderrors.PerFileIO, "read_file", err).
			WithPath(path).WithRecoverable(true)
	}
	return buf[:n], nil
}
