package ingest

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// cargoManifest and poetryManifest decode just the fields the teacher's
// BuildArtifactDetector reads off Cargo.toml/pyproject.toml to find a
// non-default build output directory.
type cargoManifest struct {
	Profile struct {
		Release struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"release"`
	} `toml:"profile"`
}

type poetryManifest struct {
	Tool struct {
		Poetry struct {
			Build struct {
				TargetDir string `toml:"target-dir"`
			} `toml:"build"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// DetectExtraSkipDirs reads Cargo.toml and pyproject.toml at root for a
// custom build-output directory the way the teacher's
// BuildArtifactDetector.detectRustOutputs/detectPythonOutputs do, returning
// basenames to prune in addition to the static SkipDirs set. Projects that
// don't override the default output directory (or carry neither manifest)
// get an empty set back; "target"/"dist"/"build" are already covered
// statically.
func DetectExtraSkipDirs(root string) map[string]bool {
	extra := make(map[string]bool)

	if data, err := os.ReadFile(filepath.Join(root, "Cargo.toml")); err == nil {
		var cargo cargoManifest
		if toml.Unmarshal(data, &cargo) == nil && cargo.Profile.Release.TargetDir != "" {
			extra[filepath.Base(cargo.Profile.Release.TargetDir)] = true
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "pyproject.toml")); err == nil {
		var pyproject poetryManifest
		if toml.Unmarshal(data, &pyproject) == nil && pyproject.Tool.Poetry.Build.TargetDir != "" {
			extra[filepath.Base(pyproject.Tool.Poetry.Build.TargetDir)] = true
		}
	}

	return extra
}
