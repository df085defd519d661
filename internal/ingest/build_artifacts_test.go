package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectExtraSkipDirsFindsCargoTargetDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte(`
[package]
name = "demo"

[profile.release]
target-dir = "out/release"
`), 0o644))

	extra := DetectExtraSkipDirs(root)
	assert.True(t, extra["release"])
}

func TestDetectExtraSkipDirsFindsPoetryTargetDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(`
[tool.poetry]
name = "demo"

[tool.poetry.build]
target-dir = "artifacts"
`), 0o644))

	extra := DetectExtraSkipDirs(root)
	assert.True(t, extra["artifacts"])
}

func TestDetectExtraSkipDirsEmptyWithoutManifests(t *testing.T) {
	root := t.TempDir()
	extra := DetectExtraSkipDirs(root)
	assert.Empty(t, extra)
}

func TestWalkPrunesManifestDeclaredBuildOutputDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte(`
[profile.release]
target-dir = "custom-out"
`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "custom-out"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "custom-out", "binary.rs"), []byte("fn main() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.rs"), []byte("fn main() {}"), 0o644))

	out, err := walk(root)
	require.NoError(t, err)

	var rels []string
	for _, c := range out {
		rels = append(rels, c.rel)
	}
	require.Equal(t, []string{"Cargo.toml", "main.rs"}, rels)
}
