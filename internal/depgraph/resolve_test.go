package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildModuleTableDerivesDottedNames(t *testing.T) {
	table := BuildModuleTable([]string{"src/manifold/sidecar.py", "src/manifold/__init__.py"})
	require.Equal(t, "src/manifold/sidecar.py", table.byModule["src.manifold.sidecar"])
	require.Equal(t, "src/manifold/__init__.py", table.byModule["src.manifold"])
}

func TestResolveAbsoluteImportExactMatch(t *testing.T) {
	table := BuildModuleTable([]string{"src/manifold/sidecar.py", "src/manifold/core.py"})
	f, ok := table.Resolve("src.manifold.sidecar", "src/manifold/core.py")
	require.True(t, ok)
	require.Equal(t, "src/manifold/sidecar.py", f)
}

func TestResolveRelativeImportSamePackage(t *testing.T) {
	table := BuildModuleTable([]string{"src/manifold/sidecar.py", "src/manifold/core.py"})
	f, ok := table.Resolve(".sidecar", "src/manifold/core.py")
	require.True(t, ok)
	require.Equal(t, "src/manifold/sidecar.py", f)
}

func TestResolveRelativeImportParentPackage(t *testing.T) {
	table := BuildModuleTable([]string{"src/manifold/util/helpers.py", "src/manifold/other/caller.py"})
	f, ok := table.Resolve("..util.helpers", "src/manifold/other/caller.py")
	require.True(t, ok)
	require.Equal(t, "src/manifold/util/helpers.py", f)
}

func TestResolveFallsBackToSuffixMatch(t *testing.T) {
	table := BuildModuleTable([]string{"src/manifold/sidecar.py"})
	f, ok := table.Resolve("manifold.sidecar", "src/other/caller.py")
	require.True(t, ok)
	require.Equal(t, "src/manifold/sidecar.py", f)
}

func TestResolveUnresolvableImportReturnsFalse(t *testing.T) {
	table := BuildModuleTable([]string{"src/manifold/sidecar.py"})
	_, ok := table.Resolve("numpy", "src/manifold/sidecar.py")
	require.False(t, ok)
}
