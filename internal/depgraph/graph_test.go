package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildGraphComputesBlastRadiusChain(t *testing.T) {
	// a <- b <- c : changing a impacts b and c (blast radius 2), c has radius 0.
	sources := map[string]string{
		"a.py": "",
		"b.py": "import a\n",
		"c.py": "import b\n",
	}
	g := Build(sources)

	infoA, ok := g.Info("a.py")
	require.True(t, ok)
	require.Equal(t, 2, infoA.BlastRadius)
	require.Equal(t, 2, infoA.Depth)
	require.False(t, infoA.IsCore)

	infoC, ok := g.Info("c.py")
	require.True(t, ok)
	require.Equal(t, 0, infoC.BlastRadius)
}

func TestBuildGraphMarksIsCoreAboveThreshold(t *testing.T) {
	sources := map[string]string{"core.py": ""}
	for i := 0; i < 6; i++ {
		sources[pyName(i)] = "import core\n"
	}
	g := Build(sources)

	info, ok := g.Info("core.py")
	require.True(t, ok)
	require.Equal(t, 6, info.BlastRadius)
	require.True(t, info.IsCore)
}

func TestHighImpactSortsDescending(t *testing.T) {
	sources := map[string]string{
		"low.py":  "",
		"high.py": "",
		"a.py":    "import high\n",
		"b.py":    "import high\n",
		"c.py":    "import low\n",
	}
	g := Build(sources)

	high := g.HighImpact(1)
	require.NotEmpty(t, high)
	require.Equal(t, "high.py", high[0].FilePath)
}

func TestBuildGraphIgnoresUnresolvableImports(t *testing.T) {
	sources := map[string]string{"a.py": "import numpy\n"}
	g := Build(sources)
	info, ok := g.Info("a.py")
	require.True(t, ok)
	require.Equal(t, 0, info.BlastRadius)
	require.Equal(t, []string{"numpy"}, info.Imports)
}

func pyName(i int) string {
	return string(rune('d'+i)) + ".py"
}
