package risk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuseTwoInputWeighting(t *testing.T) {
	s := Fuse("a.py", 0.5, 25, 0, false)
	require.False(t, s.HasChurn)
	require.InDelta(t, 0.6*0.5+0.4*0.5, s.Combined, 1e-9)
}

func TestFuseThreeInputWeightingWhenChurnProvided(t *testing.T) {
	s := Fuse("a.py", 0.5, 25, 0.8, true)
	require.True(t, s.HasChurn)
	require.InDelta(t, 0.4*0.5+0.3*0.5+0.3*0.8, s.Combined, 1e-9)
}

func TestFuseBlastRadiusNormalizationCapsAtOne(t *testing.T) {
	s := Fuse("a.py", 0, 500, 0, false)
	require.InDelta(t, 0.4, s.Combined, 1e-9) // 0.6*0 + 0.4*1
}

func TestFuseZeroChurnScoreFallsBackToTwoInput(t *testing.T) {
	s := Fuse("a.py", 0.5, 25, 0, true)
	require.False(t, s.HasChurn)
	require.InDelta(t, 0.6*0.5+0.4*0.5, s.Combined, 1e-9)
}

func TestClassifyBands(t *testing.T) {
	require.Equal(t, LevelCritical, classify(0.40))
	require.Equal(t, LevelCritical, classify(0.9))
	require.Equal(t, LevelHigh, classify(0.30))
	require.Equal(t, LevelModerate, classify(0.20))
	require.Equal(t, LevelLow, classify(0.19))
}
