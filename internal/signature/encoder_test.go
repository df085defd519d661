package signature

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() Config {
	return Config{WindowBytes: 512, StrideBytes: 384, Precision: 3, HazardPercentile: 0.8}
}

func TestEncodeEmptyInput(t *testing.T) {
	result := Encode(nil, defaultConfig())
	assert.Empty(t, result.Windows)
	assert.Equal(t, 0.0, result.HazardThreshold)
	assert.Equal(t, 0, result.OriginalBytes)
}

func TestEncodeShortInputSingleWindow(t *testing.T) {
	data := []byte("hello world")
	result := Encode(data, defaultConfig())
	require.Len(t, result.Windows, 1)
	w := result.Windows[0]
	assert.Equal(t, 0, w.ByteStart)
	assert.Equal(t, len(data), w.ByteEnd)
}

func TestEncodeWindowingInvariants(t *testing.T) {
	data := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)
	cfg := defaultConfig()
	result := Encode([]byte(data), cfg)

	require.NotEmpty(t, result.Windows)
	lastByteStart := -1
	for _, w := range result.Windows {
		assert.True(t, w.ByteStart < w.ByteEnd, "byte_start < byte_end")
		assert.True(t, w.ByteEnd <= len(data), "byte_end <= original_bytes")
		assert.LessOrEqual(t, w.ByteEnd-w.ByteStart, cfg.WindowBytes)
		assert.GreaterOrEqual(t, w.ByteStart, lastByteStart, "monotonic non-decreasing byte_start")
		lastByteStart = w.ByteStart
		assert.GreaterOrEqual(t, w.Coherence, 0.0)
		assert.LessOrEqual(t, w.Coherence, 1.0)
		assert.GreaterOrEqual(t, w.Entropy, 0.0)
		assert.LessOrEqual(t, w.Entropy, 1.0)
		assert.GreaterOrEqual(t, w.Hazard, 0.0)
		assert.LessOrEqual(t, w.Hazard, 1.0)
	}

	// Testable property 2: the final window reaches the end of the stream.
	last := result.Windows[len(result.Windows)-1]
	assert.Equal(t, len(data), last.ByteEnd)
}

func TestEncodeHazardThresholdExactQuantile(t *testing.T) {
	data := strings.Repeat("abcdefgh01234567", 200)
	cfg := defaultConfig()
	result := Encode([]byte(data), cfg)

	require.NotEmpty(t, result.HazardsSorted)
	n := len(result.HazardsSorted)
	idx := int(cfg.HazardPercentile * float64(n-1))
	assert.Equal(t, result.HazardsSorted[idx], result.HazardThreshold)

	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, result.HazardsSorted[i-1], result.HazardsSorted[i])
	}
}

func TestEncodeNearConstantBytesHighCoherence(t *testing.T) {
	data := []byte(strings.Repeat("Hello", 205)) // 1025 bytes
	cfg := defaultConfig()
	result := Encode(data, cfg)

	require.NotEmpty(t, result.Windows)
	// Coherence is min-max normalized across the window sequence, so only the
	// first window (the one FirstWindowSignature reports) is checked here.
	assert.Greater(t, result.Windows[0].Coherence, 0.9, "near-constant bytes should yield high first-window coherence")
	sig, ok := result.FirstWindowSignature()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(sig, "c0.9") || strings.HasPrefix(sig, "c1.0"), "got %s", sig)
}

func TestSignatureRoundTrip(t *testing.T) {
	data := strings.Repeat("xyz!@# 123 ABC", 80)
	cfg := defaultConfig()
	result := Encode([]byte(data), cfg)
	require.NotEmpty(t, result.Windows)

	for _, w := range result.Windows {
		sig := w.Signature(cfg.Precision)
		require.Regexp(t, SignaturePattern, sig)

		coh, stab, ent := mustParse(t, sig)
		assert.InDelta(t, roundTo(w.Coherence, cfg.Precision), coh, 1e-9)
		assert.InDelta(t, roundTo(w.Stability(), cfg.Precision), stab, 1e-9)
		assert.InDelta(t, roundTo(w.Entropy, cfg.Precision), ent, 1e-9)
	}
}

func mustParse(t *testing.T, sig string) (float64, float64, float64) {
	t.Helper()
	coh, stab, ent, err := Parse(sig)
	require.NoError(t, err)
	return coh, stab, ent
}

func roundTo(v float64, precision int) float64 {
	parsed, err := strconv.ParseFloat(formatFixed(v, precision), 64)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestParseRejectsMalformed(t *testing.T) {
	_, _, _, err := Parse("not-a-signature")
	assert.Error(t, err)
}

func TestPrototypesRecordFirstOccurrence(t *testing.T) {
	data := strings.Repeat("aaaaaaaaaaaaaaaa", 200)
	result := Encode([]byte(data), defaultConfig())
	assert.NotEmpty(t, result.Prototypes)
	for sig, proto := range result.Prototypes {
		assert.NotEmpty(t, proto)
		assert.Regexp(t, SignaturePattern, sig)
	}
}

func TestRequireMinLength(t *testing.T) {
	assert.Error(t, RequireMinLength([]byte("short"), 512))
	assert.NoError(t, RequireMinLength(make([]byte, 512), 512))
}
