package chaos

import (
	"context"
	"sort"

	"github.com/standardbeagle/manifold/internal/store"
)

// Thresholds are the dynamic percentile bands spec.md §4.7 defines for
// clustering and prediction.
type Thresholds struct {
	ChaosLow      float64
	ChaosHigh     float64
	CoherenceLow  float64
	CoherenceHigh float64
	EntropyLow    float64
	EntropyHigh   float64
}

// fallbackThresholds is the documented fallback when the corpus is empty.
var fallbackThresholds = Thresholds{
	ChaosLow: 0.15, ChaosHigh: 0.35,
	CoherenceLow: 0.30, CoherenceHigh: 0.60,
	EntropyLow: 0.60, EntropyHigh: 0.85,
}

const (
	lowPercentile  = 0.333
	highPercentile = 0.666
)

// percentile returns the p-th percentile of sorted values using the same
// floor((n-1)*p) index the hazard gate uses (spec.md §3), never
// interpolated.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// CorpusThresholds scans glob and computes the dynamic threshold bands over
// whatever chaos blobs it finds.
func CorpusThresholds(ctx context.Context, st *store.Store, glob string) (Thresholds, error) {
	blobs, err := collectBlobs(ctx, st, glob)
	if err != nil {
		return Thresholds{}, err
	}
	triples := make(map[string]chaosTriple, len(blobs))
	for rel, b := range blobs {
		triples[rel] = chaosTriple{ChaosScore: b.ChaosScore, Coherence: b.Coherence, Entropy: b.Entropy}
	}
	return DynamicThresholds(triples), nil
}

// DynamicThresholds computes the 33.3rd/66.6th percentile bands of the
// corpus hazard/coherence/entropy distributions, falling back to the
// documented constants when the corpus is empty (the dynamic bands coexist
// with ingest's static collapse-risk bands, see internal/store.ClassifyStaticRisk).
func DynamicThresholds(blobs map[string]chaosTriple) Thresholds {
	if len(blobs) == 0 {
		return fallbackThresholds
	}

	chaos := make([]float64, 0, len(blobs))
	coherence := make([]float64, 0, len(blobs))
	entropy := make([]float64, 0, len(blobs))
	for _, b := range blobs {
		chaos = append(chaos, b.ChaosScore)
		coherence = append(coherence, b.Coherence)
		entropy = append(entropy, b.Entropy)
	}
	sort.Float64s(chaos)
	sort.Float64s(coherence)
	sort.Float64s(entropy)

	return Thresholds{
		ChaosLow:      percentile(chaos, lowPercentile),
		ChaosHigh:     percentile(chaos, highPercentile),
		CoherenceLow:  percentile(coherence, lowPercentile),
		CoherenceHigh: percentile(coherence, highPercentile),
		EntropyLow:    percentile(entropy, lowPercentile),
		EntropyHigh:   percentile(entropy, highPercentile),
	}
}

// chaosTriple is the subset of store.ChaosBlob the threshold/clustering
// computations need.
type chaosTriple struct {
	ChaosScore float64
	Coherence  float64
	Entropy    float64
}
