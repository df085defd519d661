package chaos

import (
	"context"
	"strings"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// trajectorySampleBytes bounds how much of a file the trajectory product
// re-encodes (spec.md §4.7 "Trajectory data product").
const trajectorySampleBytes = 8192

// TrajectoryPoint is one window's position on the (hazard, entropy,
// coherence) trajectory.
type TrajectoryPoint struct {
	ByteStart int
	Hazard    float64
	Entropy   float64
	Coherence float64
}

// SymbolicCounts tallies how many windows fell in each coarse hazard band.
type SymbolicCounts struct {
	Low  int
	Mid  int
	High int
}

// Trajectory is the full per-window series plus aggregate stats spec.md
// §4.7 describes for a single file.
type Trajectory struct {
	Rel             string
	Points          []TrajectoryPoint
	Symbolic        SymbolicCounts
	MeanHazard      float64
	MeanEntropy     float64
	MeanCoherence   float64
	WindowsAnalyzed int
}

// TrajectoryOf re-encodes up to trajectorySampleBytes of rel's content and
// returns its per-window trajectory plus aggregate stats.
func TrajectoryOf(ctx context.Context, st *store.Store, rel string, cfg signature.Config) (*Trajectory, error) {
	doc, ok, err := st.GetFileField(ctx, rel, store.FieldDoc)
	if err != nil {
		return nil, err
	}
	if !ok || strings.HasPrefix(doc, "[BINARY") {
		return nil, nil
	}

	body := compress.DecodeString(doc)
	sample := body
	if len(sample) > trajectorySampleBytes {
		sample = sample[:trajectorySampleBytes]
	}

	encoded := signature.Encode(sample, cfg)
	if len(encoded.Windows) == 0 {
		return &Trajectory{Rel: rel}, nil
	}

	points := make([]TrajectoryPoint, len(encoded.Windows))
	var symbolic SymbolicCounts
	var sumHazard, sumEntropy, sumCoherence float64
	for i, w := range encoded.Windows {
		points[i] = TrajectoryPoint{ByteStart: w.ByteStart, Hazard: w.Hazard, Entropy: w.Entropy, Coherence: w.Coherence}
		sumHazard += w.Hazard
		sumEntropy += w.Entropy
		sumCoherence += w.Coherence

		switch {
		case w.Hazard >= encoded.HazardThreshold:
			symbolic.High++
		case w.Hazard >= encoded.HazardThreshold/2:
			symbolic.Mid++
		default:
			symbolic.Low++
		}
	}

	n := float64(len(encoded.Windows))
	return &Trajectory{
		Rel:             rel,
		Points:          points,
		Symbolic:        symbolic,
		MeanHazard:      sumHazard / n,
		MeanEntropy:     sumEntropy / n,
		MeanCoherence:   sumCoherence / n,
		WindowsAnalyzed: len(encoded.Windows),
	}, nil
}
