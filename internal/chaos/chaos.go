// Package chaos implements the analytical layer over chaos blobs (C7):
// single-file lookup with on-demand computation, batch ranking, dynamic
// percentile thresholds, ejection prediction, 2-D k-means clustering, and
// the trajectory data product. Grounded on the teacher's internal/analysis
// iterative-refinement loop shape; no teacher package computes chaos
// metrics directly since that domain is new to this module.
package chaos

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// sampleBytes bounds how much of a file single-file chaos recomputation
// reads, mirroring the ingest-time sample cap (spec.md §4.4 step 4).
const sampleBytes = 4096

// Result is the report spec.md §4.7 "Single-file chaos" describes.
type Result struct {
	Rel             string
	ChaosScore      float64
	Entropy         float64
	Coherence       float64
	CollapseRisk    string
	WindowsAnalyzed int
}

// Of loads rel's chaos blob, computing it from doc on demand if absent, and
// persisting the computed blob back so subsequent reads are free.
func Of(ctx context.Context, st *store.Store, rel string, cfg signature.Config) (*Result, error) {
	blob, ok, err := load(ctx, st, rel)
	if err != nil {
		return nil, err
	}
	if ok {
		return &Result{
			Rel: rel, ChaosScore: blob.ChaosScore, Entropy: blob.Entropy,
			Coherence: blob.Coherence, CollapseRisk: blob.CollapseRisk, WindowsAnalyzed: blob.WindowsAnalyzed,
		}, nil
	}

	doc, hasDoc, err := st.GetFileField(ctx, rel, store.FieldDoc)
	if err != nil {
		return nil, err
	}
	if !hasDoc || strings.HasPrefix(doc, "[BINARY") {
		return nil, nil
	}

	body := compress.DecodeString(doc)
	sample := body
	if len(sample) > sampleBytes {
		sample = sample[:sampleBytes]
	}
	encoded := signature.Encode(sample, cfg)
	blob = summarize(encoded)

	if data, marshalErr := json.Marshal(blob); marshalErr == nil {
		_ = st.PutFile(ctx, rel, map[string]string{store.FieldChaos: compress.EncodeString(data)}, int64(len(body)))
	}

	return &Result{
		Rel: rel, ChaosScore: blob.ChaosScore, Entropy: blob.Entropy,
		Coherence: blob.Coherence, CollapseRisk: blob.CollapseRisk, WindowsAnalyzed: blob.WindowsAnalyzed,
	}, nil
}

func load(ctx context.Context, st *store.Store, rel string) (store.ChaosBlob, bool, error) {
	raw, ok, err := st.GetFileField(ctx, rel, store.FieldChaos)
	if err != nil || !ok || raw == "" {
		return store.ChaosBlob{}, false, err
	}
	var blob store.ChaosBlob
	if err := json.Unmarshal(compress.DecodeString(raw), &blob); err != nil {
		return store.ChaosBlob{}, false, nil
	}
	return blob, true, nil
}

func summarize(result *signature.EncodeResult) store.ChaosBlob {
	if len(result.Windows) == 0 {
		return store.ChaosBlob{CollapseRisk: store.RiskLow}
	}
	var sumHazard, sumEntropy, sumCoherence float64
	for _, w := range result.Windows {
		sumHazard += w.Hazard
		sumEntropy += w.Entropy
		sumCoherence += w.Coherence
	}
	n := float64(len(result.Windows))
	avg := sumHazard / n
	return store.ChaosBlob{
		ChaosScore:      avg,
		Entropy:         sumEntropy / n,
		Coherence:       sumCoherence / n,
		CollapseRisk:    store.ClassifyStaticRisk(avg),
		WindowsAnalyzed: len(result.Windows),
	}
}
