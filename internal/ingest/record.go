package ingest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// chaosSampleBytes bounds how much of a file chaos computation reads
// (spec.md §4.4 step 4: "run encoder on the first 4 KB").
const chaosSampleBytes = 4096

// Recipe holds the per-file ingest parameters (spec.md §4.4, §6 Ingest/Encode
// config blocks).
type Recipe struct {
	WindowBytes      int
	StrideBytes      int
	Precision        int
	HazardPercentile float64
	ComputeChaos     bool
	Lite             bool
}

// Record is the outcome of running the per-file recipe: the hash fields to
// write plus the counters the ingest loop folds into IngestMetadata.
type Record struct {
	Fields    map[string]string
	ByteLen   int64
	IsBinary  bool
	HasSig    bool
	ChaosAvg  float64
	HasChaos  bool
	HighRisk  bool
}

// BuildRecord runs the per-file ingest recipe (spec.md §4.4 steps 1-5) over
// already-read file bytes, producing the hash fields for
// manifold:file:{rel} and the counters the caller tallies into
// IngestMetadata.
func BuildRecord(rel string, content []byte, recipe Recipe) Record {
	fields := make(map[string]string, 3)

	if classifyBinary(content) {
		fields[store.FieldDoc] = fmt.Sprintf("[BINARY sha256=%x bytes=%d]", sha256.Sum256(content), len(content))
		return Record{Fields: fields, ByteLen: int64(len(content)), IsBinary: true}
	}
	if len(content) == 0 {
		return Record{Fields: fields}
	}

	fields[store.FieldDoc] = compress.EncodeString(content)
	rec := Record{Fields: fields, ByteLen: int64(len(content))}

	cfg := signature.Config{
		WindowBytes:      recipe.WindowBytes,
		StrideBytes:      recipe.StrideBytes,
		Precision:        recipe.Precision,
		HazardPercentile: recipe.HazardPercentile,
	}

	if len(content) >= recipe.WindowBytes {
		if sig, ok := signature.Encode(content, cfg).FirstWindowSignature(); ok {
			fields[store.FieldSig] = sig
			rec.HasSig = true
		}
	}

	if recipe.ComputeChaos && !(recipe.Lite && IsDocOrTest(rel)) {
		sample := content
		if len(sample) > chaosSampleBytes {
			sample = sample[:chaosSampleBytes]
		}
		blob := summarizeChaos(signature.Encode(sample, cfg))
		if data, err := json.Marshal(blob); err == nil {
			fields[store.FieldChaos] = compress.EncodeString(data)
			rec.HasChaos = true
			rec.ChaosAvg = blob.ChaosScore
			rec.HighRisk = blob.CollapseRisk == store.RiskHigh
		}
	}

	return rec
}

// summarizeChaos averages the per-window metrics across a sample into the
// ChaosBlob shape stored in FileRecord.chaos (spec.md §3).
func summarizeChaos(result *signature.EncodeResult) store.ChaosBlob {
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
	avgHazard := sumHazard / n

	return store.ChaosBlob{
		ChaosScore:      avgHazard,
		Entropy:         sumEntropy / n,
		Coherence:       sumCoherence / n,
		CollapseRisk:    store.ClassifyStaticRisk(avgHazard),
		WindowsAnalyzed: len(result.Windows),
	}
}
