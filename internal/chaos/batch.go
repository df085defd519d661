package chaos

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/store"
)

// RankedFile is one entry in a batch-ranking result.
type RankedFile struct {
	Rel          string
	ChaosScore   float64
	CollapseRisk string
}

// Batch implements spec.md §4.7 "Batch ranking": scan every chaos blob
// under glob, sort descending by chaos score, return the top maxFiles.
func Batch(ctx context.Context, st *store.Store, glob string, maxFiles int) ([]RankedFile, error) {
	blobs, err := collectBlobs(ctx, st, glob)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedFile, 0, len(blobs))
	for rel, b := range blobs {
		ranked = append(ranked, RankedFile{Rel: rel, ChaosScore: b.ChaosScore, CollapseRisk: b.CollapseRisk})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ChaosScore > ranked[j].ChaosScore })

	if maxFiles > 0 && len(ranked) > maxFiles {
		ranked = ranked[:maxFiles]
	}
	return ranked, nil
}

// collectBlobs streams every file under glob that has a decodable chaos
// blob, keyed by relative path.
func collectBlobs(ctx context.Context, st *store.Store, glob string) (map[string]store.ChaosBlob, error) {
	out := make(map[string]store.ChaosBlob)
	err := st.ScanFiles(ctx, glob, store.ReadBatchSize, func(batch []store.FileBatch) error {
		for _, fb := range batch {
			raw, ok := fb.Fields[store.FieldChaos]
			if !ok || raw == "" {
				continue
			}
			var blob store.ChaosBlob
			if err := json.Unmarshal(compress.DecodeString(raw), &blob); err != nil {
				continue
			}
			out[fb.Rel] = blob
		}
		return nil
	})
	return out, err
}
