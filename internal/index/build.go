// Package index builds and caches the ManifoldIndex aggregate (spec §3): a
// corpus-wide map from structural signature to every window that produced
// it, derived by re-encoding each file's stored document. Grounded on the
// teacher's internal/indexing aggregate-rebuild pass, which folds per-file
// scan results into one in-memory MasterIndex the same way this builds one
// ManifoldIndex from per-file doc fields.
package index

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// GetOrBuild returns the cached ManifoldIndex if one exists and its stored
// parameters match cfg, otherwise rebuilds it from scratch and caches the
// result.
func GetOrBuild(ctx context.Context, st *store.Store, cfg signature.Config) (*store.ManifoldIndex, error) {
	if cached, ok, err := st.GetCachedIndex(ctx); err != nil {
		return nil, err
	} else if ok && sameParams(cached.Meta, cfg) {
		return cached, nil
	}

	idx, err := Build(ctx, st, cfg)
	if err != nil {
		return nil, err
	}
	if err := st.PutCachedIndex(ctx, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func sameParams(m store.IndexMeta, cfg signature.Config) bool {
	return m.WindowBytes == cfg.WindowBytes &&
		m.StrideBytes == cfg.StrideBytes &&
		m.Precision == cfg.Precision &&
		m.HazardPercentile == cfg.HazardPercentile
}

// Build re-encodes every text file's document under cfg and folds every
// window into the signature occurrence map.
func Build(ctx context.Context, st *store.Store, cfg signature.Config) (*store.ManifoldIndex, error) {
	idx := &store.ManifoldIndex{
		Signatures: make(map[string]store.SignatureEntry),
		Documents:  make(map[string]store.DocumentEntry),
		Meta: store.IndexMeta{
			WindowBytes:      cfg.WindowBytes,
			StrideBytes:      cfg.StrideBytes,
			Precision:        cfg.Precision,
			HazardPercentile: cfg.HazardPercentile,
			Totals:           make(map[string]int),
		},
	}

	var allHazards []float64

	err := st.ScanFiles(ctx, "", store.ReadBatchSize, func(batch []store.FileBatch) error {
		for _, fb := range batch {
			doc, ok := fb.Fields[store.FieldDoc]
			if !ok || strings.HasPrefix(doc, "[BINARY") {
				continue
			}
			body := compress.DecodeString(doc)
			if len(body) == 0 {
				continue
			}

			encoded := signature.Encode(body, cfg)
			idx.Documents[fb.Rel] = store.DocumentEntry{
				Characters:  utf8.RuneCount(body),
				Bytes:       len(body),
				WindowCount: len(encoded.Windows),
			}

			for _, w := range encoded.Windows {
				sig := w.Signature(cfg.Precision)
				entry, seen := idx.Signatures[sig]
				if !seen {
					entry.Prototype = store.PrototypeRef{
						Text:           string(encoded.Prototypes[sig]),
						DocID:          fb.Rel,
						ByteRangeStart: w.ByteStart,
						ByteRangeEnd:   w.ByteEnd,
					}
				}
				entry.Occurrences = append(entry.Occurrences, store.Occurrence{
					DocID:          fb.Rel,
					ByteRangeStart: w.ByteStart,
					ByteRangeEnd:   w.ByteEnd,
					Hazard:         w.Hazard,
				})
				entry.Hazard.Add(w.Hazard)
				idx.Signatures[sig] = entry
				allHazards = append(allHazards, w.Hazard)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	idx.Meta.Totals["documents"] = len(idx.Documents)
	idx.Meta.Totals["signatures"] = len(idx.Signatures)
	idx.Meta.HazardThreshold = signature.HazardThresholdOf(allHazards, cfg.HazardPercentile)

	return idx, nil
}

// Filter returns the subset of idx whose occurrences fall under scopeGlob,
// dropping documents and signatures left with no remaining occurrences.
func Filter(idx *store.ManifoldIndex, scopeGlob string) *store.ManifoldIndex {
	if scopeGlob == "" {
		return idx
	}

	out := &store.ManifoldIndex{
		Signatures: make(map[string]store.SignatureEntry),
		Documents:  make(map[string]store.DocumentEntry),
		Meta:       idx.Meta,
	}
	for sig, entry := range idx.Signatures {
		var kept []store.Occurrence
		var hazard store.HazardStats
		for _, occ := range entry.Occurrences {
			match, _ := doublestar.Match(scopeGlob, occ.DocID)
			if !match {
				continue
			}
			kept = append(kept, occ)
			hazard.Add(occ.Hazard)
		}
		if len(kept) == 0 {
			continue
		}
		entry.Occurrences = kept
		entry.Hazard = hazard
		out.Signatures[sig] = entry
	}
	for rel, doc := range idx.Documents {
		if match, _ := doublestar.Match(scopeGlob, rel); match {
			out.Documents[rel] = doc
		}
	}
	return out
}
