// Package verify implements the snippet verifier (C8): given candidate text
// and the corpus-wide signature index, reports how much of the candidate's
// structural fingerprint already exists somewhere in the corpus. Grounded
// on the teacher's internal/regex_analyzer "score a candidate against a
// corpus" shape, re-targeted from substring matches to signature lookups.
package verify

import (
	"context"

	"github.com/standardbeagle/manifold/internal/index"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// Result is the report spec.md §4.8 describes.
type Result struct {
	TotalWindows   int
	MatchedWindows int
	GatedHits      int
	Coverage       float64
	MatchRatio     float64
	Verified       bool
	MatchedDocIDs  []string
	Reconstructed  []byte
	HasReconstruct bool
}

// Options configures one verification pass.
type Options struct {
	ScopeGlob   string
	Threshold   float64
	Reconstruct bool
}

// Verify encodes text under cfg, looks up every resulting window's
// signature in the (optionally scope-filtered) corpus index, and reports
// coverage/match-ratio/verified plus the matched doc_ids.
func Verify(ctx context.Context, st *store.Store, text []byte, cfg signature.Config, opts Options) (*Result, error) {
	corpus, err := index.GetOrBuild(ctx, st, cfg)
	if err != nil {
		return nil, err
	}
	if opts.ScopeGlob != "" {
		corpus = index.Filter(corpus, opts.ScopeGlob)
	}

	encoded := signature.Encode(text, cfg)
	result := &Result{TotalWindows: len(encoded.Windows)}
	if result.TotalWindows == 0 {
		return result, nil
	}

	docSeen := make(map[string]bool)
	for _, w := range encoded.Windows {
		sig := w.Signature(cfg.Precision)
		entry, ok := corpus.Signatures[sig]
		if !ok {
			continue
		}
		result.MatchedWindows++
		if w.Hazard <= corpus.Meta.HazardThreshold {
			result.GatedHits++
		}
		for _, occ := range entry.Occurrences {
			docSeen[occ.DocID] = true
		}
	}

	for docID := range docSeen {
		result.MatchedDocIDs = append(result.MatchedDocIDs, docID)
	}

	result.Coverage = float64(result.GatedHits) / float64(result.TotalWindows)
	result.MatchRatio = float64(result.MatchedWindows) / float64(result.TotalWindows)
	result.Verified = result.Coverage >= opts.Threshold

	if opts.Reconstruct {
		result.Reconstructed = reconstruct(encoded, cfg, corpus)
		result.HasReconstruct = true
	}

	return result, nil
}

// reconstruct concatenates prototype bytes in window order, overlapping by
// window_bytes - stride_bytes, taking only the non-overlapping tail each
// step after the first window (spec.md §4.8).
func reconstruct(encoded *signature.EncodeResult, cfg signature.Config, corpus *store.ManifoldIndex) []byte {
	overlap := cfg.WindowBytes - cfg.StrideBytes
	if overlap < 0 {
		overlap = 0
	}

	var out []byte
	for i, w := range encoded.Windows {
		sig := w.Signature(cfg.Precision)
		var proto []byte
		if entry, ok := corpus.Signatures[sig]; ok {
			proto = []byte(entry.Prototype.Text)
		} else if local, ok := encoded.Prototypes[sig]; ok {
			proto = local
		} else {
			continue
		}

		if i == 0 || overlap >= len(proto) {
			out = append(out, proto...)
			continue
		}
		out = append(out, proto[overlap:]...)
	}
	return out
}
