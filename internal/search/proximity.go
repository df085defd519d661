package search

import (
	"context"
	"math"
	"sort"

	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// ProximityMatch is one file whose signature lies within tolerance of the
// query signature, sorted ascending by deviation.
type ProximityMatch struct {
	Rel       string
	Deviation float64
}

// Proximity implements spec.md §4.6 "Signature proximity search": parse the
// target cA_sB_eC, keep files whose per-component max-absolute deviation is
// ≤ tolerance, and return the closest maxResults.
func Proximity(ctx context.Context, st *store.Store, target string, tolerance float64, maxResults int) ([]ProximityMatch, error) {
	coh, stab, ent, err := signature.Parse(target)
	if err != nil {
		return nil, err
	}

	var matches []ProximityMatch
	rels, err := st.ListFiles(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	fields, err := st.GetFileFieldsBatch(ctx, rels)
	if err != nil {
		return nil, err
	}

	for rel, f := range fields {
		sig, ok := f[store.FieldSig]
		if !ok || sig == "" {
			continue
		}
		c2, s2, e2, parseErr := signature.Parse(sig)
		if parseErr != nil {
			continue
		}
		deviation := maxAbs(c2-coh, s2-stab, e2-ent)
		if deviation <= tolerance {
			matches = append(matches, ProximityMatch{Rel: rel, Deviation: deviation})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Deviation < matches[j].Deviation })
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

func maxAbs(values ...float64) float64 {
	max := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max
}
