package risk

import (
	"context"
	"sort"

	"github.com/standardbeagle/manifold/internal/chaos"
	"github.com/standardbeagle/manifold/internal/churn"
	"github.com/standardbeagle/manifold/internal/depgraph"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// ChurnLookup resolves a churn score for rel, true if one is known. A nil
// ChurnLookup is treated as "no churn input" for every file (two-input
// weighting).
type ChurnLookup func(rel string) (score float64, ok bool)

// ForFile fuses one file's chaos score (computed/loaded via internal/chaos)
// with its dependency-graph blast radius (from depGraph, which may be nil
// if rel has no graph entry — Python-only per §4.9, so non-Python files
// fuse with blast_radius=0) and an optional churn lookup.
func ForFile(ctx context.Context, st *store.Store, rel string, cfg signature.Config, depGraph *depgraph.Graph, churnLookup ChurnLookup) (*Score, error) {
	c, err := chaos.Of(ctx, st, rel, cfg)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}

	blastRadius := 0
	if depGraph != nil {
		if info, ok := depGraph.Info(rel); ok {
			blastRadius = info.BlastRadius
		}
	}

	var churnScore float64
	var hasChurn bool
	if churnLookup != nil {
		churnScore, hasChurn = churnLookup(rel)
	}

	score := Fuse(rel, c.ChaosScore, blastRadius, churnScore, hasChurn)
	return &score, nil
}

// ChurnLookupFromRepo builds a ChurnLookup over a single `git log --numstat`
// scan of repoRoot, the vectorized form internal/churn.Analyzer.RepoChurn
// provides rather than one subprocess per file.
func ChurnLookupFromRepo(ctx context.Context, repoRoot, globPattern string) (ChurnLookup, error) {
	metrics, err := churn.New(repoRoot).RepoChurn(ctx, globPattern)
	if err != nil {
		return nil, err
	}
	return func(rel string) (float64, bool) {
		m, ok := metrics[rel]
		if !ok {
			return 0, false
		}
		return m.ChurnScore, true
	}, nil
}

// Batch computes risk scores for every file the store has a chaos blob or
// doc for under glob, sorted by Combined descending, capped at maxFiles
// (0 = unlimited), mirroring internal/chaos.Batch's ranking shape.
func Batch(ctx context.Context, st *store.Store, glob string, maxFiles int, cfg signature.Config, depGraph *depgraph.Graph, churnLookup ChurnLookup) ([]Score, error) {
	ranked, err := chaos.Batch(ctx, st, glob, 0)
	if err != nil {
		return nil, err
	}

	scores := make([]Score, 0, len(ranked))
	for _, r := range ranked {
		blastRadius := 0
		if depGraph != nil {
			if info, ok := depGraph.Info(r.Rel); ok {
				blastRadius = info.BlastRadius
			}
		}
		var churnScore float64
		var hasChurn bool
		if churnLookup != nil {
			churnScore, hasChurn = churnLookup(r.Rel)
		}
		scores = append(scores, Fuse(r.Rel, r.ChaosScore, blastRadius, churnScore, hasChurn))
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].Combined > scores[j].Combined })
	if maxFiles > 0 && len(scores) > maxFiles {
		scores = scores[:maxFiles]
	}
	return scores, nil
}
