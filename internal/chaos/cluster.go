package chaos

import (
	"context"
	"math"

	"github.com/standardbeagle/manifold/internal/store"
)

// Point is a file projected into (coherence, entropy) space.
type Point struct {
	Rel       string
	Coherence float64
	Entropy   float64
}

// Cluster is one k-means cluster: its centroid, member points, and a
// heuristic label derived from the centroid's position relative to the
// dynamic thresholds.
type Cluster struct {
	Label    string
	Centroid Point
	Members  []string
}

const maxLloydIterations = 100

// Clusters runs 2-D k-means (Lloyd's algorithm) over every file's
// (coherence, entropy) under glob, with k = min(requested, corpus size)
// (spec.md §4.7 "Structural clustering").
func Clusters(ctx context.Context, st *store.Store, glob string, requestedK int) ([]Cluster, error) {
	blobs, err := collectBlobs(ctx, st, glob)
	if err != nil {
		return nil, err
	}
	if len(blobs) == 0 {
		return nil, nil
	}

	points := make([]Point, 0, len(blobs))
	triples := make(map[string]chaosTriple, len(blobs))
	for rel, b := range blobs {
		points = append(points, Point{Rel: rel, Coherence: b.Coherence, Entropy: b.Entropy})
		triples[rel] = chaosTriple{ChaosScore: b.ChaosScore, Coherence: b.Coherence, Entropy: b.Entropy}
	}

	k := requestedK
	if k > len(points) {
		k = len(points)
	}
	if k < 1 {
		k = 1
	}

	centroids := seedCentroids(points, k)
	assignments := make([]int, len(points))

	for iter := 0; iter < maxLloydIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		centroids = recomputeCentroids(points, assignments, k, centroids)
		if !changed {
			break
		}
	}

	thresholds := DynamicThresholds(triples)

	clusters := make([]Cluster, k)
	for i := range clusters {
		clusters[i].Centroid = centroids[i]
		clusters[i].Label = labelCluster(centroids[i], thresholds)
	}
	for i, p := range points {
		c := assignments[i]
		clusters[c].Members = append(clusters[c].Members, p.Rel)
	}
	return clusters, nil
}

func seedCentroids(points []Point, k int) []Point {
	centroids := make([]Point, k)
	step := len(points) / k
	if step < 1 {
		step = 1
	}
	for i := 0; i < k; i++ {
		idx := (i * step) % len(points)
		centroids[i] = Point{Coherence: points[idx].Coherence, Entropy: points[idx].Entropy}
	}
	return centroids
}

func nearestCentroid(p Point, centroids []Point) int {
	best, bestDist := 0, math.MaxFloat64
	for i, c := range centroids {
		d := sqDist(p, c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func sqDist(a, b Point) float64 {
	dc := a.Coherence - b.Coherence
	de := a.Entropy - b.Entropy
	return dc*dc + de*de
}

func recomputeCentroids(points []Point, assignments []int, k int, previous []Point) []Point {
	sums := make([]Point, k)
	counts := make([]int, k)
	for i, p := range points {
		c := assignments[i]
		sums[c].Coherence += p.Coherence
		sums[c].Entropy += p.Entropy
		counts[c]++
	}
	out := make([]Point, k)
	for i := range out {
		if counts[i] == 0 {
			out[i] = previous[i] // keep stale centroid for empty clusters
			continue
		}
		out[i] = Point{
			Coherence: sums[i].Coherence / float64(counts[i]),
			Entropy:   sums[i].Entropy / float64(counts[i]),
		}
	}
	return out
}

// labelCluster derives a heuristic string label from the centroid's
// position relative to the dynamic thresholds (spec.md §4.7).
func labelCluster(c Point, t Thresholds) string {
	switch {
	case c.Coherence <= t.CoherenceLow && c.Entropy >= t.EntropyHigh:
		return "HIGH-CHAOS"
	case c.Entropy >= t.EntropyHigh:
		return "DENSE/ENTROPIC"
	case c.Coherence >= t.CoherenceHigh && c.Entropy <= t.EntropyLow:
		return "SPARSE"
	case c.Coherence >= t.CoherenceHigh:
		return "HIGH-COHERENCE"
	default:
		return "MIXED-FLUCTUATION"
	}
}
