package signature

import (
	"math"
	"sort"
)

// deltaSigmaLeak is the integrator's tracking rate for the hazard quantizer.
const deltaSigmaLeak = 0.3

// Encode slides a fixed window over data and computes the coherence,
// entropy and hazard triple per window (spec §4.1). Empty input returns an
// empty result with HazardThreshold 0. Input no longer than cfg.WindowBytes
// yields exactly one window spanning the whole buffer; longer input yields a
// window every cfg.StrideBytes plus, where needed, a final window ending at
// the last byte.
func Encode(data []byte, cfg Config) *EncodeResult {
	result := &EncodeResult{
		Prototypes:       make(map[string][]byte),
		WindowBytes:      cfg.WindowBytes,
		StrideBytes:      cfg.StrideBytes,
		Precision:        cfg.Precision,
		HazardPercentile: cfg.HazardPercentile,
		OriginalBytes:    len(data),
	}

	if len(data) == 0 {
		return result
	}

	offsets := windowOffsets(len(data), cfg.WindowBytes, cfg.StrideBytes)
	offsetTable := buildCharOffsetTable(data)

	rawChaos := make([]float64, len(offsets))
	entropies := make([]float64, len(offsets))
	for i, off := range offsets {
		end := off + cfg.WindowBytes
		if end > len(data) {
			end = len(data)
		}
		window := data[off:end]
		rawChaos[i] = rawChaosSignal(window)
		entropies[i] = shannonEntropy(window)
	}

	normChaos := minMaxNormalize(rawChaos)

	windows := make([]ByteWindow, len(offsets))
	acc := 0.5
	highCount := 0
	for i, off := range offsets {
		end := off + cfg.WindowBytes
		if end > len(data) {
			end = len(data)
		}
		coherence := 1 - normChaos[i]

		high := normChaos[i] > acc
		if high {
			highCount++
		}
		acc = acc + deltaSigmaLeak*(normChaos[i]-acc)
		hazard := float64(highCount) / float64(i+1)

		windows[i] = ByteWindow{
			WindowIndex: i,
			ByteStart:   off,
			ByteEnd:     end,
			CharStart:   offsetTable.charIndex(off),
			CharEnd:     offsetTable.charIndex(end),
			Coherence:   clamp01(coherence),
			Entropy:     clamp01(entropies[i]),
			Hazard:      clamp01(hazard),
		}

		sig := windows[i].Signature(cfg.Precision)
		if _, seen := result.Prototypes[sig]; !seen {
			result.Prototypes[sig] = []byte(decodeReplacement(data[off:end]))
		}
	}

	result.Windows = windows
	result.HazardsSorted = sortedHazards(windows)
	result.HazardThreshold = hazardThreshold(result.HazardsSorted, cfg.HazardPercentile)

	return result
}

// windowOffsets computes the emission-ordered window start offsets per the
// windowing policy in spec §4.1.
func windowOffsets(n, windowBytes, strideBytes int) []int {
	if n <= windowBytes {
		return []int{0}
	}

	var offsets []int
	for off := 0; off+windowBytes <= n; off += strideBytes {
		offsets = append(offsets, off)
	}
	if len(offsets) == 0 {
		// windowBytes <= n but strideBytes never lands an offset because
		// the loop condition at off=0 already satisfies off+windowBytes<=n,
		// so this branch is unreachable in practice; kept for safety.
		offsets = append(offsets, 0)
	}

	tail := n - windowBytes
	if offsets[len(offsets)-1] != tail {
		offsets = append(offsets, tail)
	}
	return offsets
}

// rawChaosSignal computes log1p of the variance of the squared first
// differences of the window's bytes, the pre-normalized input to both
// coherence and the hazard quantizer.
func rawChaosSignal(w []byte) float64 {
	if len(w) < 2 {
		return 0
	}
	diffs := make([]float64, len(w)-1)
	for i := 0; i < len(w)-1; i++ {
		d := float64(int(w[i+1]) - int(w[i]))
		diffs[i] = d * d
	}
	mean := 0.0
	for _, d := range diffs {
		mean += d
	}
	mean /= float64(len(diffs))

	variance := 0.0
	for _, d := range diffs {
		delta := d - mean
		variance += delta * delta
	}
	variance /= float64(len(diffs))

	return math.Log1p(variance)
}

// shannonEntropy computes byte-histogram entropy normalized to [0,1].
func shannonEntropy(w []byte) float64 {
	if len(w) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range w {
		counts[b]++
	}
	n := float64(len(w))
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h / 8 // log2(256) == 8
}

// minMaxNormalize rescales values to [0,1]; a degenerate (constant) input
// normalizes to all zeros, which maximizes coherence — correct for a
// corpus-free buffer whose local variance never changes.
func minMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return out
	}
	spread := max - min
	for i, v := range values {
		out[i] = (v - min) / spread
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sortedHazards(windows []ByteWindow) []float64 {
	out := make([]float64, len(windows))
	for i, w := range windows {
		out[i] = w.Hazard
	}
	sort.Float64s(out)
	return out
}

// HazardThresholdOf computes the same floor((n-1)*p)-indexed hazard
// threshold as a single Encode call, but over an arbitrary (e.g.
// corpus-wide) set of hazard values. hazards need not be pre-sorted.
func HazardThresholdOf(hazards []float64, percentile float64) float64 {
	sorted := make([]float64, len(hazards))
	copy(sorted, hazards)
	sort.Float64s(sorted)
	return hazardThreshold(sorted, percentile)
}

// hazardThreshold picks hazardsSorted[floor(p*(n-1))] exactly, never
// interpolated (spec §3, testable property 4).
func hazardThreshold(hazardsSorted []float64, percentile float64) float64 {
	n := len(hazardsSorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(percentile * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return hazardsSorted[idx]
}
