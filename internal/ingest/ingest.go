package ingest

import (
	"context"
	"time"

	"github.com/standardbeagle/manifold/internal/store"
)

// Options configures a full repository ingest (spec.md §4.4, §6).
type Options struct {
	Root    string
	Recipe  Recipe
	ClearFirst bool
	// MaxBytesPerFile bounds the per-file read (spec.md §4.4 step 1).
	MaxBytesPerFile int64
}

// Result is the outcome of one Run, convertible to store.IngestMetadata.
type Result struct {
	Meta   store.IngestMetadata
	Errors []error
}

// Run walks Options.Root, builds one FileRecord per surviving file, and
// writes them to st in batches of store.WriteBatchSize, tracking the
// IngestMetadata counters spec.md §3 describes. Per-file failures are
// accumulated, not fatal (spec.md §4.4 "Error policy").
func Run(ctx context.Context, st *store.Store, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{}

	if opts.ClearFirst {
		if err := st.ClearNamespace(ctx); err != nil {
			return nil, err
		}
	}

	candidates, err := walk(opts.Root)
	if err != nil {
		return nil, err
	}

	var pending []store.FileWrite
	var sumHazard float64
	var chaosSamples int

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := st.PutFileBatch(ctx, pending)
		pending = pending[:0]
		return err
	}

	for _, c := range candidates {
		content, readErr := readCapped(c.abs, opts.MaxBytesPerFile)
		if readErr != nil {
			result.Errors = append(result.Errors, readErr)
			result.Meta.Skipped++
			continue
		}

		rec := BuildRecord(c.rel, content, opts.Recipe)

		if rec.IsBinary {
			result.Meta.BinaryFiles++
		} else {
			result.Meta.TextFiles++
		}
		if rec.HasSig {
			result.Meta.Signatures++
		}
		if rec.HasChaos {
			sumHazard += rec.ChaosAvg
			chaosSamples++
			if rec.HighRisk {
				result.Meta.HighRiskFiles++
			}
		}
		result.Meta.TotalBytes += rec.ByteLen

		pending = append(pending, store.FileWrite{Rel: c.rel, Fields: rec.Fields, ByteLen: rec.ByteLen})
		if len(pending) >= store.WriteBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	result.Meta.Root = opts.Root
	result.Meta.Timestamp = start.UTC().Format(time.RFC3339)
	result.Meta.ElapsedSeconds = time.Since(start).Seconds()
	if chaosSamples > 0 {
		result.Meta.AvgChaos = sumHazard / float64(chaosSamples)
	}

	if err := st.PutMeta(ctx, result.Meta); err != nil {
		return nil, err
	}
	return result, nil
}
