package search

import (
	"context"
	"sort"
	"strings"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// SequenceMatch is a file whose window-signature sequence contains the
// candidate's run contiguously, at StartIndex for Length windows.
type SequenceMatch struct {
	DocID      string
	StartIndex int
	Length     int
}

// Sequence implements spec.md §4.6 "Signature sequence search": encode a
// candidate text, then walk every indexed file's own window-signature
// sequence to find the longest contiguous run matching the candidate's,
// used for provenance lookup (original_source's snippet-to-source tracing).
func Sequence(ctx context.Context, st *store.Store, candidate []byte, cfg signature.Config) ([]SequenceMatch, error) {
	target := signatureSequence(candidate, cfg)
	if len(target) == 0 {
		return nil, nil
	}

	var matches []SequenceMatch
	err := st.ScanFiles(ctx, "", store.ReadBatchSize, func(batch []store.FileBatch) error {
		for _, fb := range batch {
			doc, ok := fb.Fields[store.FieldDoc]
			if !ok || strings.HasPrefix(doc, "[BINARY") {
				continue
			}
			body := compress.DecodeString(doc)
			sigs := signatureSequence(body, cfg)
			if start, length := longestContiguousRun(sigs, target); length > 0 {
				matches = append(matches, SequenceMatch{DocID: fb.Rel, StartIndex: start, Length: length})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Length > matches[j].Length })
	return matches, nil
}

func signatureSequence(content []byte, cfg signature.Config) []string {
	result := signature.Encode(content, cfg)
	sigs := make([]string, len(result.Windows))
	for i, w := range result.Windows {
		sigs[i] = w.Signature(cfg.Precision)
	}
	return sigs
}

// longestContiguousRun returns the start index and length of the longest
// run in haystack that matches a prefix of needle starting at that point.
func longestContiguousRun(haystack, needle []string) (start, length int) {
	if len(needle) == 0 {
		return 0, 0
	}
	bestStart, bestLen := -1, 0
	for i := range haystack {
		if haystack[i] != needle[0] {
			continue
		}
		l := 1
		for l < len(needle) && i+l < len(haystack) && haystack[i+l] == needle[l] {
			l++
		}
		if l > bestLen {
			bestLen = l
			bestStart = i
		}
	}
	return bestStart, bestLen
}
