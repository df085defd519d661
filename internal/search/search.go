// Package search implements retrieval over the index store (C6): regex
// search with a literal-escape fallback, file read with basename-suggestion
// recovery, signature lookup, and signature proximity/sequence search.
// The regex/literal dispatch is grounded on the teacher's hybrid regex
// engine (internal/regex_analyzer/engine.go), minus its trigram
// acceleration layer, which has no corpus-wide index to draw candidates
// from in this system's schema.
package search

import (
	"context"
	"regexp"
	"strings"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/store"
)

const (
	maxMatchesPerFile = 5
	contextLines      = 2
)

// Match is one matched line within a file, with surrounding context.
type Match struct {
	Line        int // 1-based
	Text        string
	ContextPre  []string
	ContextPost []string
}

// FileResult aggregates every match found in one file.
type FileResult struct {
	Rel        string
	MatchCount int
	Matches    []Match
}

// compilePattern implements spec.md §4.6's regex/literal fallback: treat
// query as a regex, and on compile failure fall back to a literal,
// case-sensitivity-aware match via regexp.QuoteMeta.
func compilePattern(query string, caseSensitive bool) *regexp.Regexp {
	pattern := query
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	if re, err := regexp.Compile(pattern); err == nil {
		return re
	}

	literal := regexp.QuoteMeta(query)
	if !caseSensitive {
		literal = "(?i)" + literal
	}
	// QuoteMeta output is always a valid pattern; MustCompile cannot fail here.
	return regexp.MustCompile(literal)
}

// Search scans every FileRecord's `doc` field matching fileGlob (empty
// matches everything), skipping binary placeholders, and returns up to
// maxResults files with their top matches.
func Search(ctx context.Context, st *store.Store, query, fileGlob string, maxResults int, caseSensitive bool) ([]FileResult, error) {
	re := compilePattern(query, caseSensitive)

	var results []FileResult
	err := st.ScanFiles(ctx, fileGlob, store.ReadBatchSize, func(batch []store.FileBatch) error {
		for _, fb := range batch {
			if len(results) >= maxResults {
				return nil
			}
			doc, ok := fb.Fields[store.FieldDoc]
			if !ok || strings.HasPrefix(doc, "[BINARY") {
				continue
			}
			body := string(compress.DecodeString(doc))
			fr := matchFile(fb.Rel, body, re)
			if fr.MatchCount > 0 {
				results = append(results, fr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func matchFile(rel, body string, re *regexp.Regexp) FileResult {
	lines := strings.Split(body, "\n")
	fr := FileResult{Rel: rel}

	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		fr.MatchCount++
		if len(fr.Matches) >= maxMatchesPerFile {
			continue
		}
		fr.Matches = append(fr.Matches, Match{
			Line:        i + 1,
			Text:        line,
			ContextPre:  sliceContext(lines, i-contextLines, i),
			ContextPost: sliceContext(lines, i+1, i+1+contextLines),
		})
	}
	return fr
}

func sliceContext(lines []string, start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	return append([]string(nil), lines[start:end]...)
}
