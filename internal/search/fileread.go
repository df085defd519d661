package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/store"
)

const maxBasenameSuggestions = 10

// Line is one 1-based numbered line of a file's body.
type Line struct {
	Number int
	Text   string
}

// GetFile decompresses and numbers a file's body (spec.md §4.6 "File
// read"). If rel does not exist, it returns basename-substring suggestions
// from the file list instead.
func GetFile(ctx context.Context, st *store.Store, rel string) ([]Line, []string, error) {
	doc, ok, err := st.GetFileField(ctx, rel, store.FieldDoc)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		suggestions, sugErr := suggestBasenames(ctx, st, rel)
		if sugErr != nil {
			return nil, nil, sugErr
		}
		return nil, suggestions, nil
	}

	if strings.HasPrefix(doc, "[BINARY") {
		return []Line{{Number: 1, Text: doc}}, nil, nil
	}

	body := string(compress.DecodeString(doc))
	rows := strings.Split(body, "\n")
	lines := make([]Line, len(rows))
	for i, row := range rows {
		lines[i] = Line{Number: i + 1, Text: row}
	}
	return lines, nil, nil
}

func suggestBasenames(ctx context.Context, st *store.Store, rel string) ([]string, error) {
	all, err := st.ListFiles(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(filepath.Base(rel))

	var out []string
	for _, candidate := range all {
		if strings.Contains(strings.ToLower(filepath.Base(candidate)), needle) {
			out = append(out, candidate)
			if len(out) >= maxBasenameSuggestions {
				break
			}
		}
	}
	return out, nil
}

// FormatSuggestions renders the (lines=nil, suggestions) result of a missed
// GetFile lookup into a user-facing message.
func FormatSuggestions(rel string, suggestions []string) string {
	if len(suggestions) == 0 {
		return fmt.Sprintf("%s not found, no similar filenames", rel)
	}
	return fmt.Sprintf("%s not found, did you mean: %s", rel, strings.Join(suggestions, ", "))
}
