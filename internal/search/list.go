package search

import (
	"context"

	"github.com/standardbeagle/manifold/internal/store"
)

// List implements spec.md §4.6 "List files": the preferred path uses the
// file-list sorted set; store.ListFiles falls back to a hash-key scan when
// it's empty.
func List(ctx context.Context, st *store.Store, glob string, limit int) ([]string, error) {
	return st.ListFiles(ctx, glob, limit)
}
