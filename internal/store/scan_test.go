package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListFilesFiltersByGlob(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectZRange(fileListKey, 0, -1).SetVal([]string{"a.py", "b.txt", "pkg/c.py"})

	rels, err := s.ListFiles(ctx, "**/*.py", 0)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.py", "pkg/c.py"}, rels)
}

func TestListFilesRespectsLimit(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectZRange(fileListKey, 0, -1).SetVal([]string{"a.py", "b.py", "c.py"})

	rels, err := s.ListFiles(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, rels, 2)
}

func TestScanFilesCallsFnPerPage(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectZRange(fileListKey, 0, -1).SetVal([]string{"a.py", "b.py"})
	mock.MatchExpectationsInOrder(false)
	mock.ExpectHGetAll(fileKey("a.py")).SetVal(map[string]string{FieldDoc: "a"})
	mock.ExpectHGetAll(fileKey("b.py")).SetVal(map[string]string{FieldDoc: "b"})

	var seen int
	err := s.ScanFiles(ctx, "", 10, func(batch []FileBatch) error {
		seen += len(batch)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, seen)
}
