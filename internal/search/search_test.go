package search

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/store"
)

func newMockStore(t *testing.T) (*store.Store, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	return store.NewFromClient(rdb), mock
}

func TestSearchFindsMatchWithContext(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	body := "line1\nline2\nneedle here\nline4\nline5\n"
	mock.ExpectZRange("manifold:file_list", 0, -1).SetVal([]string{"a.py"})
	mock.ExpectHGetAll("manifold:file:a.py").SetVal(map[string]string{
		store.FieldDoc: compress.EncodeString([]byte(body)),
	})

	results, err := Search(ctx, st, "needle", "", 10, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1, results[0].MatchCount)
	require.Equal(t, 3, results[0].Matches[0].Line)
	require.Len(t, results[0].Matches[0].ContextPre, 2)
	require.Len(t, results[0].Matches[0].ContextPost, 2)
}

func TestSearchSkipsBinaryRecords(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectZRange("manifold:file_list", 0, -1).SetVal([]string{"logo.bin"})
	mock.ExpectHGetAll("manifold:file:logo.bin").SetVal(map[string]string{
		store.FieldDoc: "[BINARY sha256=abc bytes=4]",
	})

	results, err := Search(ctx, st, "anything", "", 10, true)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchFallsBackToLiteralOnInvalidRegex(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	body := "cost is (unbalanced and literal\n"
	mock.ExpectZRange("manifold:file_list", 0, -1).SetVal([]string{"a.py"})
	mock.ExpectHGetAll("manifold:file:a.py").SetVal(map[string]string{
		store.FieldDoc: compress.EncodeString([]byte(body)),
	})

	results, err := Search(ctx, st, "(unbalanced", "", 10, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
