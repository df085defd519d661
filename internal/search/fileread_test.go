package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/store"
)

func TestGetFileReturnsNumberedLines(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectHGet("manifold:file:a.py", store.FieldDoc).SetVal(compress.EncodeString([]byte("x = 1\ny = 2")))

	lines, suggestions, err := GetFile(ctx, st, "a.py")
	require.NoError(t, err)
	require.Nil(t, suggestions)
	require.Len(t, lines, 2)
	require.Equal(t, 1, lines[0].Number)
	require.Equal(t, "x = 1", lines[0].Text)
}

func TestGetFileMissingSuggestsBasenames(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectHGet("manifold:file:pkg/helper.py", store.FieldDoc).RedisNil()
	mock.ExpectZRange("manifold:file_list", 0, -1).SetVal([]string{"src/helper.py", "src/other.py"})

	lines, suggestions, err := GetFile(ctx, st, "pkg/helper.py")
	require.NoError(t, err)
	require.Nil(t, lines)
	require.Equal(t, []string{"src/helper.py"}, suggestions)
}

func TestFormatSuggestions(t *testing.T) {
	require.Contains(t, FormatSuggestions("x.py", nil), "not found")
	require.Contains(t, FormatSuggestions("x.py", []string{"y.py"}), "y.py")
}
