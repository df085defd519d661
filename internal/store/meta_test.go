package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutMetaThenGetMeta(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	meta := IngestMetadata{TextFiles: 3, TotalBytes: 1024, Root: "/repo"}
	data := `{"text_files":3,"binary_files":0,"total_bytes":1024,"signatures":0,"skipped":0,"errors":0,"elapsed_s":0,"root":"/repo","timestamp":"","avg_chaos":0,"high_risk_files":0}`

	mock.Regexp().ExpectSet(ingestMetaKey, `.*`, 0).SetVal("OK")
	require.NoError(t, s.PutMeta(ctx, meta))

	mock.ExpectGet(ingestMetaKey).SetVal(data)
	got, ok, err := s.GetMeta(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, got.TextFiles)
	require.Equal(t, "/repo", got.Root)
}

func TestGetMetaAbsentReturnsFalse(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectGet(ingestMetaKey).RedisNil()

	got, ok, err := s.GetMeta(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}
