package risk

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/depgraph"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

func newMockStore(t *testing.T) (*store.Store, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	return store.NewFromClient(rdb), mock
}

func testCfg() signature.Config {
	return signature.Config{WindowBytes: 16, StrideBytes: 8, Precision: 3, HazardPercentile: 0.9}
}

func TestForFileFusesChaosBlastAndChurn(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	blob := store.ChaosBlob{ChaosScore: 0.5, CollapseRisk: store.RiskModerate}
	data, err := json.Marshal(blob)
	require.NoError(t, err)
	mock.ExpectHGet("manifold:file:a.py", store.FieldChaos).SetVal(compress.EncodeString(data))

	g := depgraph.Build(map[string]string{
		"a.py": "",
		"b.py": "import a\n",
	})

	lookup := func(rel string) (float64, bool) {
		if rel == "a.py" {
			return 0.8, true
		}
		return 0, false
	}

	s, err := ForFile(ctx, st, "a.py", testCfg(), g, lookup)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, 1, s.BlastRadius)
	require.True(t, s.HasChurn)
	require.InDelta(t, 0.4*0.5+0.3*(1.0/50.0)+0.3*0.8, s.Combined, 1e-9)
}

func TestForFileMissingFileReturnsNil(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectHGet("manifold:file:missing.py", store.FieldChaos).RedisNil()
	mock.ExpectHGet("manifold:file:missing.py", store.FieldDoc).RedisNil()

	s, err := ForFile(ctx, st, "missing.py", testCfg(), nil, nil)
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestForFileNilGraphUsesZeroBlastRadius(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	blob := store.ChaosBlob{ChaosScore: 0.3}
	data, err := json.Marshal(blob)
	require.NoError(t, err)
	mock.ExpectHGet("manifold:file:a.py", store.FieldChaos).SetVal(compress.EncodeString(data))

	s, err := ForFile(ctx, st, "a.py", testCfg(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, 0, s.BlastRadius)
	require.False(t, s.HasChurn)
}
