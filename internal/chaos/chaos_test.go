package chaos

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/manifold/internal/compress"
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

func TestOfReturnsStoredBlobWithoutRecompute(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	blob := store.ChaosBlob{ChaosScore: 0.4, Entropy: 0.5, Coherence: 0.6, CollapseRisk: store.RiskModerate, WindowsAnalyzed: 3}
	data, err := json.Marshal(blob)
	require.NoError(t, err)

	mock.ExpectHGet("manifold:file:a.py", store.FieldChaos).SetVal(compress.EncodeString(data))

	result, err := Of(ctx, st, "a.py", testCfg())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, 0.4, result.ChaosScore)
	require.Equal(t, store.RiskModerate, result.CollapseRisk)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOfComputesFromDocWhenBlobAbsent(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	body := []byte("the quick brown fox jumps over the lazy dog repeatedly for chaos analysis")
	mock.ExpectHGet("manifold:file:b.py", store.FieldChaos).RedisNil()
	mock.ExpectHGet("manifold:file:b.py", store.FieldDoc).SetVal(compress.EncodeString(body))
	mock.Regexp().ExpectHSet("manifold:file:b.py", "chaos", ".+").SetVal(1)
	mock.ExpectZAdd("manifold:file_list", redis.Z{Score: float64(len(body)), Member: "b.py"}).SetVal(1)
	mock.ExpectDel("manifold:active_index").SetVal(1)

	result, err := Of(ctx, st, "b.py", testCfg())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Greater(t, result.WindowsAnalyzed, 0)
}

func TestOfReturnsNilForBinaryFile(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectHGet("manifold:file:c.bin", store.FieldChaos).RedisNil()
	mock.ExpectHGet("manifold:file:c.bin", store.FieldDoc).SetVal("[BINARY sha256=abc bytes=4]")

	result, err := Of(ctx, st, "c.bin", testCfg())
	require.NoError(t, err)
	require.Nil(t, result)
}
