package chaos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/store"
)

func TestTrajectoryOfReturnsPerWindowSeries(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	body := []byte("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz0123456789")
	mock.ExpectHGet("manifold:file:a.py", store.FieldDoc).SetVal(compress.EncodeString(body))

	traj, err := TrajectoryOf(ctx, st, "a.py", testCfg())
	require.NoError(t, err)
	require.NotNil(t, traj)
	require.Greater(t, traj.WindowsAnalyzed, 0)
	require.Len(t, traj.Points, traj.WindowsAnalyzed)
	require.Equal(t, traj.Symbolic.Low+traj.Symbolic.Mid+traj.Symbolic.High, traj.WindowsAnalyzed)
}

func TestTrajectoryOfReturnsNilForBinary(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectHGet("manifold:file:b.bin", store.FieldDoc).SetVal("[BINARY sha256=ab bytes=2]")

	traj, err := TrajectoryOf(ctx, st, "b.bin", testCfg())
	require.NoError(t, err)
	require.Nil(t, traj)
}

func TestTrajectoryOfMissingFileReturnsNil(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectHGet("manifold:file:missing.py", store.FieldDoc).RedisNil()

	traj, err := TrajectoryOf(ctx, st, "missing.py", testCfg())
	require.NoError(t, err)
	require.Nil(t, traj)
}
