package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutFactMintsIDAndStores(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.Regexp().ExpectSet(`manifold:docs:.+`, `payload`, 0).SetVal("OK")

	id, err := s.PutFact(ctx, "payload")
	require.NoError(t, err)
	require.NotEmpty(t, id)
}

func TestGetFactMissingReturnsFalse(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectGet(factKey("nope")).RedisNil()

	v, ok, err := s.GetFact(ctx, "nope")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "", v)
}

func TestDeleteFact(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectDel(factKey("id1")).SetVal(1)

	require.NoError(t, s.DeleteFact(ctx, "id1"))
}
