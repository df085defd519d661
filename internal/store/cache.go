package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/standardbeagle/manifold/internal/compress"
)

// PutCachedIndex writes the ManifoldIndex aggregate as a single SET of
// base64(zstd(JSON(...))) — atomic from the store's perspective (spec §4.3,
// testable property 7).
func (s *Store) PutCachedIndex(ctx context.Context, idx *ManifoldIndex) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, activeIndexKey, compress.EncodeString(data), 0).Err()
}

// GetCachedIndex reads the cached ManifoldIndex. Readers tolerate a missing
// or stale cache by treating (nil, false, nil) as "rebuild".
func (s *Store) GetCachedIndex(ctx context.Context) (*ManifoldIndex, bool, error) {
	raw, err := s.rdb.Get(ctx, activeIndexKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data := compress.DecodeString(raw)
	var idx ManifoldIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		// A corrupt or foreign value at this key is treated as absent: the
		// caller rebuilds rather than failing the query.
		return nil, false, nil
	}
	return &idx, true, nil
}

// InvalidateCachedIndex evicts the cached ManifoldIndex. PutFile,
// PutFileBatch and DeleteFile call this as their final step; PutFact,
// DeleteFact and PutMeta do not call it, and ClearNamespace removes the key
// along with the rest of the namespace.
func (s *Store) InvalidateCachedIndex(ctx context.Context) error {
	err := s.rdb.Del(ctx, activeIndexKey).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
