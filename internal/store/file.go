package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// PutFile writes one file record's hash fields, registers it in the
// file-list sorted set (scored by byteLen), and invalidates the cached
// index as the final step (spec §4.3).
func (s *Store) PutFile(ctx context.Context, rel string, fields map[string]string, byteLen int64) error {
	pipe := s.rdb.Pipeline()
	if len(fields) > 0 {
		values := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			values[k] = v
		}
		pipe.HSet(ctx, fileKey(rel), values)
	}
	pipe.ZAdd(ctx, fileListKey, redis.Z{Score: float64(byteLen), Member: rel})
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return s.InvalidateCachedIndex(ctx)
}

// FileWrite is one record in a bulk ingest write.
type FileWrite struct {
	Rel     string
	Fields  map[string]string
	ByteLen int64
}

// PutFileBatch pipelines writes in groups of WriteBatchSize, non-
// transactionally, flushing every 200 hashes as ingest walks the tree.
// Invalidates the cached index once after the whole batch lands.
func (s *Store) PutFileBatch(ctx context.Context, writes []FileWrite) error {
	for start := 0; start < len(writes); start += WriteBatchSize {
		end := start + WriteBatchSize
		if end > len(writes) {
			end = len(writes)
		}
		chunk := writes[start:end]

		pipe := s.rdb.Pipeline()
		for _, w := range chunk {
			if len(w.Fields) > 0 {
				values := make(map[string]interface{}, len(w.Fields))
				for k, v := range w.Fields {
					values[k] = v
				}
				pipe.HSet(ctx, fileKey(w.Rel), values)
			}
			pipe.ZAdd(ctx, fileListKey, redis.Z{Score: float64(w.ByteLen), Member: w.Rel})
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	if len(writes) == 0 {
		return nil
	}
	return s.InvalidateCachedIndex(ctx)
}

// GetFileField fetches one field of a file record.
func (s *Store) GetFileField(ctx context.Context, rel, field string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, fileKey(rel), field).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// GetFileFields fetches every field of a file record.
func (s *Store) GetFileFields(ctx context.Context, rel string) (map[string]string, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, fileKey(rel)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return fields, true, nil
}

// GetFileFieldsBatch fetches full records for many files, pipelining HGETALL
// calls in groups of ReadBatchSize to amortize round-trips (spec §4.3).
func (s *Store) GetFileFieldsBatch(ctx context.Context, rels []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(rels))

	for start := 0; start < len(rels); start += ReadBatchSize {
		end := start + ReadBatchSize
		if end > len(rels) {
			end = len(rels)
		}
		chunk := rels[start:end]

		pipe := s.rdb.Pipeline()
		cmds := make([]*redis.MapStringStringCmd, len(chunk))
		for i, rel := range chunk {
			cmds[i] = pipe.HGetAll(ctx, fileKey(rel))
		}
		if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
			return nil, err
		}
		for i, rel := range chunk {
			fields, err := cmds[i].Result()
			if err != nil || len(fields) == 0 {
				continue
			}
			out[rel] = fields
		}
	}
	return out, nil
}

// DeleteFile removes a file's hash record and its file-list entry.
func (s *Store) DeleteFile(ctx context.Context, rel string) error {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, fileKey(rel))
	pipe.ZRem(ctx, fileListKey, rel)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return s.InvalidateCachedIndex(ctx)
}

// FileExists reports whether a file record exists.
func (s *Store) FileExists(ctx context.Context, rel string) (bool, error) {
	n, err := s.rdb.Exists(ctx, fileKey(rel)).Result()
	return n > 0, err
}

// ClearNamespace wipes every manifold:* key. Destructive and unconditional
// (spec §5 "owned exclusively by this service").
func (s *Store) ClearNamespace(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, Namespace+"*", 1000).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 1000 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}
