package store

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/redis/go-redis/v9"
)

// ListFiles enumerates relative paths from the file-list sorted set
// (preferred path), falling back to a SCAN over hash keys when the sorted
// set is empty but hash keys exist (defensive against partial writes).
func (s *Store) ListFiles(ctx context.Context, glob string, limit int) ([]string, error) {
	members, err := s.rdb.ZRange(ctx, fileListKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		members, err = s.scanFileKeysFallback(ctx)
		if err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(members))
	for _, rel := range members {
		if glob != "" {
			match, _ := doublestar.Match(glob, rel)
			if !match {
				continue
			}
		}
		out = append(out, rel)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) scanFileKeysFallback(ctx context.Context) ([]string, error) {
	var rels []string
	iter := s.rdb.Scan(ctx, 0, Namespace+"file:*", 500).Iterator()
	for iter.Next(ctx) {
		if rel, ok := relFromFileKey(iter.Val()); ok {
			rels = append(rels, rel)
		}
	}
	return rels, iter.Err()
}

// FileBatch is one page of ScanFiles results: the relative path and its
// full hash record.
type FileBatch struct {
	Rel    string
	Fields map[string]string
}

// ScanFiles streams file records matching glob in batches of batchSize,
// calling fn for each page. Used by search/chaos batch paths that need to
// read `doc` or `chaos` across the whole corpus without one round-trip
// per file.
func (s *Store) ScanFiles(ctx context.Context, glob string, batchSize int, fn func([]FileBatch) error) error {
	if batchSize <= 0 {
		batchSize = ReadBatchSize
	}

	rels, err := s.ListFiles(ctx, glob, 0)
	if err != nil {
		return err
	}

	for start := 0; start < len(rels); start += batchSize {
		end := start + batchSize
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
			return err
		}

		batch := make([]FileBatch, 0, len(chunk))
		for i, rel := range chunk {
			fields, err := cmds[i].Result()
			if err != nil || len(fields) == 0 {
				continue
			}
			batch = append(batch, FileBatch{Rel: rel, Fields: fields})
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}
