package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// PutMeta writes the singleton ingest metadata document.
func (s *Store) PutMeta(ctx context.Context, meta IngestMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, ingestMetaKey, data, 0).Err()
}

// GetMeta reads the ingest metadata document, returning (nil, false, nil)
// if no ingest has ever run.
func (s *Store) GetMeta(ctx context.Context) (*IngestMetadata, bool, error) {
	data, err := s.rdb.Get(ctx, ingestMetaKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var meta IngestMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false, err
	}
	return &meta, true, nil
}
