package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PutFact stores a raw UTF-8 fact payload under a newly minted id and
// returns that id (manifold:docs:{fact_id}, spec §4.3). Facts back the
// provenance-injection workflow original_source's sidecar exposes as
// inject_fact/remove_fact; the store primitive is in scope even though the
// MCP-tool wrapper around it is not (spec §1).
func (s *Store) PutFact(ctx context.Context, payload string) (string, error) {
	factID := uuid.NewString()
	if err := s.rdb.Set(ctx, factKey(factID), payload, 0).Err(); err != nil {
		return "", err
	}
	return factID, nil
}

// GetFact reads a fact payload by id.
func (s *Store) GetFact(ctx context.Context, factID string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, factKey(factID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// DeleteFact removes a fact payload by id.
func (s *Store) DeleteFact(ctx context.Context, factID string) error {
	return s.rdb.Del(ctx, factKey(factID)).Err()
}
