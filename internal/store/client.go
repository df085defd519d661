// Package store implements the index store protocol (C3): a typed client
// over a Redis-compatible key/value server holding the key schema in
// spec §4.3, with pipelined batch I/O and atomic cache invalidation.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	manifolderrors "github.com/standardbeagle/manifold/internal/errors"
)

// Namespace is the key prefix this service owns exclusively (spec §5).
const Namespace = "manifold:"

// WriteBatchSize is the pipeline flush size for bulk hash writes (spec §4.3).
const WriteBatchSize = 200

// ReadBatchSize is the pipeline batch size for bulk HGET-style reads.
const ReadBatchSize = 500

// Store is a typed client over a Redis-compatible KV server.
type Store struct {
	rdb *redis.Client
}

// Options configures the underlying Redis client.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New constructs a Store and verifies connectivity with PING.
func New(ctx context.Context, opts Options) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	s := &Store{rdb: rdb}
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromClient wraps an already-constructed redis.Client, useful for tests
// against miniredis or a shared connection pool.
func NewFromClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Ping surfaces KvUnavailable if the server cannot be reached.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return manifolderrors.New(manifolderrors.KvUnavailable, "ping", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Client exposes the underlying redis.Client for operations (INFO, DBSIZE)
// that have no typed wrapper.
func (s *Store) Client() *redis.Client {
	return s.rdb
}

func fileKey(rel string) string {
	return fmt.Sprintf("%sfile:%s", Namespace, rel)
}

func factKey(factID string) string {
	return fmt.Sprintf("%sdocs:%s", Namespace, factID)
}

const (
	fileListKey    = Namespace + "file_list"
	ingestMetaKey  = Namespace + "meta:ingest"
	activeIndexKey = Namespace + "active_index"
)

// relFromFileKey extracts the relative path from a manifold:file:{rel} key.
func relFromFileKey(key string) (string, bool) {
	prefix := Namespace + "file:"
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return "", false
	}
	return key[len(prefix):], true
}
