package env

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/go-redis/redis/v8"
)

// Store is the pluggable persistence backend for env.HTTP. Keys are
// opaque storage keys (pkg/env/keys.go constants, used as-is); values
// are raw JSON bytes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// BadgerStore is the default single-node Store, grounded on the
// gobSet/gobGet BadgerDB helpers in cmd/deflix-stremio/storage.go,
// generalized from gob-encoded cache items to raw JSON bucket bytes.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "env: opening badger store", Err: err}
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Kind: ErrStorage, Message: "env: badger get " + key, Err: err}
	}
	return value, true, nil
}

func (s *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if value == nil {
			return txn.Delete([]byte(key))
		}
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return &Error{Kind: ErrStorage, Message: "env: badger set " + key, Err: err}
	}
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

// RedisStore is a shared-across-nodes Store option, grounded on the
// goCache Redis fallback in cmd/deflix-stremio/storage.go, used here in
// place of BadgerStore for every bucket, so that multiple aggrecored
// processes sharing one account see the same data.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Kind: ErrStorage, Message: "env: redis get " + key, Err: err}
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
			return &Error{Kind: ErrStorage, Message: "env: redis del " + key, Err: err}
		}
		return nil
	}
	if err := s.rdb.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return &Error{Kind: ErrStorage, Message: "env: redis set " + key, Err: err}
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
