package redisad

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/domain"
)

// Store keeps reviews as JSON entries of one Redis list. RPUSH is atomic, so concurrent
// appends from several API processes never interleave.
type Store struct {
	c   *redis.Client
	key string
}

func New(addr, pass string, db int, key string) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), key)
}

func NewWithClient(c *redis.Client, key string) *Store {
	if key == "" {
		key = "reviews"
	}
	return &Store{c: c, key: key}
}

func (s *Store) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *Store) Close() error { return s.c.Close() }

func (s *Store) Append(ctx context.Context, r domain.Review) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	n, err := s.c.RPush(ctx, s.key, b).Result()
	observability.ObserveStore("redis", "append", err)
	if err != nil {
		return err
	}
	observability.SetStoreSize(int(n))
	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.Review, error) {
	vals, err := s.c.LRange(ctx, s.key, 0, -1).Result()
	observability.ObserveStore("redis", "list", err)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Review, len(vals))
	for i, v := range vals {
		if err := json.Unmarshal([]byte(v), &out[i]); err != nil {
			return nil, fmt.Errorf("decode review at index %d: %w", i, err)
		}
	}
	return out, nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	n, err := s.c.LLen(ctx, s.key).Result()
	observability.ObserveStore("redis", "len", err)
	return int(n), err
}

// Replace swaps the whole list for rs in one MULTI/EXEC, so readers see either the
// old list or the new one.
func (s *Store) Replace(ctx context.Context, rs []domain.Review) error {
	vals := make([]any, len(rs))
	for i, r := range rs {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		vals[i] = b
	}
	_, err := s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key)
		if len(vals) > 0 {
			p.RPush(ctx, s.key, vals...)
		}
		return nil
	})
	observability.ObserveStore("redis", "replace", err)
	if err == nil {
		observability.SetStoreSize(len(rs))
	}
	return err
}
