// Package redisstore provides a Redis-backed session store for the hirez
// client. Cooperating processes pointed at the same key reuse one remote
// session instead of each creating their own.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexbotov/hirez/pkg/hirez"
)

const defaultKey = "hirez:session"

// Store implements hirez.SessionStore on top of Redis. The session is kept
// under a single key whose TTL matches the session's validity window, so
// Redis expires it on its own.
type Store struct {
	client *redis.Client
	key    string
}

// New creates a Redis-backed session store under the default key.
func New(client *redis.Client) *Store {
	return NewWithKey(client, defaultKey)
}

// NewWithKey creates a store under a custom key. Use distinct keys for
// distinct credential pairs.
func NewWithKey(client *redis.Client, key string) *Store {
	return &Store{client: client, key: key}
}

func (s *Store) Get(ctx context.Context) (*hirez.Session, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess hirez.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("redisstore: failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *Store) Put(ctx context.Context, sess *hirez.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("redisstore: session already expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redisstore: failed to marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key, data, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	// A fresh session written by another process must survive, so the key
	// is only dropped while it still holds the session being invalidated.
	cur, err := s.Get(ctx)
	if err != nil || cur == nil {
		return err
	}
	if cur.ID != id {
		return nil
	}
	return s.client.Del(ctx, s.key).Err()
}
