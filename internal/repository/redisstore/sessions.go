package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore records the current session token per user. Login overwrites
// the slot, logout deletes it; the record expires with the token. It is a
// bookkeeping slot, not an authorization gate: identity resolution decodes
// the bearer token on every request.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Put(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKeyPrefix+userID, token, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, userID string) (string, error) {
	token, err := s.rdb.Get(ctx, sessionKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+userID).Err()
}
