package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingKey = "pending-verification"

type PendingVerification struct {
	Email string
	Code  string
}

// VerificationStore stages the most recent registration's verification code.
// It stands in for an out-of-band email send and is a demo convenience: the
// code on the user record is what verification actually checks.
type VerificationStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewVerificationStore(rdb *redis.Client, ttl time.Duration) *VerificationStore {
	return &VerificationStore{rdb: rdb, ttl: ttl}
}

func (s *VerificationStore) Stage(ctx context.Context, email, code string) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, pendingKey, map[string]interface{}{
		"email": email,
		"code":  code,
	})
	pipe.Expire(ctx, pendingKey, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *VerificationStore) Get(ctx context.Context) (*PendingVerification, error) {
	vals, err := s.rdb.HGetAll(ctx, pendingKey).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return &PendingVerification{
		Email: vals["email"],
		Code:  vals["code"],
	}, nil
}

func (s *VerificationStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, pendingKey).Err()
}
