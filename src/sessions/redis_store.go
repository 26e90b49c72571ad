package sessions

import (
	"context"
	"errors"
	"time"

	redis_utils "finance/src/utils/redis"

	"github.com/google/uuid"
)

const keyPrefix = "session:"

type RedisStore struct {
	handler *redis_utils.RedisHandler
	now     func() time.Time
}

func NewRedisStore(handler *redis_utils.RedisHandler) *RedisStore {
	return &RedisStore{handler: handler, now: time.Now}
}

func key(token uuid.UUID) string {
	return keyPrefix + token.String()
}

func (r *RedisStore) Get(ctx context.Context, token uuid.UUID) (*Session, error) {
	var s Session
	err := r.handler.Get(ctx, key(token), &s)
	if errors.Is(err, redis_utils.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Expired(r.now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Save writes the session with a Redis TTL matching ExpiresAt so Redis
// evicts it on its own.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return ErrNotFound
	}
	return r.handler.Set(ctx, key(s.Token), s, ttl)
}

func (r *RedisStore) Delete(ctx context.Context, token uuid.UUID) error {
	return r.handler.Delete(ctx, key(token))
}
