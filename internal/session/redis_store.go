// internal/session/redis_store.go
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"csv-chat/internal/common/database"
	apperrors "csv-chat/internal/common/errors"
)

const redisKeyPrefix = "csvchat:session:"

// RedisStore persists sessions as JSON values with a TTL, for deployments
// where sessions should survive a process restart.
type RedisStore struct {
	client *database.RedisClient
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *database.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return apperrors.NewSessionStoreError(err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+s.ID, data, r.ttl); err != nil {
		return apperrors.NewSessionStoreError(err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id)
	if err == redis.Nil {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreError(err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, apperrors.NewSessionStoreError(err)
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id); err != nil {
		return apperrors.NewSessionStoreError(err)
	}
	return nil
}
