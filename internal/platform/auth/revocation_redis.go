package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisJTIPrefix  = "clinic:revoked:jti:"
	redisUserPrefix = "clinic:revoked:user:"
)

// RedisRevocationStore shares revocations between server instances. Keys
// expire together with the tokens they cover.
type RedisRevocationStore struct {
	client *redis.Client
	maxTTL time.Duration
	now    func() time.Time
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisRevocationStore(client *redis.Client, maxTTL time.Duration) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, maxTTL: maxTTL, now: time.Now}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, redisJTIPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) RevokeUser(ctx context.Context, userID string, at time.Time) error {
	key := redisUserPrefix + userID
	if err := s.client.Set(ctx, key, at.UnixMilli(), s.maxTTL).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	vals, err := s.client.MGet(ctx, redisJTIPrefix+claims.ID, redisUserPrefix+claims.Subject).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	if len(vals) > 0 && vals[0] != nil {
		return true, nil
	}
	if len(vals) > 1 && vals[1] != nil && claims.IssuedAt != nil {
		raw, _ := vals[1].(string)
		cutoff, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return false, fmt.Errorf("parse revocation cutoff %q: %w", raw, err)
		}
		return claims.IssuedAt.UnixMilli() <= cutoff, nil
	}
	return false, nil
}
