package redis

import (
	"context"
	"fmt"
	"time"

	"restaurant-web/internal/storage"

	"github.com/redis/go-redis/v9"
)

// RedisRepo holds the short-lived pending-verification records created
// between the login and verify steps of the OTP flow. Each record maps a
// random token to the email the code was sent to, so the email never
// travels through the browser.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, address, password string, db int, ttl time.Duration) (*RedisRepo, error) {
	const op = "storage.redis.New"

	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{client: rdb, ttl: ttl}, nil
}

func (r *RedisRepo) SavePending(ctx context.Context, token, email string) error {
	const op = "storage.redis.SavePending"

	if err := r.client.Set(ctx, key(token), email, r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetPending resolves a verification token without consuming it; the
// verify form may be re-rendered several times before the right code
// arrives.
func (r *RedisRepo) GetPending(ctx context.Context, token string) (string, error) {
	const op = "storage.redis.GetPending"

	email, err := r.client.Get(ctx, key(token)).Result()
	if err == redis.Nil {
		return "", storage.ErrPendingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return email, nil
}

func (r *RedisRepo) DeletePending(ctx context.Context, token string) error {
	const op = "storage.redis.DeletePending"

	if err := r.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Close() {
	r.client.Close()
}

func key(token string) string {
	return "verify:" + token
}
