package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const limiterPrefix = "limiter:"

// RedisStorage implements fiber.Storage on top of redis so that rate limit
// counters are shared between server instances.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage connects to redis, retrying a few times while the server
// comes up.
func NewRedisStorage(ctx context.Context, url string, logger zerolog.Logger) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	const maxRetries = 5
	retryDelay := 2 * time.Second
	client := redis.NewClient(opts)
	for i := 1; i <= maxRetries; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return &RedisStorage{client: client}, nil
		}
		logger.Warn().Err(err).Int("attempt", i).Msg("failed to connect to redis")
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	client.Close()
	return nil, fmt.Errorf("connect to redis: %w", err)
}

// Get returns nil without error for a missing key, as fiber.Storage requires
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.client.Get(context.Background(), limiterPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.client.Set(context.Background(), limiterPrefix+key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.client.Del(context.Background(), limiterPrefix+key).Err()
}

// Reset removes only the limiter keys, never the whole database
func (s *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, limiterPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
