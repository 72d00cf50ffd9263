package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis implements Store on a Redis instance. Snapshots for finished
// gameweeks never change, so entries are written without expiry.
type Redis struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis at addr and verifies the connection.
func NewRedis(ctx context.Context, addr string, db int, logger *zap.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	logger.Info("connected to redis", zap.String("addr", addr), zap.Int("db", db))
	return &Redis{rdb: rdb, logger: logger}, nil
}

func (s *Redis) Get(ctx context.Context, gw int, kind Kind, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, snapKey(gw, kind, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *Redis) Put(ctx context.Context, gw int, kind Kind, key string, body []byte) error {
	return s.rdb.Set(ctx, snapKey(gw, kind, key), body, 0).Err()
}

// Close releases the underlying connection pool.
func (s *Redis) Close() error {
	return s.rdb.Close()
}
