package rdx

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Conn *redis.Client

// ErrMiss is returned by Cache.Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

func Connect(ctx context.Context, addr, password string) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.Wrapf(err, "ping redis at %s", addr)
	}
	Conn = client
	log.Info().Str("addr", addr).Msg("connected to Redis")
	return nil
}

func Close() {
	if Conn == nil {
		return
	}
	if err := Conn.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
}

// Cache is a string key/value view over a redis client.
type Cache struct {
	Client *redis.Client
}

func (c Cache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, errors.Wrapf(err, "redis get %s", key)
}

func (c Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.Wrapf(c.Client.Set(ctx, key, value, ttl).Err(), "redis set %s", key)
}

func (c Cache) Del(ctx context.Context, keys ...string) error {
	return errors.Wrap(c.Client.Del(ctx, keys...).Err(), "redis del")
}
