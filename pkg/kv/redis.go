package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values as plain Redis strings.
type RedisStore struct {
	client *redis.Client
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, &OpError{Backend: "redis", Op: "connect", Err: fmt.Errorf("%s: %w", opts.Addr, err), Transient: true}
	}
	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)
	err := RetryWithBackoff(ctx, func() error {
		v, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			data, found = nil, false
			return nil
		}
		if err != nil {
			return redisError("get", key, err)
		}
		data, found = v, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, found, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	return RetryWithBackoff(ctx, func() error {
		return redisError("set", key, s.client.Set(ctx, key, data, 0).Err())
	})
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return redisError("delete", key, s.client.Del(ctx, key).Err())
	})
}

// Keys uses SCAN so large keyspaces are not blocked.
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := RetryWithBackoff(ctx, func() error {
		keys = keys[:0]
		iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		return redisError("keys", prefix, iter.Err())
	})
	if err != nil {
		return nil, err
	}
	return filterSorted(keys, prefix), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisError wraps a go-redis error. Socket errors and dropped connections
// are transient; server replies such as WRONGTYPE are not.
func redisError(op, key string, err error) error {
	return classify("redis", op, key, err, func(err error) bool {
		var netErr net.Error
		return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
	})
}

// escapeGlob escapes Redis MATCH metacharacters.
func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

var _ Store = (*RedisStore)(nil)
