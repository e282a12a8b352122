package kv

import (
	"context"
	"strings"
)

// ScopedStore prefixes every key of an inner store, so several users or
// profiles can share one backend.
//
//	alice := kv.Scoped(shared, "user:alice:")
//	bob := kv.Scoped(shared, "user:bob:")
type ScopedStore struct {
	inner  Store
	prefix string
}

// Scoped wraps inner with prefix. An empty prefix returns inner unchanged.
func Scoped(inner Store, prefix string) Store {
	if prefix == "" {
		return inner
	}
	return &ScopedStore{inner: inner, prefix: prefix}
}

func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *ScopedStore) Set(ctx context.Context, key string, data []byte) error {
	return s.inner.Set(ctx, s.prefix+key, data)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Keys returns keys without the scope prefix.
func (s *ScopedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.inner.Keys(ctx, s.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, s.prefix)
	}
	return keys, nil
}

func (s *ScopedStore) Close() error { return s.inner.Close() }

var _ Store = (*ScopedStore)(nil)
