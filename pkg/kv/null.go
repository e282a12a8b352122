package kv

import "context"

// NullStore is a no-op store that never keeps anything.
// Useful when history should be disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Get always reports a missing key.
func (NullStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (NullStore) Set(ctx context.Context, key string, data []byte) error { return nil }

// Delete does nothing.
func (NullStore) Delete(ctx context.Context, key string) error { return nil }

// Keys always returns no keys.
func (NullStore) Keys(ctx context.Context, prefix string) ([]string, error) { return nil, nil }

// Close does nothing.
func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
