// Package kv provides the key-value storage behind history lists and the
// text vault.
//
// Several backends implement [Store]:
//
//   - [MemoryStore]: process-local map, for tests and one-shot runs
//   - [FileStore]: JSON entry files under a directory, the CLI default
//   - [RedisStore]: a shared Redis instance
//   - [MongoStore]: a MongoDB collection
//   - [NullStore]: stores nothing
//
// [Scoped] namespaces every key of an inner store, and [Open] builds the
// store described by a config.Store section.
package kv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Store is a byte-oriented key-value store.
type Store interface {
	// Get returns the value for key. A missing key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Close releases backend resources.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// filterSorted returns the keys with prefix in ascending order.
func filterSorted(keys []string, prefix string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
