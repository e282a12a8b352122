package kv

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrNetwork is matched by every transient backend failure: refused or
// dropped connections and timeouts.
var ErrNetwork = errors.New("network error")

// OpError describes a failed backend call.
type OpError struct {
	Backend string // "redis", "mongo"
	Op      string // "connect", "get", "set", "delete", "keys"
	Key     string
	Err     error
	// Transient failures are retried and match ErrNetwork.
	Transient bool
}

func (e *OpError) Error() string {
	msg := e.Backend + " " + e.Op
	if e.Key != "" {
		msg += " " + strconv.Quote(e.Key)
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap exposes the backend error, plus ErrNetwork for transient failures.
func (e *OpError) Unwrap() []error {
	if e.Transient {
		return []error{ErrNetwork, e.Err}
	}
	return []error{e.Err}
}

// IsTransient reports whether err carries a transient OpError.
func IsTransient(err error) bool {
	var op *OpError
	return errors.As(err, &op) && op.Transient
}

// classify wraps a backend error as an OpError. transient decides whether
// the failure is worth retrying.
func classify(backend, op, key string, err error, transient func(error) bool) error {
	if err == nil {
		return nil
	}
	return &OpError{Backend: backend, Op: op, Key: key, Err: err, Transient: transient(err)}
}

// RetryPolicy retries transient failures with exponential backoff.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry is used by the Redis and Mongo stores.
var DefaultRetry = RetryPolicy{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, fails permanently, or the attempts run out.
// The delay doubles after every transient failure. Cancelling ctx stops the
// wait between attempts.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if lastErr = fn(); lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff runs fn under DefaultRetry.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultRetry.Do(ctx, fn)
}
