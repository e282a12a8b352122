// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; the defaults are
// no-ops so nothing is recorded unless main installs an implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetToolHooks(&myToolHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Tool().OnToolStart(ctx, "resize")
//	// ... transform ...
//	observability.Tool().OnToolComplete(ctx, "resize", stats, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Tool Hooks
// =============================================================================

// ToolStats describes the output of a single tool run.
type ToolStats struct {
	Width  int
	Height int
	Bytes  int
}

// ToolHooks receives events from image and document tools.
type ToolHooks interface {
	OnToolStart(ctx context.Context, tool string)
	OnToolComplete(ctx context.Context, tool string, stats ToolStats, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from history and vault reads and writes.
type StoreHooks interface {
	// OnStoreRead records a read of key; hit is false when the key was absent.
	OnStoreRead(ctx context.Context, key string, hit bool)

	// OnStoreWrite records a write of size bytes to key.
	OnStoreWrite(ctx context.Context, key string, size int)

	// OnStoreReset records a stored value that could not be decoded and was
	// treated as empty.
	OnStoreReset(ctx context.Context, key string, err error)
}

// =============================================================================
// Conversion Hooks
// =============================================================================

// ConversionHooks receives events from the external document converter.
type ConversionHooks interface {
	OnConvertStart(ctx context.Context, input string)
	OnConvertComplete(ctx context.Context, input string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopToolHooks is a no-op implementation of ToolHooks.
type NoopToolHooks struct{}

func (NoopToolHooks) OnToolStart(context.Context, string) {}
func (NoopToolHooks) OnToolComplete(context.Context, string, ToolStats, time.Duration, error) {
}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreRead(context.Context, string, bool)   {}
func (NoopStoreHooks) OnStoreWrite(context.Context, string, int)   {}
func (NoopStoreHooks) OnStoreReset(context.Context, string, error) {}

// NoopConversionHooks is a no-op implementation of ConversionHooks.
type NoopConversionHooks struct{}

func (NoopConversionHooks) OnConvertStart(context.Context, string)                          {}
func (NoopConversionHooks) OnConvertComplete(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	toolHooks       ToolHooks       = NoopToolHooks{}
	storeHooks      StoreHooks      = NoopStoreHooks{}
	conversionHooks ConversionHooks = NoopConversionHooks{}
	hooksMu         sync.RWMutex
)

// SetToolHooks registers custom tool hooks.
// This should be called once at application startup before any tool runs.
func SetToolHooks(h ToolHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		toolHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetConversionHooks registers custom conversion hooks.
func SetConversionHooks(h ConversionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		conversionHooks = h
	}
}

// Tool returns the registered tool hooks.
func Tool() ToolHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return toolHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Conversion returns the registered conversion hooks.
func Conversion() ConversionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return conversionHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	toolHooks = NoopToolHooks{}
	storeHooks = NoopStoreHooks{}
	conversionHooks = NoopConversionHooks{}
}
