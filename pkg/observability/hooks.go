// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about document loading, refreshing, saving and cloning,
// and about clipboard store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDocumentHooks(&myDocumentHooks{})
//	    observability.SetClipboardHooks(&myClipboardHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... load the document ...
//	observability.Document().OnLoad(ctx, location, objectCount, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Document Hooks
// =============================================================================

// DocumentHooks receives events from the document model.
type DocumentHooks interface {
	// OnLoad records a document load.
	OnLoad(ctx context.Context, location string, objects int, duration time.Duration, err error)

	// OnRefresh records a rebuild of a document's object graph.
	OnRefresh(ctx context.Context, location string, revision int, duration time.Duration, err error)

	// OnSave records a serialization.
	OnSave(ctx context.Context, location string, size int)

	// OnClone records a subtree clone and the number of ids it renamed.
	OnClone(ctx context.Context, objects, renamed int)
}

// =============================================================================
// Clipboard Hooks
// =============================================================================

// ClipboardHooks receives events from clipboard store operations.
type ClipboardHooks interface {
	// OnPut records an archive written to the store.
	OnPut(ctx context.Context, key string, entries int)

	// OnGet records an archive lookup.
	OnGet(ctx context.Context, key string, found bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDocumentHooks is a no-op implementation of DocumentHooks.
type NoopDocumentHooks struct{}

func (NoopDocumentHooks) OnLoad(context.Context, string, int, time.Duration, error)    {}
func (NoopDocumentHooks) OnRefresh(context.Context, string, int, time.Duration, error) {}
func (NoopDocumentHooks) OnSave(context.Context, string, int)                          {}
func (NoopDocumentHooks) OnClone(context.Context, int, int)                            {}

// NoopClipboardHooks is a no-op implementation of ClipboardHooks.
type NoopClipboardHooks struct{}

func (NoopClipboardHooks) OnPut(context.Context, string, int)  {}
func (NoopClipboardHooks) OnGet(context.Context, string, bool) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	documentHooks  DocumentHooks  = NoopDocumentHooks{}
	clipboardHooks ClipboardHooks = NoopClipboardHooks{}
	hooksMu        sync.RWMutex
)

// SetDocumentHooks registers custom document hooks.
// This should be called once at application startup before any documents are loaded.
func SetDocumentHooks(h DocumentHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		documentHooks = h
	}
}

// SetClipboardHooks registers custom clipboard hooks.
// This should be called once at application startup before any store operations.
func SetClipboardHooks(h ClipboardHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		clipboardHooks = h
	}
}

// Document returns the registered document hooks.
func Document() DocumentHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return documentHooks
}

// Clipboard returns the registered clipboard hooks.
func Clipboard() ClipboardHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return clipboardHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	documentHooks = NoopDocumentHooks{}
	clipboardHooks = NoopClipboardHooks{}
}
