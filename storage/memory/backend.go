// Package memory provides a process-local storage.Backend backed by a map.
// Content vanishes when the process exits.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
)

// Backend stores blobs in a map. All methods are safe for concurrent use.
// Blobs are copied on the way in and out so callers never share memory
// with the stored value.
type Backend struct {
	blobs map[string][]byte
	mu    sync.RWMutex
}

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.Lister  = (*Backend)(nil)
)

// New creates an empty Backend.
func New() *Backend {
	return &Backend{blobs: make(map[string][]byte)}
}

// NewFrom creates a Backend pre-populated with a copy of blobs.
// Useful for test fixtures. Panics if a key fails core.ValidateKey, so a
// fixture never holds a key the other backends would reject.
func NewFrom(blobs map[string][]byte) *Backend {
	b := New()
	for key, blob := range blobs {
		if err := core.ValidateKey(key); err != nil {
			panic(fmt.Sprintf("memory: invalid fixture key: %v", err))
		}
		b.blobs[key] = slices.Clone(blob)
	}
	return b
}

func (b *Backend) Exists(_ context.Context, key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.blobs[key]
	return ok
}

func (b *Backend) Read(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	blob, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return slices.Clone(blob), nil
}

func (b *Backend) Write(_ context.Context, key string, blob []byte) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	if blob == nil {
		blob = []byte{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = slices.Clone(blob)
	return nil
}

func (b *Backend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[key]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	delete(b.blobs, key)
	return nil
}

func (b *Backend) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.blobs))
	for key := range b.blobs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// Len returns the number of stored keys.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.blobs)
}
