package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Store composes one Codec and one Backend behind key-addressed load and
// save operations. Every Save fully replaces the blob stored under the key.
type Store struct {
	codec   Codec
	backend Backend
	logger  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates a Store from a codec and a backend.
func NewStore(codec Codec, backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		codec:   codec,
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Codec returns the codec used by the store.
func (s *Store) Codec() Codec {
	return s.codec
}

// Backend returns the backend used by the store.
func (s *Store) Backend() Backend {
	return s.backend
}

// CanLoad reports whether a value is stored under key.
func (s *Store) CanLoad(ctx context.Context, key string) bool {
	return s.backend.Exists(ctx, key)
}

// Load reads the blob stored under key and decodes it into shape.
// Returns ErrNotFound if the key is absent and ErrDecodeFailure if the
// blob does not match shape.
func (s *Store) Load(ctx context.Context, key string, shape any) error {
	blob, err := s.backend.Read(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := s.codec.Decode(blob, shape); err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}

// Load reads the value of type T stored under key.
func Load[T any](ctx context.Context, s *Store, key string) (T, error) {
	var v T
	if err := s.Load(ctx, key, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Save encodes v and writes it under key, replacing any previous value.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	blob, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := s.backend.Write(ctx, key, blob); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// TrySave behaves like Save but reports failure as false instead of an
// error. The failure is logged.
func (s *Store) TrySave(ctx context.Context, key string, v any) bool {
	if err := s.Save(ctx, key, v); err != nil {
		s.logger.Warn("best-effort save failed", "key", key, "codec", s.codec.Name(), "err", err)
		return false
	}
	return true
}

// Remove deletes the value stored under key.
// Returns ErrNotFound if the key is absent.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
