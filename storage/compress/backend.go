// Package compress wraps a Backend so blobs are zstd-compressed at rest.
// Codecs and callers above the wrapper see the uncompressed text.
package compress

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/poiesic/blobstore/storage"
)

// Backend compresses blobs on Write and decompresses them on Read.
type Backend struct {
	inner storage.Backend
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.Lister  = (*Backend)(nil)
)

type config struct {
	level zstd.EncoderLevel
}

// Option configures a Backend.
type Option func(*config)

// WithLevel sets the zstd encoder level.
// Default is zstd.SpeedDefault.
func WithLevel(level zstd.EncoderLevel) Option {
	return func(c *config) {
		c.level = level
	}
}

// New wraps inner. Closing the returned Backend also closes inner when it
// implements io.Closer.
func New(inner storage.Backend, opts ...Option) (*Backend, error) {
	cfg := &config{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(cfg)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(cfg.level), zstd.WithZeroFrames(true))
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}

	return &Backend{inner: inner, enc: enc, dec: dec}, nil
}

// Inner returns the wrapped backend.
func (b *Backend) Inner() storage.Backend {
	return b.inner
}

func (b *Backend) Exists(ctx context.Context, key string) bool {
	return b.inner.Exists(ctx, key)
}

func (b *Backend) Read(ctx context.Context, key string) ([]byte, error) {
	compressed, err := b.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	blob, err := b.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s: %w", storage.ErrDecodeFailure, key, err)
	}
	if blob == nil {
		blob = []byte{}
	}
	return blob, nil
}

func (b *Backend) Write(ctx context.Context, key string, blob []byte) error {
	return b.inner.Write(ctx, key, b.enc.EncodeAll(blob, nil))
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	return b.inner.Remove(ctx, key)
}

// Keys lists the wrapped backend, or fails with storage.ErrUnsupported when
// it cannot be listed.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	lister, ok := b.inner.(storage.Lister)
	if !ok {
		return nil, fmt.Errorf("%w: wrapped backend cannot list keys", storage.ErrUnsupported)
	}
	return lister.Keys(ctx)
}

func (b *Backend) Close() error {
	b.dec.Close()
	err := b.enc.Close()
	if closer, ok := b.inner.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}
