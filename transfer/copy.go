// Package transfer copies blobs between storage backends.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/blobstore/storage"
)

// Source is a backend whose keys can be enumerated.
type Source interface {
	storage.Backend
	storage.Lister
}

// Result summarizes a Copy.
type Result struct {
	Copied  []string         // Keys written to the destination
	Skipped []string         // Keys already present in the destination
	Failed  map[string]error // Keys that could not be copied
}

type config struct {
	poolSize         int
	overwrite        bool
	attempts         int
	baseDelay        time.Duration
	progressWriter   io.Writer
	progressInterval int
	logger           *slog.Logger
}

// Option configures a Copy.
type Option func(*config)

// WithPoolSize sets the number of concurrent copy workers.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *config) {
		c.poolSize = max(size, 1)
	}
}

// WithOverwrite controls whether keys already present in the destination are
// replaced. Default is true.
func WithOverwrite(overwrite bool) Option {
	return func(c *config) {
		c.overwrite = overwrite
	}
}

// WithRetries retries keys that fail with storage.ErrIOFailure, up to
// attempts tries in total, doubling baseDelay between tries.
// Default is a single attempt.
func WithRetries(attempts int, baseDelay time.Duration) Option {
	return func(c *config) {
		c.attempts = max(attempts, 1)
		c.baseDelay = baseDelay
	}
}

// WithProgress writes a progress line to w every interval keys.
func WithProgress(w io.Writer, interval int) Option {
	return func(c *config) {
		c.progressWriter = w
		c.progressInterval = interval
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// Copy copies every blob from src to dst using a pool of workers. Blobs are
// copied verbatim; no codec is involved. A failure on one key does not stop
// the others; the returned error joins every per-key failure.
func Copy(ctx context.Context, src Source, dst storage.Backend, opts ...Option) (*Result, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if dst == nil {
		return nil, ErrDestinationRequired
	}

	cfg := &config{
		poolSize:  max(runtime.NumCPU()/2, 1),
		overwrite: true,
		attempts:  1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	keys, err := src.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source keys: %w", err)
	}

	pool, err := ants.NewPool(cfg.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var tracker *progress
	if cfg.progressWriter != nil {
		tracker = newProgress(cfg.progressWriter, len(keys), cfg.progressInterval)
	}

	result := &Result{Failed: make(map[string]error)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(key string, copied bool, err error) {
		defer tracker.increment()
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			result.Failed[key] = err
		case copied:
			result.Copied = append(result.Copied, key)
		default:
			result.Skipped = append(result.Skipped, key)
		}
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			record(key, false, err)
			continue
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			var copied bool
			err := withBackoff(ctx, cfg.logger, cfg.attempts, cfg.baseDelay, func() error {
				var err error
				copied, err = copyKey(ctx, src, dst, key, cfg.overwrite)
				return err
			})
			if err != nil {
				cfg.logger.Warn("failed to copy key", "key", key, "err", err)
			} else if copied {
				cfg.logger.Debug("copied key", "key", key)
			}
			record(key, copied, err)
		})
		if submitErr != nil {
			wg.Done()
			record(key, false, submitErr)
		}
	}
	wg.Wait()
	tracker.finish()

	slices.Sort(result.Copied)
	slices.Sort(result.Skipped)

	cfg.logger.Info("copy finished",
		"copied", len(result.Copied),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed))

	if len(result.Failed) == 0 {
		return result, nil
	}
	errs := make([]error, 0, len(result.Failed))
	for _, key := range slices.Sorted(maps.Keys(result.Failed)) {
		errs = append(errs, fmt.Errorf("%s: %w", key, result.Failed[key]))
	}
	return result, errors.Join(errs...)
}

func copyKey(ctx context.Context, src, dst storage.Backend, key string, overwrite bool) (bool, error) {
	if !overwrite && dst.Exists(ctx, key) {
		return false, nil
	}
	blob, err := src.Read(ctx, key)
	if err != nil {
		return false, err
	}
	if err := dst.Write(ctx, key, blob); err != nil {
		return false, err
	}
	return true, nil
}
