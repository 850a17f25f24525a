// Package badger provides a storage.Backend backed by an embedded BadgerDB
// database, either on disk or fully in memory.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
)

// Backend wraps a BadgerDB instance and stores one blob per key.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.Lister  = (*Backend)(nil)
)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist. When inMemory is true the
// path is ignored and nothing is written to disk.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, fmt.Errorf("%w: %v", storage.ErrIOFailure, err)
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", storage.ErrIOFailure, err)
				}
			} else {
				return nil, fmt.Errorf("%w: %v", storage.ErrIOFailure, err)
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", storage.ErrIOFailure, filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrIOFailure, err)
	}

	return &Backend{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

func (b *Backend) Exists(_ context.Context, key string) bool {
	err := b.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeBlobKey(key))
		return err
	}, false)
	return err == nil
}

func (b *Backend) Read(_ context.Context, key string) ([]byte, error) {
	var blob []byte
	err := b.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeBlobKey(key))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	if blob == nil {
		blob = []byte{}
	}
	return blob, nil
}

func (b *Backend) Write(_ context.Context, key string, blob []byte) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	err := b.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeBlobKey(key), blob); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	b.logger.Debug("wrote blob", "key", key, "bytes", len(blob))
	return nil
}

func (b *Backend) Remove(_ context.Context, key string) error {
	err := b.WithTx(func(tx *badger.Txn) error {
		k := makeBlobKey(key)
		if _, err := tx.Get(k); err != nil {
			return err
		}
		if err := tx.Delete(k); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	return nil
}

// Keys returns every stored key. Badger iterates in byte order, so the
// result is already sorted.
func (b *Backend) Keys(_ context.Context) ([]string, error) {
	var keys []string

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(blobPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, parseBlobKey(iter.Item().Key()))
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrIOFailure, err)
	}

	return keys, nil
}
