// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package blobstore wires a storage backend and a codec into a ready to use
// key-addressed object store.
//
//	db, err := blobstore.Open(blobstore.NewConfig(blobstore.WithPath("/var/lib/school")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	reports := db.Reports()
//	report, err := reports.Add(ctx, "Projector broken", "Room 12 projector shows no image")
package blobstore

import (
	"io"
	"log/slog"

	"github.com/poiesic/blobstore/collection"
	"github.com/poiesic/blobstore/reports"
	"github.com/poiesic/blobstore/storage"
	"github.com/poiesic/blobstore/storage/badger"
	"github.com/poiesic/blobstore/storage/compress"
	"github.com/poiesic/blobstore/storage/filesystem"
	"github.com/poiesic/blobstore/storage/memory"
	"github.com/poiesic/blobstore/storage/sqldb"
)

// DB is an open store together with the lock table shared by every
// collection service it hands out.
type DB struct {
	backend storage.Backend
	store   *storage.Store
	locks   *collection.Locks
	logger  *slog.Logger
}

// Open validates cfg and opens the configured backend.
func Open(cfg *Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := storage.CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	logger.Debug("opened store", "backend", cfg.Backend, "path", cfg.Path, "codec", codec.Name(), "compress", cfg.Compress)

	return &DB{
		backend: backend,
		store:   storage.NewStore(codec, backend, storage.WithLogger(logger)),
		locks:   collection.NewLocks(),
		logger:  logger,
	}, nil
}

// NewBackend opens the backend described by cfg, wrapped for compression
// when cfg.Compress is set. cfg must be valid.
func NewBackend(cfg *Config) (storage.Backend, error) {
	backend, err := newBaseBackend(cfg)
	if err != nil || !cfg.Compress {
		return backend, err
	}

	compressed, err := compress.New(backend)
	if err != nil {
		if closer, ok := backend.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return compressed, nil
}

func newBaseBackend(cfg *Config) (storage.Backend, error) {
	switch cfg.Backend {
	case BackendMemory:
		return memory.New(), nil
	case BackendBadger:
		backend, err := badger.OpenBackend(cfg.Path, cfg.InMemory)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case BackendSQL:
		dsn := cfg.Path
		if cfg.InMemory {
			dsn = sqldb.MemoryDSN
		}
		backend, err := sqldb.Open(cfg.Dialect, dsn)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return filesystem.New(cfg.Path,
			filesystem.WithLayout(newLayout(cfg)),
			filesystem.WithCreateDirs(cfg.CreateDirs),
		), nil
	}
}

func newLayout(cfg *Config) filesystem.Layout {
	switch cfg.Layout {
	case LayoutFlat:
		return filesystem.FlatLayout(cfg.Suffix)
	case LayoutSharded:
		return filesystem.ShardedLayout(cfg.Suffix, cfg.ShardDepth)
	default:
		return filesystem.NestedLayout(cfg.Suffix)
	}
}

// Close releases the backend.
func (db *DB) Close() error {
	if closer, ok := db.backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			db.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}

// Store returns the codec and backend facade shared by every service.
func (db *DB) Store() *storage.Store {
	return db.store
}

// Backend returns the raw backend, including any compression wrapper.
func (db *DB) Backend() storage.Backend {
	return db.backend
}

// Reports returns the issue report service. Every service returned by the
// same DB shares one lock table.
func (db *DB) Reports() *reports.Service {
	return reports.NewService(db.store, collection.WithLocks(db.locks), collection.WithLogger(db.logger))
}

// Collection returns a repository for an arbitrary entity type stored under
// key, sharing the DB lock table.
func Collection[T any, ID comparable](db *DB, key string, identity collection.Identity[T, ID]) *collection.Repository[T, ID] {
	return collection.New(db.store, key, identity, collection.WithLocks(db.locks), collection.WithLogger(db.logger))
}
