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


// Package filesystem provides a storage.Backend that keeps one file per key
// under a root directory. The key to path mapping is a Layout and can be
// swapped without touching the read and write logic.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Backend stores each blob in its own file. Writes go through a temporary
// file and a rename, so readers never observe a partially written blob.
type Backend struct {
	root       string
	layout     Layout
	createDirs bool
	logger     *slog.Logger
}

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.Lister  = (*Backend)(nil)
)

// Option configures a Backend.
type Option func(*Backend)

// WithLayout sets the key to path mapping.
// Default is NestedLayout(DefaultSuffix).
func WithLayout(layout Layout) Option {
	return func(b *Backend) {
		b.layout = layout
	}
}

// WithCreateDirs controls whether Write creates missing parent directories.
// When disabled, writing a key whose directory does not exist fails with
// storage.ErrIOFailure. Default is true.
func WithCreateDirs(create bool) Option {
	return func(b *Backend) {
		b.createDirs = create
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// New creates a Backend rooted at root. The root directory itself is created
// lazily on the first write when directory creation is enabled.
func New(root string, opts ...Option) *Backend {
	b := &Backend{
		root:       filepath.Clean(root),
		layout:     NestedLayout(DefaultSuffix),
		createDirs: true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Root returns the root directory.
func (b *Backend) Root() string {
	return b.root
}

// Path returns the file path that stores key.
func (b *Backend) Path(key string) (string, error) {
	if err := core.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(b.root, filepath.FromSlash(b.layout.Path(key))), nil
}

func (b *Backend) Exists(_ context.Context, key string) bool {
	path, err := b.Path(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (b *Backend) Read(_ context.Context, key string) ([]byte, error) {
	path, err := b.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	return data, nil
}

func (b *Backend) Write(_ context.Context, key string, blob []byte) error {
	path, err := b.Path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if b.createDirs {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}

	b.logger.Debug("wrote blob", "key", key, "path", path, "bytes", len(blob))
	return nil
}

// Remove deletes the file for key. When the backend creates directories on
// write it also prunes directories left empty between the file and the root;
// otherwise parent directories belong to the caller and are left in place.
func (b *Backend) Remove(_ context.Context, key string) error {
	path, err := b.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}

	if !b.createDirs {
		return nil
	}
	for dir := filepath.Dir(path); b.within(dir); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

// within reports whether dir is strictly below the root directory.
func (b *Backend) within(dir string) bool {
	rel, err := filepath.Rel(b.root, dir)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Keys walks the root directory and maps every file back to its key.
// Returns storage.ErrUnsupported if the layout has no inverse.
func (b *Backend) Keys(_ context.Context) ([]string, error) {
	if b.layout.Key == nil {
		return nil, fmt.Errorf("%w: layout cannot be listed", storage.ErrUnsupported)
	}

	var keys []string
	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == b.root {
				return fs.SkipAll
			}
			return err
		}

		if strings.HasPrefix(d.Name(), ".") && path != b.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		if key, ok := b.layout.Key(filepath.ToSlash(rel)); ok {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", storage.ErrIOFailure, b.root, err)
	}

	slices.Sort(keys)
	return keys, nil
}
