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


package blobstore

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BackendType selects the storage backend.
type BackendType string

const (
	BackendMemory     BackendType = "memory"
	BackendFilesystem BackendType = "filesystem"
	BackendBadger     BackendType = "badger"
	BackendSQL        BackendType = "sql"
)

// Layout names for the filesystem backend.
const (
	LayoutNested  = "nested"
	LayoutFlat    = "flat"
	LayoutSharded = "sharded"
)

// Config holds configuration for opening a store.
type Config struct {
	// Backend selects where blobs live.
	// Default: filesystem
	Backend BackendType `yaml:"backend"`

	// Path is the filesystem root, the BadgerDB directory or the SQL DSN.
	// Ignored by the memory backend and by in-memory databases.
	Path string `yaml:"path"`

	// InMemory opens BadgerDB or SQLite without touching disk. Useful for tests.
	InMemory bool `yaml:"inMemory"`

	// Dialect selects the SQL database: sqlite, postgres or mysql.
	// Default: sqlite
	Dialect string `yaml:"dialect"`

	// Compress stores blobs zstd-compressed, whatever the backend.
	Compress bool `yaml:"compress"`

	// Codec names the serialization format: "json" or "yaml".
	// Default: json
	Codec string `yaml:"codec"`

	// Layout is the filesystem key to path mapping: nested, flat or sharded.
	// Default: nested
	Layout string `yaml:"layout"`

	// Suffix is appended to every file name by the filesystem backend.
	// Defaults to "." followed by the codec name.
	Suffix string `yaml:"suffix"`

	// ShardDepth is the number of hash directory levels for the sharded layout.
	// Default: 2
	ShardDepth int `yaml:"shardDepth"`

	// CreateDirs lets the filesystem backend create missing directories.
	// Default: true
	CreateDirs bool `yaml:"createDirs"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the backend type.
func WithBackend(backend BackendType) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithPath sets the filesystem root or BadgerDB directory.
func WithPath(path string) ConfigOption {
	return func(c *Config) {
		c.Path = path
	}
}

// WithInMemory makes the BadgerDB backend keep everything in memory.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.InMemory = inMemory
	}
}

// WithDialect sets the SQL dialect.
func WithDialect(dialect string) ConfigOption {
	return func(c *Config) {
		c.Dialect = dialect
	}
}

// WithCompress enables zstd compression of stored blobs.
func WithCompress(compress bool) ConfigOption {
	return func(c *Config) {
		c.Compress = compress
	}
}

// WithCodec sets the serialization format.
func WithCodec(codec string) ConfigOption {
	return func(c *Config) {
		c.Codec = codec
	}
}

// WithLayout sets the filesystem layout.
func WithLayout(layout string) ConfigOption {
	return func(c *Config) {
		c.Layout = layout
	}
}

// WithSuffix sets the filesystem file suffix.
func WithSuffix(suffix string) ConfigOption {
	return func(c *Config) {
		c.Suffix = suffix
	}
}

// WithShardDepth sets the directory depth of the sharded layout.
func WithShardDepth(depth int) ConfigOption {
	return func(c *Config) {
		c.ShardDepth = depth
	}
}

// WithCreateDirs controls directory creation by the filesystem backend.
func WithCreateDirs(create bool) ConfigOption {
	return func(c *Config) {
		c.CreateDirs = create
	}
}

// DefaultConfig returns a Config storing indented JSON files under ./data,
// one file per key, with directories mirroring the key namespace.
func DefaultConfig() *Config {
	return &Config{
		Backend:    BackendFilesystem,
		Path:       "data",
		Dialect:    "sqlite",
		Codec:      "json",
		Layout:     LayoutNested,
		ShardDepth: 2,
		CreateDirs: true,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendBadger),
//	    WithPath("/var/lib/school"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadConfigFile reads a YAML configuration file. Fields missing from the
// file keep their default values.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize ensures the configuration is in a canonical form.
// Names are lowercased and the suffix defaults to the codec name.
func (c *Config) Normalize() {
	c.Backend = BackendType(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	c.Codec = strings.ToLower(strings.TrimSpace(c.Codec))
	c.Dialect = strings.ToLower(strings.TrimSpace(c.Dialect))
	c.Layout = strings.ToLower(strings.TrimSpace(c.Layout))

	if c.Suffix == "" && c.Codec != "" {
		c.Suffix = "." + c.Codec
	}
	if c.Suffix != "" && !strings.HasPrefix(c.Suffix, ".") {
		c.Suffix = "." + c.Suffix
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendMemory:
	case BackendFilesystem:
		if c.Path == "" {
			return errors.New("blobstore config: Path is required for the filesystem backend")
		}
	case BackendBadger:
		if c.Path == "" && !c.InMemory {
			return errors.New("blobstore config: Path is required for an on-disk badger backend")
		}
	case BackendSQL:
		switch c.Dialect {
		case "sqlite":
			if c.Path == "" && !c.InMemory {
				return errors.New("blobstore config: Path is required for an on-disk sqlite backend")
			}
		case "postgres", "mysql":
			if c.Path == "" {
				return fmt.Errorf("blobstore config: Path must hold the %s DSN", c.Dialect)
			}
			if c.InMemory {
				return fmt.Errorf("blobstore config: InMemory is not supported by %s", c.Dialect)
			}
		default:
			return fmt.Errorf("blobstore config: unknown sql dialect %q", c.Dialect)
		}
	default:
		return fmt.Errorf("blobstore config: unknown backend %q", c.Backend)
	}

	switch c.Codec {
	case "json", "yaml":
	default:
		return fmt.Errorf("blobstore config: unknown codec %q", c.Codec)
	}

	if c.Backend == BackendFilesystem {
		switch c.Layout {
		case LayoutNested, LayoutFlat:
		case LayoutSharded:
			if c.ShardDepth < 1 || c.ShardDepth > 8 {
				return errors.New("blobstore config: ShardDepth must be between 1 and 8")
			}
		default:
			return fmt.Errorf("blobstore config: unknown layout %q", c.Layout)
		}
	}

	return nil
}
