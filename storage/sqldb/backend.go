// Package sqldb stores blobs as rows of a single table in a SQL database.
// SQLite (pure Go), PostgreSQL and MySQL are supported through bun.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// Supported dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

type blobRow struct {
	bun.BaseModel `bun:"table:blobs"`
	Key           string `bun:"blob_key,pk"`
	Data          []byte `bun:"data"`
}

// Backend keeps one row per key in the blobs table.
type Backend struct {
	db      *bun.DB
	dialect string
	logger  *slog.Logger
}

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.Lister  = (*Backend)(nil)
)

// Open connects to the database described by dialect and dsn and creates
// the blobs table if it does not exist yet.
func Open(dialect, dsn string) (*Backend, error) {
	dialect = strings.ToLower(dialect)

	// The pgx stdlib registers driver name "pgx".
	driverName := dialect
	switch dialect {
	case DialectSQLite, DialectMySQL:
	case DialectPostgres:
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("%w: unknown sql dialect %q", storage.ErrUnsupported, dialect)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrIOFailure, err)
	}

	// Every SQLite connection to :memory: gets its own database.
	if dialect == DialectSQLite && dsn == MemoryDSN {
		sqlDB.SetMaxOpenConns(1)
	}

	b := &Backend{
		db:      newBunDB(sqlDB, dialect),
		dialect: dialect,
		logger:  slog.Default(),
	}

	ctx := context.Background()
	if _, err := b.db.NewCreateTable().Model((*blobRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = b.db.Close()
		return nil, fmt.Errorf("%w: create blobs table: %v", storage.ErrIOFailure, err)
	}

	b.logger.Debug("opened sql backend", "dialect", dialect)
	return b, nil
}

func newBunDB(sqlDB *sql.DB, dialect string) *bun.DB {
	switch dialect {
	case DialectPostgres:
		return bun.NewDB(sqlDB, pgdialect.New())
	case DialectMySQL:
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// Close closes the database connection pool.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Dialect returns the SQL dialect in use.
func (b *Backend) Dialect() string {
	return b.dialect
}

func (b *Backend) Exists(ctx context.Context, key string) bool {
	ok, err := b.db.NewSelect().Model((*blobRow)(nil)).Where("blob_key = ?", key).Exists(ctx)
	return err == nil && ok
}

func (b *Backend) Read(ctx context.Context, key string) ([]byte, error) {
	var row blobRow
	err := b.db.NewSelect().Model(&row).Where("blob_key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	if row.Data == nil {
		row.Data = []byte{}
	}
	return row.Data, nil
}

func (b *Backend) Write(ctx context.Context, key string, blob []byte) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	if blob == nil {
		blob = []byte{}
	}

	q := b.db.NewInsert().Model(&blobRow{Key: key, Data: blob})
	if b.dialect == DialectMySQL {
		q = q.On("DUPLICATE KEY UPDATE").Set("data = VALUES(data)")
	} else {
		q = q.On("CONFLICT (blob_key) DO UPDATE").Set("data = EXCLUDED.data")
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}

	b.logger.Debug("wrote blob", "key", key, "bytes", len(blob))
	return nil
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	res, err := b.db.NewDelete().Model((*blobRow)(nil)).Where("blob_key = ?", key).Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrIOFailure, key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return nil
}

// Keys returns every stored key in byte order regardless of the database
// collation.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.db.NewSelect().Model((*blobRow)(nil)).Column("blob_key").Scan(ctx, &keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrIOFailure, err)
	}
	if keys == nil {
		keys = []string{}
	}
	slices.Sort(keys)
	return keys, nil
}
