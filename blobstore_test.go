package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/blobstore/collection"
	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lesson struct {
	ID    int    `json:"id" yaml:"id"`
	Topic string `json:"topic" yaml:"topic"`
}

var lessonIdentity = collection.Identity[lesson, int]{
	ID:    func(l lesson) int { return l.ID },
	SetID: func(l *lesson, id int) { l.ID = id },
	Next:  collection.NextIntID[int],
}

func openConfigs(t *testing.T) map[string]*Config {
	return map[string]*Config{
		"memory":          NewConfig(WithBackend(BackendMemory)),
		"filesystem":      NewConfig(WithPath(t.TempDir())),
		"filesystem-yaml": NewConfig(WithPath(t.TempDir()), WithCodec("yaml"), WithLayout(LayoutFlat)),
		"sharded":         NewConfig(WithPath(t.TempDir()), WithLayout(LayoutSharded)),
		"badger":          NewConfig(WithBackend(BackendBadger), WithPath(t.TempDir())),
		"badger-memory":   NewConfig(WithBackend(BackendBadger), WithInMemory(true)),
		"sqlite":          NewConfig(WithBackend(BackendSQL), WithPath(filepath.Join(t.TempDir(), "blobs.db"))),
		"sqlite-memory":   NewConfig(WithBackend(BackendSQL), WithInMemory(true)),
		"compressed":      NewConfig(WithPath(t.TempDir()), WithCompress(true)),
		"compressed-sql":  NewConfig(WithBackend(BackendSQL), WithInMemory(true), WithCompress(true)),
	}
}

func TestOpen_AllBackends(t *testing.T) {
	for name, cfg := range openConfigs(t) {
		t.Run(name, func(t *testing.T) {
			db, err := Open(cfg)
			require.NoError(t, err)
			defer db.Close()
			ctx := context.Background()

			assert.False(t, db.Store().CanLoad(ctx, core.KeyLessons))

			lessons := Collection(db, core.KeyLessons, lessonIdentity)
			first, err := lessons.Add(ctx, lesson{Topic: "Fractions"})
			require.NoError(t, err)
			assert.Equal(t, 1, first.ID)

			svc := db.Reports()
			report, err := svc.Add(ctx, "Bug A", "desc")
			require.NoError(t, err)
			assert.Equal(t, 1, report.ID)

			assert.True(t, db.Store().CanLoad(ctx, core.KeyLessons))
			assert.True(t, db.Backend().Exists(ctx, core.KeyIssueReports))

			lister, ok := db.Backend().(storage.Lister)
			require.True(t, ok)
			keys, err := lister.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{core.KeyIssueReports, core.KeyLessons}, keys)
		})
	}
}

func TestOpen_FilesystemLayoutOnDisk(t *testing.T) {
	root := t.TempDir()
	db, err := Open(NewConfig(WithPath(root)))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Reports().Add(context.Background(), "Bug A", "desc")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "Reports", "IssueReports.json"))
	assert.NoError(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	db, err := Open(NewConfig(WithBackend(BackendBadger), WithPath(root)))
	require.NoError(t, err)
	_, err = db.Reports().Add(ctx, "Bug A", "desc")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(NewConfig(WithBackend(BackendBadger), WithPath(root)))
	require.NoError(t, err)
	defer db.Close()

	reports, err := db.Reports().List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Bug A", reports[0].Title)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(NewConfig(WithCodec("xml")))
	assert.Error(t, err)
}

func TestOpen_CompressedSQLiteReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "blobs.db")
	ctx := context.Background()
	cfg := func() *Config {
		return NewConfig(WithBackend(BackendSQL), WithPath(dsn), WithCodec("yaml"), WithCompress(true))
	}

	db, err := Open(cfg())
	require.NoError(t, err)
	_, err = db.Reports().Add(ctx, "Bug A", "desc")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(cfg())
	require.NoError(t, err)
	defer db.Close()

	reports, err := db.Reports().List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Bug A", reports[0].Title)
}
