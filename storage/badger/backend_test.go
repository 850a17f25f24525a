package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0o644))

	backend, err := OpenBackend(tmpFile, false)
	if backend != nil {
		backend.Close()
	}
	assert.ErrorIs(t, err, storage.ErrIOFailure)
}

func TestBackendClose(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestBackend_NeverWritten(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	assert.False(t, backend.Exists(ctx, core.KeyLessons))

	_, err = backend.Read(ctx, core.KeyLessons)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, backend.Remove(ctx, core.KeyLessons), storage.ErrNotFound)
}

func TestBackend_LastWriteWins(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, core.KeyLessons, []byte(`[1]`)))
	require.NoError(t, backend.Write(ctx, core.KeyLessons, []byte(`[2]`)))

	blob, err := backend.Read(ctx, core.KeyLessons)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[2]`), blob)
}

func TestBackend_Remove(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, core.KeyCourses, []byte(`[]`)))
	require.NoError(t, backend.Remove(ctx, core.KeyCourses))

	assert.False(t, backend.Exists(ctx, core.KeyCourses))
	assert.ErrorIs(t, backend.Remove(ctx, core.KeyCourses), storage.ErrNotFound)
}

func TestBackend_Keys(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, key := range []string{core.KeyTeachers, core.KeyIssueReports, core.KeyLessons} {
		require.NoError(t, backend.Write(ctx, key, []byte(`[]`)))
	}

	keys, err = backend.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{core.KeyIssueReports, core.KeyLessons, core.KeyTeachers}, keys)
}

func TestBackend_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NoError(t, backend.Write(ctx, core.KeyStudents, []byte(`[{"id":"s1"}]`)))
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	blob, err := backend.Read(ctx, core.KeyStudents)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"s1"}]`), blob)
}

func TestBackend_WriteInvalidKey(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	err = backend.Write(context.Background(), "", []byte(`x`))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
