package filesystem

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

func TestBackend_NeverWritten(t *testing.T) {
	b := New(t.TempDir())
	ctx := context.Background()

	assert.False(t, b.Exists(ctx, core.KeyLessons))

	_, err := b.Read(ctx, core.KeyLessons)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, b.Remove(ctx, core.KeyLessons), storage.ErrNotFound)
}

func TestBackend_WriteMirrorsNamespace(t *testing.T) {
	root := t.TempDir()
	b := New(root)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, core.KeyLessons, []byte(`[]`)))

	data, err := os.ReadFile(filepath.Join(root, "Scheduling", "Lessons.json"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)
	assert.True(t, b.Exists(ctx, core.KeyLessons))
}

func TestBackend_LastWriteWins(t *testing.T) {
	b := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, core.KeyCourses, []byte(`[{"id":1},{"id":2}]`)))
	require.NoError(t, b.Write(ctx, core.KeyCourses, []byte(`[]`)))

	blob, err := b.Read(ctx, core.KeyCourses)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), blob)
}

func TestBackend_RemovePrunesEmptyDirs(t *testing.T) {
	root := t.TempDir()
	b := New(root)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, "a/b/c", []byte(`1`)))
	require.NoError(t, b.Write(ctx, "a/d", []byte(`2`)))

	require.NoError(t, b.Remove(ctx, "a/b/c"))
	assert.False(t, b.Exists(ctx, "a/b/c"))

	_, err := os.Stat(filepath.Join(root, "a", "b"))
	assert.True(t, os.IsNotExist(err), "empty directory should be pruned")

	_, err = os.Stat(filepath.Join(root, "a"))
	assert.NoError(t, err, "non-empty directory must survive")

	_, err = os.Stat(root)
	assert.NoError(t, err, "root must survive")
}

func TestBackend_WithoutCreateDirs(t *testing.T) {
	root := t.TempDir()
	b := New(root, WithCreateDirs(false))
	ctx := context.Background()

	err := b.Write(ctx, core.KeyLessons, []byte(`[]`))
	assert.ErrorIs(t, err, storage.ErrIOFailure)
	assert.False(t, b.Exists(ctx, core.KeyLessons))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "Scheduling"), 0o755))
	require.NoError(t, b.Write(ctx, core.KeyLessons, []byte(`[]`)))
	assert.True(t, b.Exists(ctx, core.KeyLessons))
}

func TestBackend_RemoveKeepsCallerDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Scheduling"), 0o755))
	b := New(root, WithCreateDirs(false))
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, core.KeyLessons, []byte(`[1]`)))
	require.NoError(t, b.Remove(ctx, core.KeyLessons))

	info, err := os.Stat(filepath.Join(root, "Scheduling"))
	require.NoError(t, err, "caller-created directory must survive")
	assert.True(t, info.IsDir())

	require.NoError(t, b.Write(ctx, core.KeyLessons, []byte(`[2]`)))
	got, err := b.Read(ctx, core.KeyLessons)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[2]`), got)
}

func TestBackend_DotKeysRejected(t *testing.T) {
	root := t.TempDir()
	b := New(root)
	ctx := context.Background()

	for _, key := range []string{".hidden/Lessons", "Reports/.x"} {
		err := b.Write(ctx, key, []byte(`[]`))
		assert.ErrorIs(t, err, core.ErrInvalidArgument, key)
		assert.False(t, b.Exists(ctx, key), key)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be written for a rejected key")

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBackend_WriteFailure(t *testing.T) {
	// A regular file where the root directory should be.
	root := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))

	b := New(root)
	err := b.Write(context.Background(), core.KeyLessons, []byte(`[]`))
	assert.ErrorIs(t, err, storage.ErrIOFailure)
}

func TestBackend_RejectsEscapingKeys(t *testing.T) {
	b := New(t.TempDir())
	ctx := context.Background()

	err := b.Write(ctx, "../outside", []byte(`x`))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.False(t, b.Exists(ctx, "../outside"))

	_, err = b.Read(ctx, "/etc/passwd")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestBackend_NoTempFilesLeft(t *testing.T) {
	root := t.TempDir()
	b := New(root)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, b.Write(ctx, "key", []byte(`v`)))
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "key.json", entries[0].Name())
}

func TestBackend_Keys(t *testing.T) {
	layouts := map[string]Layout{
		"nested":  NestedLayout(DefaultSuffix),
		"flat":    FlatLayout(DefaultSuffix),
		"sharded": ShardedLayout(DefaultSuffix, 2),
	}

	for name, layout := range layouts {
		t.Run(name, func(t *testing.T) {
			b := New(t.TempDir(), WithLayout(layout))
			ctx := context.Background()

			for _, key := range core.Keys() {
				require.NoError(t, b.Write(ctx, key, []byte(`[]`)))
			}

			keys, err := b.Keys(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, core.Keys(), keys)
			assert.IsNonDecreasing(t, keys)

			require.NoError(t, b.Remove(ctx, core.KeyAdmins))
			keys, err = b.Keys(ctx)
			require.NoError(t, err)
			assert.NotContains(t, keys, core.KeyAdmins)
		})
	}
}

func TestBackend_KeysMissingRoot(t *testing.T) {
	b := New(filepath.Join(t.TempDir(), "missing"))
	keys, err := b.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBackend_KeysUnsupported(t *testing.T) {
	layout := Layout{Path: func(key string) string { return key }}
	b := New(t.TempDir(), WithLayout(layout))

	_, err := b.Keys(context.Background())
	assert.ErrorIs(t, err, storage.ErrUnsupported)
}

func TestBackend_KeysIgnoresForeignFiles(t *testing.T) {
	root := t.TempDir()
	b := New(root)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, core.KeyLessons, []byte(`[]`)))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".tmp-123"), []byte("partial"), 0o644))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{core.KeyLessons}, keys)
}
