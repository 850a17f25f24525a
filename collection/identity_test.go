package collection

import (
	"testing"

	"github.com/poiesic/blobstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIntID(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{name: "empty collection", existing: nil, want: 1},
		{name: "sequential", existing: []int{1, 2, 3}, want: 4},
		{name: "gaps are not filled", existing: []int{1, 5}, want: 6},
		{name: "unordered", existing: []int{7, 2, 4}, want: 8},
		{name: "negative ids ignored", existing: []int{-4, -1}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextIntID(tt.existing)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextIntID_DefinedType(t *testing.T) {
	type lessonID uint32
	got, err := NextIntID([]lessonID{3, 9})
	require.NoError(t, err)
	assert.Equal(t, lessonID(10), got)
}

func TestNextIntID_Exhausted(t *testing.T) {
	got, err := NextIntID([]uint8{3, 255})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Zero(t, got)

	next, err := NextIntID([]int8{126})
	require.NoError(t, err)
	assert.Equal(t, int8(127), next)

	_, err = NextIntID([]int8{127})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestNewUUID(t *testing.T) {
	type studentID string
	a, err := NewUUID[studentID](nil)
	require.NoError(t, err)
	b, err := NewUUID[studentID](nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, string(a), 36)
}

func TestLocks_ZeroValue(t *testing.T) {
	var locks Locks
	unlock := locks.Lock("a")
	// A different key is independent.
	unlockB := locks.Lock("b")
	unlockB()
	unlock()

	unlock = locks.Lock("a")
	unlock()
}
