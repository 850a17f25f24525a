package collection

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/poiesic/blobstore/core"
)

// Identity is the strategy a Repository uses to read and assign entity
// identifiers.
type Identity[T any, ID comparable] struct {
	// ID returns the identifier of an entity. Required.
	ID func(T) ID

	// SetID assigns an identifier to an entity. Required when Next is set.
	SetID func(*T, ID)

	// Next generates an identifier for an entity added without one, given
	// the identifiers already in the collection. When nil, Add rejects
	// entities without an identifier.
	Next func(existing []ID) (ID, error)
}

// Integer is the set of identifier types NextIntID can generate.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// NextIntID returns the largest existing identifier plus one, or 1 for an
// empty collection. Returns core.ErrInvalidArgument when the largest
// identifier is already the maximum of ID. Identifiers are monotonic but gaps left by deletions
// are never reused unless the largest identifier itself was deleted.
func NextIntID[ID Integer](existing []ID) (ID, error) {
	var highest ID
	for _, id := range existing {
		if id > highest {
			highest = id
		}
	}
	next := highest + 1
	if next <= highest {
		return 0, fmt.Errorf("%w: identifier space exhausted at %v", core.ErrInvalidArgument, highest)
	}
	return next, nil
}

// NewUUID returns a random UUID string identifier. It ignores existing
// identifiers; collisions are left to the duplicate check in Add.
func NewUUID[ID ~string](_ []ID) (ID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return ID(id.String()), nil
}
