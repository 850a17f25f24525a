package collection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/blobstore/core"
	"github.com/poiesic/blobstore/storage"
)

// Repository stores an ordered collection of T under a single key.
// Insertion order is preserved across saves and loads, and identifiers are
// unique within the collection at every point observable by callers.
type Repository[T any, ID comparable] struct {
	store    *storage.Store
	key      string
	identity Identity[T, ID]
	locks    *Locks
	logger   *slog.Logger
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	locks  *Locks
	logger *slog.Logger
}

// WithLocks shares a lock table between repositories. Repositories over
// the same key must share Locks to serialize their mutations.
func WithLocks(locks *Locks) Option {
	return func(o *options) {
		if locks != nil {
			o.locks = locks
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a Repository for the collection stored under key.
// Panics if identity.ID is nil, or if identity.Next is set without
// identity.SetID.
func New[T any, ID comparable](store *storage.Store, key string, identity Identity[T, ID], opts ...Option) *Repository[T, ID] {
	if identity.ID == nil {
		panic("collection: Identity.ID is required")
	}
	if identity.Next != nil && identity.SetID == nil {
		panic("collection: Identity.SetID is required when Identity.Next is set")
	}

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.locks == nil {
		o.locks = NewLocks()
	}

	return &Repository[T, ID]{
		store:    store,
		key:      key,
		identity: identity,
		locks:    o.locks,
		logger:   o.logger,
	}
}

// Key returns the storage key holding the collection.
func (r *Repository[T, ID]) Key() string {
	return r.key
}

// List returns the whole collection in insertion order. A key that was
// never saved reads as an empty collection.
// Returns ErrLoadFailed if the stored collection cannot be read or decoded.
func (r *Repository[T, ID]) List(ctx context.Context) ([]T, error) {
	unlock := r.locks.Lock(r.key)
	defer unlock()
	return r.load(ctx)
}

// Get returns the first entity with the given identifier. The zero
// identifier never matches.
func (r *Repository[T, ID]) Get(ctx context.Context, id ID) (T, bool, error) {
	var zero T
	if isZero(id) {
		return zero, false, nil
	}

	items, err := r.List(ctx)
	if err != nil {
		return zero, false, err
	}
	if i := r.indexOf(items, id); i >= 0 {
		return items[i], true, nil
	}
	return zero, false, nil
}

// Add appends entity to the collection and saves it. An entity without an
// identifier gets one from Identity.Next.
// Returns core.ErrDuplicateID if the identifier is already taken and
// core.ErrInvalidArgument if the entity has no identifier and none can be
// generated. Nothing is saved on failure.
func (r *Repository[T, ID]) Add(ctx context.Context, entity T) (T, error) {
	var zero T

	unlock := r.locks.Lock(r.key)
	defer unlock()

	items, err := r.load(ctx)
	if err != nil {
		return zero, err
	}

	id := r.identity.ID(entity)
	if isZero(id) {
		if r.identity.Next == nil {
			return zero, fmt.Errorf("%w: entity has no id", core.ErrInvalidArgument)
		}
		id, err = r.identity.Next(r.ids(items))
		if err != nil {
			return zero, fmt.Errorf("generate id for %s: %w", r.key, err)
		}
		r.identity.SetID(&entity, id)
	}

	if r.indexOf(items, id) >= 0 {
		return zero, fmt.Errorf("%w: %v in %s", core.ErrDuplicateID, id, r.key)
	}

	items = append(items, entity)
	if err := r.save(ctx, items); err != nil {
		return zero, err
	}

	r.logger.Debug("added entity", "key", r.key, "id", id, "size", len(items))
	return entity, nil
}

// Update applies mutate to the entity with the given identifier and saves
// the collection. mutate works on a copy; if it returns an error the
// collection is left untouched. mutate must not change the identifier.
// Returns core.ErrNotFound if no entity has the identifier.
func (r *Repository[T, ID]) Update(ctx context.Context, id ID, mutate func(*T) error) (T, error) {
	var zero T
	if isZero(id) {
		return zero, fmt.Errorf("%w: id is required", core.ErrInvalidArgument)
	}

	unlock := r.locks.Lock(r.key)
	defer unlock()

	items, err := r.load(ctx)
	if err != nil {
		return zero, err
	}

	i := r.indexOf(items, id)
	if i < 0 {
		return zero, fmt.Errorf("%w: %v in %s", core.ErrNotFound, id, r.key)
	}

	updated := items[i]
	if err := mutate(&updated); err != nil {
		return zero, err
	}
	if r.identity.ID(updated) != id {
		return zero, fmt.Errorf("%w: update cannot change id %v", core.ErrInvalidArgument, id)
	}

	items[i] = updated
	if err := r.save(ctx, items); err != nil {
		return zero, err
	}

	r.logger.Debug("updated entity", "key", r.key, "id", id)
	return updated, nil
}

// Delete removes every entity with the given identifier and reports whether
// anything was removed. The collection is saved only when it changed.
func (r *Repository[T, ID]) Delete(ctx context.Context, id ID) (bool, error) {
	if isZero(id) {
		return false, fmt.Errorf("%w: id is required", core.ErrInvalidArgument)
	}

	unlock := r.locks.Lock(r.key)
	defer unlock()

	items, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	kept := items[:0]
	for _, item := range items {
		if r.identity.ID(item) != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}

	if err := r.save(ctx, kept); err != nil {
		return false, err
	}

	r.logger.Debug("deleted entity", "key", r.key, "id", id, "size", len(kept))
	return true, nil
}

// Replace overwrites the whole collection with items.
// Returns core.ErrInvalidArgument if an item has no identifier and
// core.ErrDuplicateID if two items share one.
func (r *Repository[T, ID]) Replace(ctx context.Context, items []T) error {
	seen := make(map[ID]struct{}, len(items))
	for _, item := range items {
		id := r.identity.ID(item)
		if isZero(id) {
			return fmt.Errorf("%w: entity has no id", core.ErrInvalidArgument)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %v in %s", core.ErrDuplicateID, id, r.key)
		}
		seen[id] = struct{}{}
	}

	unlock := r.locks.Lock(r.key)
	defer unlock()

	if items == nil {
		items = []T{}
	}
	return r.save(ctx, items)
}

func (r *Repository[T, ID]) load(ctx context.Context) ([]T, error) {
	if !r.store.CanLoad(ctx, r.key) {
		return []T{}, nil
	}

	items, err := storage.Load[[]T](ctx, r.store, r.key)
	if err != nil {
		r.logger.Error("failed to load collection", "key", r.key, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *Repository[T, ID]) save(ctx context.Context, items []T) error {
	return r.store.Save(ctx, r.key, items)
}

func (r *Repository[T, ID]) indexOf(items []T, id ID) int {
	for i, item := range items {
		if r.identity.ID(item) == id {
			return i
		}
	}
	return -1
}

func (r *Repository[T, ID]) ids(items []T) []ID {
	ids := make([]ID, len(items))
	for i, item := range items {
		ids[i] = r.identity.ID(item)
	}
	return ids
}

func isZero[ID comparable](id ID) bool {
	var zero ID
	return id == zero
}
