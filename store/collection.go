package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/usergraph/errors"
)

// FilterOp selects how a Filter compares a record field against its value.
type FilterOp int

const (
	// OpEquals matches records whose field equals the filter value.
	OpEquals FilterOp = iota
	// OpInArray matches records whose list field contains the filter value.
	OpInArray
)

// Filter is a single-field predicate: {key, equals} or {key, inArray}.
type Filter struct {
	Key   string
	Op    FilterOp
	Value string
}

// Eq builds an equality filter for the given key.
func Eq(key, value string) Filter {
	return Filter{Key: key, Op: OpEquals, Value: value}
}

// Contains builds an array-membership filter for the given key.
func Contains(key, value string) Filter {
	return Filter{Key: key, Op: OpInArray, Value: value}
}

// MatchFunc reports whether a record satisfies a filter. Each collection is
// constructed with a matcher that knows the record's filterable keys.
type MatchFunc[T any] func(rec T, f Filter) bool

// Collection is a thread-safe in-memory record set with insertion-order
// iteration. It performs no relational validation; all integrity rules
// live in the integrity package.
type Collection[T any] struct {
	mu    sync.RWMutex
	name  string
	items map[string]T
	order []string

	getID func(T) string
	setID func(T, string) T
	match MatchFunc[T]
	clone func(T) T // nil means plain value copy is safe
}

// NewCollection creates a collection. getID and setID give the collection
// access to the record's id field; match implements the filter contract;
// clone may be nil for records without reference-typed fields.
func NewCollection[T any](
	name string,
	getID func(T) string,
	setID func(T, string) T,
	match MatchFunc[T],
	clone func(T) T,
) *Collection[T] {
	return &Collection[T]{
		name:  name,
		items: make(map[string]T),
		getID: getID,
		setID: setID,
		match: match,
		clone: clone,
	}
}

func (c *Collection[T]) copyOf(rec T) T {
	if c.clone != nil {
		return c.clone(rec)
	}
	return rec
}

// FindMany returns all records matching every given filter, in insertion
// order. With no filters it returns the whole collection.
func (c *Collection[T]) FindMany(ctx context.Context, filters ...Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		rec := c.items[id]
		ok := true
		for _, f := range filters {
			if !c.match(rec, f) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c.copyOf(rec))
		}
	}
	return out, nil
}

// FindOne returns the first record matching the filter, in insertion order.
// The boolean reports whether a record was found.
func (c *Collection[T]) FindOne(ctx context.Context, f Filter) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// Fast path for id lookups
	if f.Key == "id" && f.Op == OpEquals {
		rec, ok := c.items[f.Value]
		if !ok {
			return zero, false, nil
		}
		return c.copyOf(rec), true, nil
	}

	for _, id := range c.order {
		rec := c.items[id]
		if c.match(rec, f) {
			return c.copyOf(rec), true, nil
		}
	}
	return zero, false, nil
}

// Create stores a new record. A record without an id is assigned a fresh
// UUID; seeded records keep the id they arrive with.
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	id := c.getID(rec)
	if id == "" {
		id = uuid.NewString()
		rec = c.setID(rec, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = c.copyOf(rec)

	return rec, nil
}

// Change applies mutate to the record with the given id and stores the
// result. Returns ErrRecordNotFound if the id is unknown.
func (c *Collection[T]) Change(ctx context.Context, id string, mutate func(T) T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, exists := c.items[id]
	if !exists {
		return zero, errors.WrapNotFound(errors.ErrRecordNotFound, "Collection", "Change", c.name+" "+id)
	}

	updated := mutate(c.copyOf(rec))
	c.items[id] = c.copyOf(updated)
	return updated, nil
}

// Delete removes and returns the record with the given id. Returns
// ErrRecordNotFound if the id is unknown.
func (c *Collection[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, exists := c.items[id]
	if !exists {
		return zero, errors.WrapNotFound(errors.ErrRecordNotFound, "Collection", "Delete", c.name+" "+id)
	}

	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return c.copyOf(rec), nil
}

// Size returns the current number of records.
func (c *Collection[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
