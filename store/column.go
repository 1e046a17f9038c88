package store

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
)

// Column is typed access to one component type.
type Column[T any] struct {
	s *Store
	m *ecs.Map[T]
}

// NewColumn returns the column for component type T.
// Several columns of the same type share storage.
func NewColumn[T any](s *Store) *Column[T] {
	return &Column[T]{s: s, m: ecs.NewMap[T](s.world)}
}

// Insert sets e's component, replacing any existing value.
func (c *Column[T]) Insert(e Entity, v T) {
	ae, ok := c.s.resolve(e)
	if !ok {
		panic(fmt.Sprintf("store: insert %T on removed entity %d", v, e))
	}
	c.put(ae, v)
}

// InsertLazy attaches a component to a buffered entity.
func (c *Column[T]) InsertLazy(p Pending, v T) {
	row := c.s.pendingRow(p)
	row.inserts = append(row.inserts, func(ae ecs.Entity) {
		c.put(ae, v)
	})
}

func (c *Column[T]) put(ae ecs.Entity, v T) {
	if c.m.Has(ae) {
		*c.m.Get(ae) = v
		return
	}
	c.m.Add(ae, &v)
}

// Has reports whether e holds the component.
// Entities marked for deletion never hold anything.
func (c *Column[T]) Has(e Entity) bool {
	ae, ok := c.s.resolve(e)
	if !ok || c.s.IsDeleted(e) {
		return false
	}
	return c.m.Has(ae)
}

// Get returns a copy of e's component. Panics if absent.
func (c *Column[T]) Get(e Entity) T {
	return *c.GetMut(e)
}

// GetMut returns a pointer to e's component. Panics if absent.
// The pointer is valid until the next structural change.
func (c *Column[T]) GetMut(e Entity) *T {
	ae, ok := c.s.resolve(e)
	if !ok || !c.m.Has(ae) {
		var zero T
		panic(fmt.Sprintf("store: entity %d has no %T", e, zero))
	}
	return c.m.Get(ae)
}

// Remove detaches the component from e if present.
func (c *Column[T]) Remove(e Entity) {
	ae, ok := c.s.resolve(e)
	if !ok || !c.m.Has(ae) {
		return
	}
	c.m.Remove(ae)
}
