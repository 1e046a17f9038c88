// Package store provides the entity table used by the simulation.
//
// Entities are stable integer handles backed by an ark world. Structural
// changes made while a pass iterates (spawning, removal) are buffered and
// applied by Commit between passes.
package store

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
)

// Entity is a stable entity index. Indices increase monotonically and are
// never reused, even after the entity is removed.
type Entity int

// Pending is a handle to an entity buffered for creation at the next Commit.
type Pending struct {
	index int
	epoch uint64
}

// row tags every ark entity with its store index.
type row struct {
	Index Entity
}

type slot struct {
	ark  ecs.Entity
	live bool
}

// pendingRow holds the component inserts for one buffered creation.
type pendingRow struct {
	inserts []func(ecs.Entity)
}

// Store owns all entities and their components.
type Store struct {
	world *ecs.World
	rows  *ecs.Map1[row]
	slots []slot

	// Deferred update buffer
	deleted map[Entity]struct{}
	order   []Entity
	pending []pendingRow
	epoch   uint64
}

// New creates an empty store.
func New() *Store {
	world := ecs.NewWorld()
	return &Store{
		world:   world,
		rows:    ecs.NewMap1[row](world),
		deleted: make(map[Entity]struct{}),
	}
}

// CreateEntity appends a new empty entity and returns its index.
func (s *Store) CreateEntity() Entity {
	e := Entity(len(s.slots))
	ae := s.rows.NewEntity(&row{Index: e})
	s.slots = append(s.slots, slot{ark: ae, live: true})
	return e
}

// resolve returns the ark entity behind e if e has not been removed.
func (s *Store) resolve(e Entity) (ecs.Entity, bool) {
	if e < 0 || int(e) >= len(s.slots) {
		return ecs.Entity{}, false
	}
	sl := s.slots[e]
	if !sl.live {
		return ecs.Entity{}, false
	}
	return sl.ark, true
}

// Alive reports whether e exists and is not marked for deletion.
func (s *Store) Alive(e Entity) bool {
	_, ok := s.resolve(e)
	return ok && !s.IsDeleted(e)
}

// MarkDeleted marks e for removal at the next Commit.
// Marking twice is a no-op. Marking an index that was never created panics.
func (s *Store) MarkDeleted(e Entity) {
	if e < 0 || int(e) >= len(s.slots) {
		panic(fmt.Sprintf("store: entity %d was never created", e))
	}
	if _, ok := s.deleted[e]; ok {
		return
	}
	s.deleted[e] = struct{}{}
	s.order = append(s.order, e)
}

// IsDeleted reports whether e is marked for removal at the next Commit.
func (s *Store) IsDeleted(e Entity) bool {
	_, ok := s.deleted[e]
	return ok
}

// CreateLazy buffers a new entity. Components are attached with
// Column.InsertLazy and the entity receives its index at Commit.
func (s *Store) CreateLazy() Pending {
	s.pending = append(s.pending, pendingRow{})
	return Pending{index: len(s.pending) - 1, epoch: s.epoch}
}

// Commit applies the deferred update buffer.
//
// Buffered creations are appended first, in creation order, with the next
// contiguous indices. Marked entities are then removed and returned in the
// order they were marked; entities already removed are skipped. Both buffers
// are cleared, so a second Commit with nothing queued returns nothing.
func (s *Store) Commit() (created, removed []Entity) {
	for _, p := range s.pending {
		e := s.CreateEntity()
		ae := s.slots[e].ark
		for _, insert := range p.inserts {
			insert(ae)
		}
		created = append(created, e)
	}

	for _, e := range s.order {
		sl := &s.slots[e]
		if !sl.live {
			continue
		}
		s.world.RemoveEntity(sl.ark)
		sl.live = false
		removed = append(removed, e)
	}

	s.pending = s.pending[:0]
	s.order = s.order[:0]
	clear(s.deleted)
	s.epoch++
	return created, removed
}

// Len returns the number of entities that have not been removed.
// Entities marked for deletion still count until Commit.
func (s *Store) Len() int {
	n := 0
	for _, sl := range s.slots {
		if sl.live {
			n++
		}
	}
	return n
}

// Cap returns the number of entity indices ever issued.
func (s *Store) Cap() int {
	return len(s.slots)
}

// Pending returns the number of buffered creations.
func (s *Store) Pending() int {
	return len(s.pending)
}

// pendingRow returns the buffered row for p, panicking on stale handles.
func (s *Store) pendingRow(p Pending) *pendingRow {
	if p.epoch != s.epoch || p.index < 0 || p.index >= len(s.pending) {
		panic("store: pending entity handle used after commit")
	}
	return &s.pending[p.index]
}

// Each2 calls fn for every live entity holding both A and B.
// Entities marked for deletion are skipped. fn must not create or remove
// entities or components; the underlying world is locked while it runs.
func Each2[A, B any](s *Store, fn func(e Entity, a *A, b *B)) {
	filter := ecs.NewFilter3[row, A, B](s.world)
	query := filter.Query()
	for query.Next() {
		r, a, b := query.Get()
		if s.IsDeleted(r.Index) {
			continue
		}
		fn(r.Index, a, b)
	}
}
