package store

import (
	"slices"
	"strings"
	"testing"
)

type pos struct{ X, Y float64 }
type tag struct{}

func TestCreateEntityIndices(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		if got := s.CreateEntity(); got != Entity(i) {
			t.Fatalf("CreateEntity() = %d, want %d", got, i)
		}
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}

func TestInsertGet(t *testing.T) {
	s := New()
	positions := NewColumn[pos](s)
	e := s.CreateEntity()

	if positions.Has(e) {
		t.Fatal("fresh entity should not have a position")
	}
	positions.Insert(e, pos{1, 2})
	if !positions.Has(e) {
		t.Fatal("Has() = false after Insert")
	}
	if got := positions.Get(e); got != (pos{1, 2}) {
		t.Errorf("Get() = %+v, want {1 2}", got)
	}

	positions.Insert(e, pos{3, 4})
	if got := positions.Get(e); got != (pos{3, 4}) {
		t.Errorf("Get() after overwrite = %+v, want {3 4}", got)
	}

	positions.GetMut(e).X = 10
	if got := positions.Get(e).X; got != 10 {
		t.Errorf("GetMut write not visible, X = %v", got)
	}
}

func TestColumnsShareStorage(t *testing.T) {
	s := New()
	a := NewColumn[pos](s)
	b := NewColumn[pos](s)
	e := s.CreateEntity()
	a.Insert(e, pos{5, 6})
	if !b.Has(e) || b.Get(e) != (pos{5, 6}) {
		t.Error("second column of the same type should see the insert")
	}
}

func TestGetAbsentPanics(t *testing.T) {
	s := New()
	positions := NewColumn[pos](s)
	e := s.CreateEntity()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Get on absent component should panic")
		}
		msg, ok := r.(string)
		if !ok || !strings.HasPrefix(msg, "store:") {
			t.Errorf("panic = %v, want store: prefixed message", r)
		}
	}()
	positions.Get(e)
}

func TestMarkDeletedHidesFromHas(t *testing.T) {
	s := New()
	positions := NewColumn[pos](s)
	e := s.CreateEntity()
	positions.Insert(e, pos{1, 1})

	s.MarkDeleted(e)
	if positions.Has(e) {
		t.Error("pending-deleted entity should be absent for Has")
	}
	if !s.IsDeleted(e) {
		t.Error("IsDeleted() = false after MarkDeleted")
	}
	// Still readable until commit.
	if got := positions.Get(e); got != (pos{1, 1}) {
		t.Errorf("Get() before commit = %+v", got)
	}

	_, removed := s.Commit()
	if !slices.Equal(removed, []Entity{e}) {
		t.Errorf("removed = %v, want [%d]", removed, e)
	}
	if positions.Has(e) {
		t.Error("removed entity should not have components")
	}
	if s.IsDeleted(e) {
		t.Error("deleted set should be cleared by Commit")
	}
}

func TestCommitRemovedOrderAndDedup(t *testing.T) {
	s := New()
	es := make([]Entity, 4)
	for i := range es {
		es[i] = s.CreateEntity()
	}
	s.MarkDeleted(es[2])
	s.MarkDeleted(es[0])
	s.MarkDeleted(es[2])
	s.MarkDeleted(es[3])

	_, removed := s.Commit()
	want := []Entity{es[2], es[0], es[3]}
	if !slices.Equal(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}

	// Marking an already removed entity reports nothing.
	s.MarkDeleted(es[0])
	if _, removed := s.Commit(); len(removed) != 0 {
		t.Errorf("removed = %v, want none", removed)
	}
}

func TestCommitIdempotent(t *testing.T) {
	s := New()
	e := s.CreateEntity()
	p := s.CreateLazy()
	NewColumn[tag](s).InsertLazy(p, tag{})
	s.MarkDeleted(e)

	created, removed := s.Commit()
	if len(created) != 1 || len(removed) != 1 {
		t.Fatalf("first commit created=%v removed=%v", created, removed)
	}
	created, removed = s.Commit()
	if len(created) != 0 || len(removed) != 0 {
		t.Errorf("second commit created=%v removed=%v, want none", created, removed)
	}
	if s.Cap() != 2 {
		t.Errorf("Cap() = %d, want 2", s.Cap())
	}
}

func TestCreateLazy(t *testing.T) {
	s := New()
	positions := NewColumn[pos](s)
	tags := NewColumn[tag](s)
	for i := 0; i < 3; i++ {
		s.CreateEntity()
	}

	p1 := s.CreateLazy()
	positions.InsertLazy(p1, pos{1, 0})
	tags.InsertLazy(p1, tag{})
	p2 := s.CreateLazy()
	positions.InsertLazy(p2, pos{2, 0})

	if s.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", s.Pending())
	}
	if s.Len() != 3 {
		t.Fatalf("buffered entities must not be live before commit, Len() = %d", s.Len())
	}

	created, _ := s.Commit()
	if !slices.Equal(created, []Entity{3, 4}) {
		t.Fatalf("created = %v, want [3 4]", created)
	}
	if positions.Get(3).X != 1 || positions.Get(4).X != 2 {
		t.Errorf("lazy components not applied: %v %v", positions.Get(3), positions.Get(4))
	}
	if !tags.Has(3) || tags.Has(4) {
		t.Error("tag should be on entity 3 only")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() after commit = %d", s.Pending())
	}
}

func TestStalePendingPanics(t *testing.T) {
	s := New()
	p := s.CreateLazy()
	s.Commit()

	defer func() {
		if recover() == nil {
			t.Error("InsertLazy with a committed handle should panic")
		}
	}()
	NewColumn[tag](s).InsertLazy(p, tag{})
}

func TestIndicesNeverReused(t *testing.T) {
	s := New()
	positions := NewColumn[pos](s)
	a := s.CreateEntity()
	positions.Insert(a, pos{1, 1})
	s.MarkDeleted(a)
	s.Commit()

	b := s.CreateEntity()
	if b == a {
		t.Fatalf("index %d reused", a)
	}
	if positions.Has(a) {
		t.Error("removed index should stay empty")
	}
	if positions.Has(b) {
		t.Error("new entity should not inherit components")
	}
}

func TestEach2(t *testing.T) {
	s := New()
	positions := NewColumn[pos](s)
	tags := NewColumn[tag](s)

	var want []Entity
	for i := 0; i < 6; i++ {
		e := s.CreateEntity()
		positions.Insert(e, pos{float64(i), 0})
		if i%2 == 0 {
			tags.Insert(e, tag{})
			want = append(want, e)
		}
	}
	s.MarkDeleted(want[1])
	want = slices.Delete(want, 1, 2)

	var got []Entity
	Each2(s, func(e Entity, p *pos, _ *tag) {
		p.Y = 1
		got = append(got, e)
	})
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Errorf("Each2 visited %v, want %v", got, want)
	}
	for _, e := range want {
		if positions.Get(e).Y != 1 {
			t.Errorf("entity %d not updated through pointer", e)
		}
	}
}
