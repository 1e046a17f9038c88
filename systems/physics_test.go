package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/store"
)

func TestCircleContact(t *testing.T) {
	tests := []struct {
		name    string
		pa, pb  r2.Vec
		ra, rb  float64
		wantOK  bool
		wantPen float64
		wantN   r2.Vec
	}{
		{"apart", r2.Vec{X: 0}, r2.Vec{X: 31}, 10, 20, false, 0, r2.Vec{}},
		{"overlapping", r2.Vec{X: 0}, r2.Vec{X: 25}, 10, 20, true, 5, r2.Vec{X: 1}},
		{"touching", r2.Vec{Y: 0}, r2.Vec{Y: 3}, 1, 2, true, 0, r2.Vec{Y: 1}},
		{"diagonal", r2.Vec{X: 1, Y: 1}, r2.Vec{X: 4, Y: 5}, 3, 3, true, 1, r2.Vec{X: 0.6, Y: 0.8}},
		{"coincident", r2.Vec{X: 7, Y: 7}, r2.Vec{X: 7, Y: 7}, 4, 6, true, 4, r2.Vec{X: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, pen, ok := CircleContact(tc.pa, tc.pb, tc.ra, tc.rb)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(pen-tc.wantPen) > 1e-9 {
				t.Errorf("penetration = %v, want %v", pen, tc.wantPen)
			}
			if math.Abs(n.X-tc.wantN.X) > 1e-9 || math.Abs(n.Y-tc.wantN.Y) > 1e-9 {
				t.Errorf("normal = %v, want %v", n, tc.wantN)
			}
		})
	}
}

func TestGenManifoldProperty(t *testing.T) {
	w := newTestWorld(t)
	p := NewPhysicsSystem(w.s, w.cfg)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		ra, rb := 1+rng.Float64()*10, 1+rng.Float64()*10
		a := w.creature(components.Vegan, rng.Float64()*40, rng.Float64()*40, ra)
		b := w.creature(components.Vegan, rng.Float64()*40, rng.Float64()*40, rb)

		dist := r2.Norm(r2.Sub(w.positions.Get(b).Vec, w.positions.Get(a).Vec))
		m, ok := p.GenManifold(a, b)
		if want := dist <= ra+rb; ok != want {
			t.Fatalf("dist %v radii %v+%v: ok = %v, want %v", dist, ra, rb, ok, want)
		}
		if ok && m.Penetration < 0 {
			t.Fatalf("negative penetration %v", m.Penetration)
		}
	}
}

func TestResolveConservesMomentum(t *testing.T) {
	w := newTestWorld(t)
	p := NewPhysicsSystem(w.s, w.cfg)
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		a := w.creature(components.Vegan, 0, 0, 5)
		b := w.creature(components.Vegan, 4+rng.Float64()*5, rng.Float64()*2-1, 5)
		ma, mb := 0.1+rng.Float64(), 0.1+rng.Float64()
		w.bodies.Insert(a, components.NewBody(5, ma, rng.Float64()))
		w.bodies.Insert(b, components.NewBody(5, mb, rng.Float64()))
		w.velocities.Insert(a, components.Velocity{Vec: r2.Vec{X: 1 + rng.Float64()*5, Y: rng.Float64() - 0.5}})
		w.velocities.Insert(b, components.Velocity{Vec: r2.Vec{X: -rng.Float64() * 5, Y: rng.Float64() - 0.5}})

		m, ok := p.GenManifold(a, b)
		if !ok {
			t.Fatal("expected overlap")
		}
		va, vb := w.velocities.Get(a).Vec, w.velocities.Get(b).Vec
		pre := r2.Dot(r2.Sub(vb, va), m.Normal)
		before := r2.Add(r2.Scale(ma, va), r2.Scale(mb, vb))

		if !p.Resolve(m) {
			t.Fatalf("approaching pair reported separating (veln %v)", pre)
		}

		va, vb = w.velocities.Get(a).Vec, w.velocities.Get(b).Vec
		post := r2.Dot(r2.Sub(vb, va), m.Normal)
		after := r2.Add(r2.Scale(ma, va), r2.Scale(mb, vb))

		e := min(w.bodies.Get(a).Restitution, w.bodies.Get(b).Restitution)
		if post < -e*pre-1e-9 {
			t.Errorf("post normal velocity %v below restitution bound %v", post, -e*pre)
		}
		if r2.Norm(r2.Sub(after, before)) > 1e-9 {
			t.Errorf("momentum changed: %v -> %v", before, after)
		}
	}
}

func TestResolveSeparatingUnchanged(t *testing.T) {
	w := newTestWorld(t)
	p := NewPhysicsSystem(w.s, w.cfg)
	a := w.creature(components.Vegan, 0, 0, 5)
	b := w.creature(components.Vegan, 8, 0, 5)
	w.velocities.Insert(a, components.Velocity{Vec: r2.Vec{X: -1}})
	w.velocities.Insert(b, components.Velocity{Vec: r2.Vec{X: 1}})

	m, _ := p.GenManifold(a, b)
	if p.Resolve(m) {
		t.Error("separating pair should not resolve")
	}
	if w.velocities.Get(a).X != -1 || w.velocities.Get(b).X != 1 {
		t.Error("separating pair velocities changed")
	}
}

func TestResolveImmovable(t *testing.T) {
	w := newTestWorld(t)
	p := NewPhysicsSystem(w.s, w.cfg)
	a := w.creature(components.Vegan, 0, 0, 5)
	b := w.creature(components.Vegan, 8, 0, 5)
	w.bodies.Insert(a, components.NewBody(5, 0, 1))
	w.bodies.Insert(b, components.NewBody(5, 0, 1))
	w.velocities.Insert(a, components.Velocity{Vec: r2.Vec{X: 1}})

	m, _ := p.GenManifold(a, b)
	p.Resolve(m)
	p.Correct(m)
	if w.velocities.Get(a).X != 1 || w.positions.Get(a).X != 0 || w.positions.Get(b).X != 8 {
		t.Error("immovable bodies should not receive impulse or correction")
	}
}

func TestDegenerateContactNoNaN(t *testing.T) {
	w := newTestWorld(t)
	p := NewPhysicsSystem(w.s, w.cfg)
	a := w.creature(components.Vegan, 10, 10, 3)
	b := w.creature(components.Vegan, 10, 10, 4)
	w.velocities.Insert(a, components.Velocity{Vec: r2.Vec{X: 2, Y: 1}})

	m, ok := p.GenManifold(a, b)
	if !ok {
		t.Fatal("coincident bodies must collide")
	}
	p.Resolve(m)
	p.Correct(m)

	for _, e := range []store.Entity{a, b} {
		pos := w.positions.Get(e).Vec
		vel := w.velocities.Get(e).Vec
		for _, v := range []float64{pos.X, pos.Y, vel.X, vel.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("entity %d has non-finite state pos=%v vel=%v", e, pos, vel)
			}
		}
	}
	if w.positions.Get(a).X >= w.positions.Get(b).X {
		t.Error("correction should separate along +x")
	}
}

func TestCorrectRespectsSlop(t *testing.T) {
	w := newTestWorld(t)
	p := NewPhysicsSystem(w.s, w.cfg)
	a := w.creature(components.Vegan, 0, 0, 5)
	b := w.creature(components.Vegan, 10-w.cfg.Physics.Slop/2, 0, 5)

	m, ok := p.GenManifold(a, b)
	if !ok {
		t.Fatal("expected overlap")
	}
	p.Correct(m)
	if w.positions.Get(a).X != 0 {
		t.Errorf("penetration below slop moved body to %v", w.positions.Get(a).X)
	}

	w.positions.Insert(b, components.Position{Vec: r2.Vec{X: 6}})
	m, _ = p.GenManifold(a, b)
	p.Correct(m)
	// pen 4, slop 0.02, equal masses: each moves (4-0.02)/2*0.2
	want := (4 - w.cfg.Physics.Slop) / 2 * w.cfg.Physics.Percent
	if got := -w.positions.Get(a).X; math.Abs(got-want) > 1e-9 {
		t.Errorf("correction = %v, want %v", got, want)
	}
}

func TestIntegrateWraps(t *testing.T) {
	w := newTestWorld(t)
	p := NewPhysicsSystem(w.s, w.cfg)
	width, margin := w.cfg.World.Width, w.cfg.Derived.Margin

	mover := w.creature(components.Vegan, width+margin-1, 5, 2)
	w.velocities.Insert(mover, components.Velocity{Vec: r2.Vec{X: 10}})
	still := w.food(20, 20, 2)

	p.Integrate(0.5)

	got := w.positions.Get(mover).X
	want := width + margin - 1 + 5 - (width + 2*margin)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("wrapped x = %v, want %v", got, want)
	}
	if w.positions.Get(still).X != 20 {
		t.Error("entity without velocity moved")
	}
}

func TestWrapLandsOffscreen(t *testing.T) {
	const limit, margin = 100.0, 5.0
	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"inside", 50, 50},
		{"in right margin", 104, 104},
		{"past right margin", 105.5, -4.5},
		{"past left margin", -5.5, 104.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := wrap(tc.x, limit, margin); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("wrap(%v) = %v, want %v", tc.x, got, tc.want)
			}
		})
	}
}
