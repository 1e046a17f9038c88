package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/store"
)

// Class values encoded for a ray hit, from the sensing creature's view.
const (
	ClassAttractive = 1.0 // food, or prey for a carnivore
	ClassNeutral    = 0.5 // same kind
	ClassRepulsive  = 0.0 // a predator, as seen by a vegan
)

// noHit is the feature pair reported by a ray that hits nothing.
var noHit = [2]float64{1, 1}

// CastRay projects center onto the ray from origin along heading with the
// given length. It returns the projection parameter t in [0, 1) when the
// circle of the given radius intersects the ray.
func CastRay(origin r2.Vec, heading, length float64, center r2.Vec, radius float64) (t float64, ok bool) {
	d := r2.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
	rel := r2.Sub(center, origin)
	along := r2.Dot(rel, d)
	t = along / length
	if t < 0 || t >= 1 {
		return 0, false
	}
	perp := r2.Sub(rel, r2.Scale(along, d))
	if r2.Norm(perp) > radius {
		return 0, false
	}
	return t, true
}

// RayHeadings returns the absolute headings of count rays evenly spanning
// fov around heading. A single ray points straight ahead.
func RayHeadings(dst []float64, heading, fov float64, count int) []float64 {
	dst = dst[:0]
	if count == 1 {
		return append(dst, heading)
	}
	step := fov / float64(count-1)
	for i := 0; i < count; i++ {
		dst = append(dst, heading-fov/2+step*float64(i))
	}
	return dst
}

// SensorSystem fills each creature's Inputs with raycast features.
type SensorSystem struct {
	positions  *store.Column[components.Position]
	directions *store.Column[components.Direction]
	bodies     *store.Column[components.Body]
	creatures  *store.Column[components.Creature]
	foods      *store.Column[components.Food]
	inputs     *store.Column[components.Inputs]
	cfg        *config.Config

	rays     int
	fov      float64
	view     float64
	headings []float64

	grid       *SpatialGrid
	candidates []int
}

// NewSensorSystem creates a sensor system.
func NewSensorSystem(s *store.Store, cfg *config.Config) *SensorSystem {
	return &SensorSystem{
		positions:  store.NewColumn[components.Position](s),
		directions: store.NewColumn[components.Direction](s),
		bodies:     store.NewColumn[components.Body](s),
		creatures:  store.NewColumn[components.Creature](s),
		foods:      store.NewColumn[components.Food](s),
		inputs:     store.NewColumn[components.Inputs](s),
		cfg:        cfg,
		rays:       cfg.Sensors.RayCount,
		fov:        cfg.Derived.FOV,
		view:       cfg.Sensors.ViewDistance,
		headings:   make([]float64, 0, cfg.Sensors.RayCount),
	}
}

// buildGrid indexes targets by position and returns the query radius that
// covers every target a ray can reach.
func (s *SensorSystem) buildGrid(targets []store.Entity) float64 {
	maxR := 0.0
	for _, t := range targets {
		if s.bodies.Has(t) {
			maxR = max(maxR, s.bodies.Get(t).Radius)
		}
	}
	reach := s.view + maxR
	if reach <= 0 {
		reach = 1
	}

	margin := s.cfg.Derived.Margin
	if s.grid == nil || s.grid.cellSize != reach {
		s.grid = NewSpatialGrid(-margin, -margin, s.cfg.World.Width+2*margin, s.cfg.World.Height+2*margin, reach)
	} else {
		s.grid.Clear()
	}
	for i, t := range targets {
		if s.bodies.Has(t) {
			s.grid.Insert(i, s.positions.Get(t).Vec)
		}
	}
	return reach
}

// Class returns the encoded class of target as sensed by a creature of kind
// sensing. ok is false for targets that are neither food nor creatures.
func (s *SensorSystem) Class(sensing components.Kind, target store.Entity) (float64, bool) {
	if s.foods.Has(target) {
		return ClassAttractive, true
	}
	if !s.creatures.Has(target) {
		return 0, false
	}
	return classOf(sensing, s.creatures.Get(target).Kind), true
}

func classOf(sensing, hit components.Kind) float64 {
	switch {
	case sensing == hit:
		return ClassNeutral
	case sensing.IsCarnivore():
		return ClassAttractive
	default:
		return ClassRepulsive
	}
}

// Update senses targets for every creature in creatures.
// Targets are visited in list order, so equal hits resolve to the earlier one.
func (s *SensorSystem) Update(creatures, targets []store.Entity) {
	reach := s.buildGrid(targets)
	for _, e := range creatures {
		if !s.creatures.Has(e) || !s.inputs.Has(e) {
			continue
		}
		origin := s.positions.Get(e).Vec
		s.candidates = s.grid.QueryInto(s.candidates, origin, reach)
		s.sense(e, origin, targets)
	}
}

func (s *SensorSystem) sense(e store.Entity, origin r2.Vec, targets []store.Entity) {
	heading := 0.0
	if s.directions.Has(e) {
		heading = s.directions.Get(e).Angle
	}
	kind := s.creatures.Get(e).Kind

	in := s.inputs.GetMut(e)
	if len(in.Values) != 2*s.rays {
		in.Values = make([]float64, 2*s.rays)
	}

	s.headings = RayHeadings(s.headings, heading, s.fov, s.rays)
	for i, h := range s.headings {
		best, class := math.Inf(1), 0.0
		for _, idx := range s.candidates {
			target := targets[idx]
			if target == e || !s.bodies.Has(target) {
				continue
			}
			t, ok := CastRay(origin, h, s.view, s.positions.Get(target).Vec, s.bodies.Get(target).Radius)
			if !ok || t >= best {
				continue
			}
			c, ok := s.Class(kind, target)
			if !ok {
				continue
			}
			best, class = t, c
		}
		if math.IsInf(best, 1) {
			in.Values[2*i], in.Values[2*i+1] = noHit[0], noHit[1]
			continue
		}
		in.Values[2*i], in.Values[2*i+1] = class, best
	}
}
