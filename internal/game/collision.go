package game

import (
	"math"
	"sort"
)

// Hit describes the first blocking contact found along a sweep.
type Hit struct {
	Distance float64 // distance travelled along dir before contact
	Point    Vec3    // contact point on the surface
	Normal   Vec3    // unit surface normal facing the swept body
	Surface  *Surface
}

// Sweeper answers "what would a sphere of this radius hit moving from origin along dir".
type Sweeper interface {
	Sweep(origin, dir Vec3, radius, maxDist float64) (Hit, bool)
}

// LayerMask selects surface layers; bit i set means layer i is included.
type LayerMask uint32

func LayerBit(layer int) LayerMask {
	if layer < 0 || layer > 31 {
		return 0
	}
	return LayerMask(1) << uint(layer)
}

func (m LayerMask) Has(layer int) bool {
	return m&LayerBit(layer) != 0
}

// Shape is a static collision primitive that can be swept against by a sphere.
type Shape interface {
	sweepSphere(origin, dir Vec3, radius, maxDist float64) (dist float64, normal Vec3, ok bool)
}

// Plane is the set of points p with Normal·p = Offset; the solid side is behind the normal.
type Plane struct {
	Normal Vec3
	Offset float64
}

func NewPlane(point, normal Vec3) Plane {
	n := normalizeOr(normal, Up, 1e-12)
	return Plane{Normal: n, Offset: n.Dot(point)}
}

func (p Plane) SignedDistance(pt Vec3) float64 {
	return p.Normal.Dot(pt) - p.Offset
}

func (p Plane) sweepSphere(origin, dir Vec3, radius, maxDist float64) (float64, Vec3, bool) {
	denom := p.Normal.Dot(dir)
	if denom >= -1e-12 {
		return 0, Vec3{}, false
	}
	gap := p.SignedDistance(origin) - radius
	if gap <= 0 {
		return 0, p.Normal, true
	}
	t := gap / -denom
	if t > maxDist {
		return 0, Vec3{}, false
	}
	return t, p.Normal, true
}

// Box is an axis-aligned solid box.
type Box struct {
	Min, Max Vec3
}

func (b Box) sweepSphere(origin, dir Vec3, radius, maxDist float64) (float64, Vec3, bool) {
	lo := b.Min.Sub(Vec3{radius, radius, radius})
	hi := b.Max.Add(Vec3{radius, radius, radius})

	tEnter, tExit := math.Inf(-1), math.Inf(1)
	enterAxis, enterSign := -1, 0.0
	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		if math.Abs(d) < 1e-12 {
			if o < lo[axis] || o > hi[axis] {
				return 0, Vec3{}, false
			}
			continue
		}
		t1 := (lo[axis] - o) / d
		t2 := (hi[axis] - o) / d
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tEnter {
			tEnter, enterAxis, enterSign = t1, axis, sign
		}
		if t2 < tExit {
			tExit = t2
		}
		if tEnter > tExit {
			return 0, Vec3{}, false
		}
	}
	if tExit < 0 || enterAxis < 0 {
		return 0, Vec3{}, false
	}
	var n Vec3
	n[enterAxis] = enterSign
	if tEnter < 0 {
		// already overlapping; block only motion heading into the box
		if dir.Dot(n) >= 0 {
			return 0, Vec3{}, false
		}
		return 0, n, true
	}
	if tEnter > maxDist {
		return 0, Vec3{}, false
	}
	return tEnter, n, true
}

// Surface is a piece of static geometry that bodies collide with and projectiles notify.
type Surface struct {
	ID        string
	Layer     int
	Shape     Shape
	Active    bool
	Receivers []ImpactReceiver
}

func (s *Surface) AddReceiver(r ImpactReceiver) {
	s.Receivers = append(s.Receivers, r)
}

// Scene is the collection of static surfaces the simulation sweeps against.
type Scene struct {
	surfaces []*Surface
	byID     map[string]*Surface
}

func NewScene() *Scene {
	return &Scene{byID: make(map[string]*Surface)}
}

func (s *Scene) Add(surface *Surface) *Surface {
	if surface == nil {
		return nil
	}
	if surface.ID != "" {
		if prev, ok := s.byID[surface.ID]; ok {
			s.remove(prev)
		}
		s.byID[surface.ID] = surface
	}
	s.surfaces = append(s.surfaces, surface)
	return surface
}

func (s *Scene) remove(surface *Surface) {
	for i, existing := range s.surfaces {
		if existing == surface {
			s.surfaces = append(s.surfaces[:i], s.surfaces[i+1:]...)
			return
		}
	}
}

func (s *Scene) Surface(id string) *Surface {
	return s.byID[id]
}

func (s *Scene) Surfaces() []*Surface {
	out := append([]*Surface(nil), s.surfaces...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sweep returns the nearest contact among active surfaces.
func (s *Scene) Sweep(origin, dir Vec3, radius, maxDist float64) (Hit, bool) {
	if s == nil || !(maxDist > 0) || !finiteVec(origin) || !finiteVec(dir) {
		return Hit{}, false
	}
	dir = normalizeOr(dir, Vec3{}, 1e-18)
	if dir.LenSqr() == 0 {
		return Hit{}, false
	}
	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, surface := range s.surfaces {
		if !surface.Active || surface.Shape == nil {
			continue
		}
		dist, normal, ok := surface.Shape.sweepSphere(origin, dir, radius, maxDist)
		if !ok || dist >= best.Distance {
			continue
		}
		center := origin.Add(dir.Mul(dist))
		best = Hit{
			Distance: dist,
			Point:    center.Sub(normal.Mul(radius)),
			Normal:   normal,
			Surface:  surface,
		}
		found = true
	}
	return best, found
}
