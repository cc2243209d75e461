package game

const (
	LayerGround       = 0
	LayerWall         = 1
	LayerDestructible = 2
	LayerHazard       = 3
)

const (
	ArenaHalfSize      = 40.0
	WallRequiredEnergy = 0.4
	WallHitPoints      = 1
	LaserOnSeconds     = 3.0
	LaserOffSeconds    = 3.0
)

// DefaultExplodeMask detonates detached followers on destructible walls and hazards.
func DefaultExplodeMask() LayerMask {
	return LayerBit(LayerDestructible) | LayerBit(LayerHazard)
}

// Arena is a populated scene plus the collaborators that animate it.
type Arena struct {
	Scene   *Scene
	Walls   []*DestructibleWall
	Hazards []*PeriodicHazard
}

// Advance runs the arena's time-driven collaborators.
func (a *Arena) Advance(dt float64) {
	for _, h := range a.Hazards {
		h.Advance(dt)
	}
}

// NewDefaultArena builds a walled floor with one destructible wall and one periodic laser.
func NewDefaultArena() *Arena {
	scene := NewScene()
	scene.Add(&Surface{ID: "floor", Layer: LayerGround, Shape: NewPlane(Vec3{}, Up), Active: true})

	bounds := []struct {
		id     string
		point  Vec3
		normal Vec3
	}{
		{"wall-north", Vec3{0, 0, ArenaHalfSize}, Vec3{0, 0, -1}},
		{"wall-south", Vec3{0, 0, -ArenaHalfSize}, Vec3{0, 0, 1}},
		{"wall-east", Vec3{ArenaHalfSize, 0, 0}, Vec3{-1, 0, 0}},
		{"wall-west", Vec3{-ArenaHalfSize, 0, 0}, Vec3{1, 0, 0}},
	}
	for _, b := range bounds {
		scene.Add(&Surface{ID: b.id, Layer: LayerWall, Shape: NewPlane(b.point, b.normal), Active: true})
	}

	breakable := scene.Add(&Surface{
		ID:     "breakable-1",
		Layer:  LayerDestructible,
		Shape:  Box{Min: Vec3{-6, 0, 20}, Max: Vec3{6, 3, 21}},
		Active: true,
	})
	laser := scene.Add(&Surface{
		ID:     "laser-1",
		Layer:  LayerHazard,
		Shape:  Box{Min: Vec3{20, 0, -10}, Max: Vec3{20.2, 2, 10}},
		Active: true,
	})

	return &Arena{
		Scene:   scene,
		Walls:   []*DestructibleWall{NewDestructibleWall(breakable, WallRequiredEnergy, WallHitPoints)},
		Hazards: []*PeriodicHazard{NewPeriodicHazard(laser, LaserOnSeconds, LaserOffSeconds)},
	}
}

// NewEmptyArena is an unbounded, empty world.
func NewEmptyArena() *Arena {
	return &Arena{Scene: NewScene()}
}
