package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerMask(t *testing.T) {
	m := LayerBit(LayerDestructible) | LayerBit(LayerHazard)
	assert.True(t, m.Has(LayerHazard))
	assert.True(t, m.Has(LayerDestructible))
	assert.False(t, m.Has(LayerWall))
	assert.Equal(t, LayerMask(0), LayerBit(40))
	assert.False(t, m.Has(-1))
}

// TestPlaneSweep hits only when moving toward the solid side.
func TestPlaneSweep(t *testing.T) {
	s := NewScene()
	s.Add(&Surface{ID: "north", Shape: NewPlane(Vec3{0, 0, 3}, Vec3{0, 0, -1}), Active: true})

	hit, ok := s.Sweep(Vec3{}, Vec3{0, 0, 1}, 0.5, 10)
	require.True(t, ok)
	assert.InDelta(t, 2.5, hit.Distance, 1e-12)
	assert.Equal(t, Vec3{0, 0, -1}, hit.Normal)
	assert.InDelta(t, 3.0, hit.Point[2], 1e-12)
	assert.Equal(t, "north", hit.Surface.ID)

	_, ok = s.Sweep(Vec3{}, Vec3{0, 0, -1}, 0.5, 10)
	assert.False(t, ok)
	_, ok = s.Sweep(Vec3{}, Vec3{0, 0, 1}, 0.5, 2)
	assert.False(t, ok)
}

// TestBoxSweep hits the face of the radius-expanded box.
func TestBoxSweep(t *testing.T) {
	s := NewScene()
	s.Add(&Surface{ID: "crate", Shape: Box{Min: Vec3{-1, -1, 5}, Max: Vec3{1, 1, 6}}, Active: true})

	hit, ok := s.Sweep(Vec3{}, Vec3{0, 0, 1}, 0.5, 10)
	require.True(t, ok)
	assert.InDelta(t, 4.5, hit.Distance, 1e-12)
	assert.Equal(t, Vec3{0, 0, -1}, hit.Normal)
	assert.InDelta(t, 5.0, hit.Point[2], 1e-12)

	hit, ok = s.Sweep(Vec3{-5, 0, 5.5}, Vec3{1, 0, 0}, 0.25, 10)
	require.True(t, ok)
	assert.InDelta(t, 3.75, hit.Distance, 1e-12)
	assert.Equal(t, Vec3{-1, 0, 0}, hit.Normal)

	_, ok = s.Sweep(Vec3{3, 0, 0}, Vec3{0, 0, 1}, 0.5, 10)
	assert.False(t, ok)
}

// TestSceneSweepNearestActive picks the closest surface and skips inactive ones.
func TestSceneSweepNearestActive(t *testing.T) {
	s := NewScene()
	near := s.Add(&Surface{ID: "near", Shape: NewPlane(Vec3{0, 0, 2}, Vec3{0, 0, -1}), Active: true})
	s.Add(&Surface{ID: "far", Shape: Box{Min: Vec3{-1, -1, 5}, Max: Vec3{1, 1, 6}}, Active: true})

	hit, ok := s.Sweep(Vec3{}, Vec3{0, 0, 1}, 0.5, 10)
	require.True(t, ok)
	assert.Equal(t, "near", hit.Surface.ID)

	near.Active = false
	hit, ok = s.Sweep(Vec3{}, Vec3{0, 0, 1}, 0.5, 10)
	require.True(t, ok)
	assert.Equal(t, "far", hit.Surface.ID)
}

func TestSceneAddReplacesID(t *testing.T) {
	s := NewScene()
	s.Add(&Surface{ID: "a", Shape: NewPlane(Vec3{}, Up), Active: true})
	s.Add(&Surface{ID: "b", Shape: NewPlane(Vec3{}, Up), Active: true})
	replaced := s.Add(&Surface{ID: "a", Shape: NewPlane(Vec3{0, 1, 0}, Up), Active: true})

	surfaces := s.Surfaces()
	require.Len(t, surfaces, 2)
	assert.Equal(t, "a", surfaces[0].ID)
	assert.Same(t, replaced, s.Surface("a"))
}

func TestSceneSweepRejectsDegenerateInput(t *testing.T) {
	s := NewScene()
	s.Add(&Surface{ID: "floor", Shape: NewPlane(Vec3{}, Up), Active: true})
	_, ok := s.Sweep(Vec3{0, 1, 0}, Vec3{}, 0.5, 10)
	assert.False(t, ok)
	_, ok = s.Sweep(Vec3{0, 1, 0}, Vec3{0, -1, 0}, 0.5, 0)
	assert.False(t, ok)

	var nilScene *Scene
	_, ok = nilScene.Sweep(Vec3{}, Vec3{0, -1, 0}, 0.5, 10)
	assert.False(t, ok)
}
