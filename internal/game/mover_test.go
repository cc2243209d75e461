package game

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityTransform(pos Vec3) *Transform {
	tr := NewTransform(pos, mgl64.QuatIdent())
	return &tr
}

// TestMoverSteeringNeedsSpeed does not rotate a stationary body.
func TestMoverSteeringNeedsSpeed(t *testing.T) {
	m := NewMover(DefaultMoverParams())
	tr := identityTransform(Vec3{})
	for i := 0; i < 20; i++ {
		m.Step(tr, Input{Steer: 1}, Dt, nil)
	}
	fwd := tr.Forward()
	assert.InDelta(t, 1.0, fwd[2], 1e-12)
	assert.Equal(t, Vec3{}, tr.Pos)
}

// TestMoverSteeringScalesWithSpeed turns faster the faster it goes.
func TestMoverSteeringScalesWithSpeed(t *testing.T) {
	yawAfter := func(speed float64) float64 {
		p := DefaultMoverParams()
		p.Traction = 0
		m := NewMover(p)
		m.SetPlanarVelocity(Vec3{0, 0, speed})
		tr := identityTransform(Vec3{})
		m.Step(tr, Input{Steer: 1}, Dt, nil)
		fwd := tr.Forward()
		return math.Atan2(fwd[0], fwd[2])
	}
	slow, fast := yawAfter(2), yawAfter(10)
	assert.InDelta(t, mgl64.DegToRad(2*SteerRate*Dt), slow, 1e-9)
	assert.InDelta(t, 5*slow, fast, 1e-9)
}

// TestMoverThrottleAccelerates integrates forward acceleration along the facing.
func TestMoverThrottleAccelerates(t *testing.T) {
	m := NewMover(DefaultMoverParams())
	tr := identityTransform(Vec3{})
	for i := 0; i < 10; i++ {
		m.Step(tr, Input{Throttle: 1}, Dt, nil)
	}
	assert.InDelta(t, 10.0, m.Speed(), 1e-9)
	assert.InDelta(t, 1.1, tr.Pos[2], 1e-9)
	assert.InDelta(t, 0.0, tr.Pos[0], 1e-12)
}

// TestMoverCapsPlanarSpeed clamps the planar velocity magnitude.
func TestMoverCapsPlanarSpeed(t *testing.T) {
	p := DefaultMoverParams()
	p.MaxPlanarSpeed = 5
	m := NewMover(p)
	tr := identityTransform(Vec3{})
	for i := 0; i < 50; i++ {
		m.Step(tr, Input{Throttle: 1}, Dt, nil)
	}
	assert.InDelta(t, 5.0, m.Speed(), 1e-9)
}

// TestMoverBrakeBleedsSpeed applies the forward deceleration while braking.
func TestMoverBrakeBleedsSpeed(t *testing.T) {
	m := NewMover(DefaultMoverParams())
	m.SetPlanarVelocity(Vec3{0, 0, 10})
	tr := identityTransform(Vec3{})
	m.Step(tr, Input{Brake: true}, Dt, nil)
	assert.InDelta(t, 10-BrakeForwardDecel*Dt, m.Speed(), 1e-9)

	for i := 0; i < 20; i++ {
		m.Step(tr, Input{Brake: true}, Dt, nil)
	}
	assert.Equal(t, 0.0, m.Speed())
}

// TestMoverBrakeDampsSideSlip removes lateral velocity faster when braking.
func TestMoverBrakeDampsSideSlip(t *testing.T) {
	lateralAfter := func(brake bool) float64 {
		p := DefaultMoverParams()
		p.Traction = 0
		p.BrakeForwardDecel = 0
		m := NewMover(p)
		m.SetPlanarVelocity(Vec3{4, 0, 4})
		tr := identityTransform(Vec3{})
		m.Step(tr, Input{Brake: brake}, Dt, nil)
		return m.PlanarVelocity()[0]
	}
	assert.InDelta(t, 4.0, lateralAfter(false), 1e-9)
	assert.InDelta(t, 4*(1-BrakeLateralBoost*Dt), lateralAfter(true), 1e-9)
}

// TestMoverNeverPenetratesPlane slides along a wall at every approach speed and angle.
func TestMoverNeverPenetratesPlane(t *testing.T) {
	p := DefaultMoverParams()
	wall := NewPlane(Vec3{0, 0, 5}, Vec3{0, 0, -1})
	scene := NewScene()
	scene.Add(&Surface{ID: "wall", Layer: LayerWall, Shape: wall, Active: true})

	for _, speed := range []float64{1, 5, 15, 30} {
		for _, deg := range []float64{0, 30, 60, 85} {
			t.Run(fmt.Sprintf("speed=%v/angle=%v", speed, deg), func(t *testing.T) {
				m := NewMover(p)
				a := mgl64.DegToRad(deg)
				m.SetPlanarVelocity(Vec3{math.Sin(a), 0, math.Cos(a)}.Mul(speed))
				tr := identityTransform(Vec3{})
				for i := 0; i < 200; i++ {
					m.Step(tr, Input{}, Dt, scene)
					require.GreaterOrEqual(t, wall.SignedDistance(tr.Pos), p.Radius-1e-9, "tick %d", i)
				}
			})
		}
	}
}

// TestMoverSlidesAlongWall keeps the tangential part of the motion after contact.
func TestMoverSlidesAlongWall(t *testing.T) {
	p := DefaultMoverParams()
	p.Traction = 0
	scene := NewScene()
	scene.Add(&Surface{ID: "wall", Layer: LayerWall, Shape: NewPlane(Vec3{0, 0, 1}, Vec3{0, 0, -1}), Active: true})

	m := NewMover(p)
	m.SetPlanarVelocity(Vec3{3, 0, 3})
	tr := identityTransform(Vec3{})
	for i := 0; i < 50; i++ {
		m.Step(tr, Input{}, Dt, scene)
	}
	v := m.PlanarVelocity()
	assert.InDelta(t, 3.0, v[0], 1e-9)
	assert.InDelta(t, 0.0, v[2], 1e-9)
	assert.Greater(t, tr.Pos[0], 2.0)
}

func TestSanitizeMoverParams(t *testing.T) {
	p := SanitizeMoverParams(MoverParams{
		Accel:              math.NaN(),
		Traction:           -1,
		BrakeTractionScale: 0,
		MaxPlanarSpeed:     -5,
		Radius:             0,
		Skin:               math.Inf(-1),
	})
	assert.Equal(t, MoveAccel, p.Accel)
	assert.Equal(t, 0.0, p.Traction)
	assert.Equal(t, MinBrakeTractionScale, p.BrakeTractionScale)
	assert.Equal(t, 0.0, p.MaxPlanarSpeed)
	assert.Equal(t, LeaderRadius, p.Radius)
	assert.Equal(t, SweepSkin, p.Skin)

	p = SanitizeMoverParams(MoverParams{BrakeTractionScale: 3})
	assert.Equal(t, 1.0, p.BrakeTractionScale)
}

func TestInputIsClamped(t *testing.T) {
	in := Input{Throttle: 4, Steer: math.NaN()}.sanitized()
	assert.Equal(t, 1.0, in.Throttle)
	assert.Equal(t, 0.0, in.Steer)
}
