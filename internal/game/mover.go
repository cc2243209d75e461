package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MoverParams tunes the leader's planar locomotion.
type MoverParams struct {
	Accel               float64 // forward acceleration at full throttle
	SteerRate           float64 // degrees of yaw per unit of speed per second
	Traction            float64 // rate at which travel direction realigns with facing
	BrakeForwardDecel   float64 // speed bled per second while braking
	BrakeLateralBoost   float64 // lateral bleed rate while braking
	BrakeTractionScale  float64 // traction multiplier while braking (0.05..1)
	MaxPlanarSpeed      float64 // 0 disables the cap
	BaseLateralFriction float64 // lateral bleed rate without braking
	Radius              float64 // collision sphere radius
	Skin                float64 // gap kept from blocking surfaces
}

func DefaultMoverParams() MoverParams {
	return MoverParams{
		Accel:               MoveAccel,
		SteerRate:           SteerRate,
		Traction:            Traction,
		BrakeForwardDecel:   BrakeForwardDecel,
		BrakeLateralBoost:   BrakeLateralBoost,
		BrakeTractionScale:  BrakeTractionScale,
		MaxPlanarSpeed:      MaxPlanarSpeed,
		BaseLateralFriction: BaseLateralFriction,
		Radius:              LeaderRadius,
		Skin:                SweepSkin,
	}
}

// SanitizeMoverParams clamps mover tunables into ranges the integrator can run with.
func SanitizeMoverParams(p MoverParams) MoverParams {
	if !finite(p.Accel) {
		p.Accel = MoveAccel
	}
	if !finite(p.SteerRate) {
		p.SteerRate = SteerRate
	}
	if !(p.Traction >= 0) {
		p.Traction = 0
	}
	if !(p.BrakeForwardDecel >= 0) {
		p.BrakeForwardDecel = 0
	}
	if !(p.BrakeLateralBoost >= 0) {
		p.BrakeLateralBoost = 0
	}
	if math.IsNaN(p.BrakeTractionScale) {
		p.BrakeTractionScale = BrakeTractionScale
	}
	p.BrakeTractionScale = Clamp(p.BrakeTractionScale, MinBrakeTractionScale, 1)
	if !(p.MaxPlanarSpeed >= 0) {
		p.MaxPlanarSpeed = 0
	}
	if p.MaxPlanarSpeed > PlanarSpeedLimit {
		p.MaxPlanarSpeed = PlanarSpeedLimit
	}
	if !(p.BaseLateralFriction >= 0) {
		p.BaseLateralFriction = 0
	}
	if !(p.Radius > 0) || !finite(p.Radius) {
		p.Radius = LeaderRadius
	}
	if !(p.Skin >= 0) || !finite(p.Skin) {
		p.Skin = SweepSkin
	}
	return p
}

// Input is the cached control state consumed once per fixed tick.
type Input struct {
	Throttle float64
	Steer    float64
	Brake    bool
}

func (in Input) sanitized() Input {
	if !finite(in.Throttle) {
		in.Throttle = 0
	}
	if !finite(in.Steer) {
		in.Steer = 0
	}
	in.Throttle = Clamp(in.Throttle, -1, 1)
	in.Steer = Clamp(in.Steer, -1, 1)
	return in
}

// Mover integrates the leader's planar velocity and applies it with swept collision.
type Mover struct {
	p                MoverParams
	force            Vec3
	forwardAfterTurn Vec3
}

func NewMover(p MoverParams) *Mover {
	return &Mover{p: SanitizeMoverParams(p), forwardAfterTurn: Forward}
}

func (m *Mover) Params() MoverParams      { return m.p }
func (m *Mover) PlanarVelocity() Vec3     { return m.force }
func (m *Mover) Speed() float64           { return m.force.Len() }
func (m *Mover) ForwardAfterTurn() Vec3   { return m.forwardAfterTurn }
func (m *Mover) SetPlanarVelocity(v Vec3) { m.force = v }

// Step advances one fixed tick. sweeper may be nil for an empty world.
func (m *Mover) Step(tr *Transform, in Input, dt float64, sweeper Sweeper) {
	if tr == nil || !(dt > 0) {
		return
	}
	in = in.sanitized()
	p := m.p

	m.force = m.force.Add(tr.Forward().Mul(p.Accel * in.Throttle * dt))

	turnAngle := m.force.Len() * p.SteerRate * dt
	tr.Rot = tr.Rot.Mul(mgl64.QuatRotate(mgl64.DegToRad(turnAngle*in.Steer), Up)).Normalize()

	m.forwardAfterTurn = tr.Forward()
	if m.force.LenSqr() > minForceLenSqr {
		traction := p.Traction
		if in.Brake {
			traction *= p.BrakeTractionScale
		}
		speed := m.force.Len()
		m.force = lerpVec(m.force.Mul(1/speed), m.forwardAfterTurn, traction*dt).Mul(speed)
	}

	right := Up.Cross(m.forwardAfterTurn)
	if p.BaseLateralFriction > 0 && m.force.LenSqr() > minForceLenSqr {
		lateral := projectOnVector(m.force, right)
		m.force = m.force.Sub(lateral.Mul(Clamp(p.BaseLateralFriction*dt, 0, 1)))
	}

	if in.Brake && m.force.LenSqr() > minForceLenSqr {
		speed := m.force.Len()
		slowed := math.Max(0, speed-p.BrakeForwardDecel*dt)
		m.force = m.force.Mul(slowed / speed)

		lateral := projectOnVector(m.force, right)
		m.force = m.force.Sub(lateral.Mul(Clamp(p.BrakeLateralBoost*dt, 0, 1)))
	}

	if p.MaxPlanarSpeed > 0 {
		if speed := m.force.Len(); speed > p.MaxPlanarSpeed {
			m.force = m.force.Mul(p.MaxPlanarSpeed / speed)
		}
	}

	m.sweepMove(tr, dt, sweeper)
}

// sweepMove moves along force*dt, sliding along at most SweepPasses contacts.
func (m *Mover) sweepMove(tr *Transform, dt float64, sweeper Sweeper) {
	remaining := m.force.Mul(dt)
	if !finiteVec(remaining) {
		m.force = Vec3{}
		return
	}
	for pass := 0; pass < SweepPasses && remaining.LenSqr() > minMoveLenSqr; pass++ {
		dist := remaining.Len()
		dir := remaining.Mul(1 / dist)

		if sweeper == nil {
			tr.Pos = tr.Pos.Add(remaining)
			return
		}
		hit, blocked := sweeper.Sweep(tr.Pos, dir, m.p.Radius, dist+m.p.Skin)
		if !blocked {
			tr.Pos = tr.Pos.Add(remaining)
			return
		}

		allowed := math.Max(0, hit.Distance-m.p.Skin)
		tr.Pos = tr.Pos.Add(dir.Mul(allowed))

		m.force = projectOnPlane(m.force, hit.Normal)
		if into := m.force.Dot(hit.Normal); into < 0 {
			m.force = m.force.Sub(hit.Normal.Mul(into))
		}

		timeRatio := 1 - allowed/dist
		remaining = m.force.Mul(dt * timeRatio)
	}
}
