package game

import "math"

// LaunchParams tunes how a detached follower is thrown and how long it survives.
type LaunchParams struct {
	VelocityScale float64
	MinSpeed      float64
	MaxSpeed      float64
	AddUpwardKick bool
	UpwardKick    float64
	Radius        float64
	MaxBounces    int
	MaxLifetime   float64
	Restitution   float64
	Gravity       float64   // vertical acceleration, negative is down
	ExplodeMask   LayerMask // layers that detonate on first contact
}

func DefaultLaunchParams() LaunchParams {
	return LaunchParams{
		VelocityScale: LaunchVelocityScale,
		MinSpeed:      LaunchMinSpeed,
		MaxSpeed:      LaunchMaxSpeed,
		UpwardKick:    LaunchUpwardKick,
		Radius:        ProjectileRadius,
		MaxBounces:    ProjectileMaxBounces,
		MaxLifetime:   ProjectileMaxLifetime,
		Restitution:   ProjectileRestitution,
		Gravity:       ProjectileGravity,
		ExplodeMask:   DefaultExplodeMask(),
	}
}

func SanitizeLaunchParams(p LaunchParams) LaunchParams {
	if !(p.VelocityScale >= 0) || !finite(p.VelocityScale) {
		p.VelocityScale = LaunchVelocityScale
	}
	if !(p.MinSpeed >= 0) {
		p.MinSpeed = 0
	}
	p.MinSpeed = math.Min(p.MinSpeed, LaunchSpeedLimit)
	if !(p.MaxSpeed >= p.MinSpeed) {
		p.MaxSpeed = p.MinSpeed
	}
	p.MaxSpeed = math.Min(p.MaxSpeed, LaunchSpeedLimit)
	if !finite(p.UpwardKick) {
		p.UpwardKick = 0
	}
	if !(p.Radius > 0) || !finite(p.Radius) {
		p.Radius = ProjectileRadius
	}
	if p.MaxBounces < 0 {
		p.MaxBounces = 0
	}
	if !(p.MaxLifetime >= MinProjectileLifetime) {
		p.MaxLifetime = MinProjectileLifetime
	}
	if p.MaxLifetime > MaxProjectileLifetime {
		p.MaxLifetime = MaxProjectileLifetime
	}
	if !(p.Restitution >= 0) {
		p.Restitution = 0
	}
	if p.Restitution > 1 {
		p.Restitution = 1
	}
	if !finite(p.Gravity) {
		p.Gravity = ProjectileGravity
	}
	return p
}

// Launch is the reconstructed throw of a detached follower.
type Launch struct {
	Position  Vec3 // sampled path position at the follower's delay
	Direction Vec3
	Estimated Vec3 // finite-difference path velocity before clamping
	Velocity  Vec3 // final launch velocity
}

// ReconstructLaunch estimates the path velocity at delay by differencing two nearby samples and
// turns it into a clamped launch velocity. fallback is used as the direction when the path is
// stationary.
func ReconstructLaunch(view HistoryView, live Vec3, headToRecord, delay float64, fallback Vec3, p LaunchParams) Launch {
	headToRecord = math.Max(headToRecord, MinHeadToRecord)
	p1 := SampleAtDelay(view, live, headToRecord, delay)

	step := view.Interval()
	if delay <= headToRecord {
		step = headToRecord
	}
	h := math.Max(FiniteDifferenceMinH, step*0.5)
	p0 := SampleAtDelay(view, live, headToRecord, delay+h)

	v := p1.Sub(p0).Mul(1 / h)
	dir := normalizeOr(v, normalizeOr(fallback, Forward, 1e-12), launchDirMinLenSqr)

	speed := Clamp(v.Len()*p.VelocityScale, p.MinSpeed, p.MaxSpeed)
	vel := dir.Mul(speed)
	if p.AddUpwardKick {
		vel = vel.Add(Up.Mul(p.UpwardKick))
	}
	return Launch{Position: p1, Direction: dir, Estimated: v, Velocity: vel}
}
