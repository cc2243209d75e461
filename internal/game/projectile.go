package game

import "math"

type ProjectileState int

const (
	ProjectileActive ProjectileState = iota
	ProjectileExploded
)

func (s ProjectileState) String() string {
	switch s {
	case ProjectileActive:
		return "active"
	case ProjectileExploded:
		return "exploded"
	default:
		return "unknown"
	}
}

// ExplosionCause records why a projectile left the Active state.
type ExplosionCause string

const (
	CauseLifetime ExplosionCause = "lifetime"
	CauseHazard   ExplosionCause = "hazard"
	CauseBounces  ExplosionCause = "bounces"
)

// Explosion is the outcome of a projectile reaching its terminal state.
type Explosion struct {
	Cause      ExplosionCause
	Context    ImpactContext
	Surface    *Surface
	ConsumedBy int // index into Surface.Receivers, -1 when nobody consumed it
}

// Projectile is a detached follower flying ballistically until it explodes.
type Projectile struct {
	Entity     EntityID
	Instigator EntityID
	Transform  *Transform
	Velocity   Vec3

	Bounces int
	Life    float64
	State   ProjectileState

	p       LaunchParams
	profile ExplosionProfile
}

func NewProjectile(id, instigator EntityID, tr *Transform, vel Vec3, p LaunchParams, profile ExplosionProfile) *Projectile {
	return &Projectile{
		Entity:     id,
		Instigator: instigator,
		Transform:  tr,
		Velocity:   vel,
		State:      ProjectileActive,
		p:          p,
		profile:    profile,
	}
}

func (pr *Projectile) Active() bool { return pr.State == ProjectileActive }

func (pr *Projectile) Params() LaunchParams { return pr.p }

// Step advances the projectile by dt. It returns the explosion when the projectile
// detonates during this step.
func (pr *Projectile) Step(dt float64, sweeper Sweeper) (*Explosion, bool) {
	if !pr.Active() || pr.Transform == nil || !(dt > 0) {
		return nil, false
	}

	pr.Life += dt
	if pr.Life >= pr.p.MaxLifetime {
		return pr.explode(CauseLifetime, pr.Transform.Pos, pr.Transform.Forward().Mul(-1), nil), true
	}

	pr.Velocity = pr.Velocity.Add(Up.Mul(pr.p.Gravity * dt))
	move := pr.Velocity.Mul(dt)
	dist := move.Len()
	if dist*dist <= minMoveLenSqr || !finiteVec(move) {
		return nil, false
	}
	dir := move.Mul(1 / dist)
	if pr.Velocity.LenSqr() > minForceLenSqr {
		pr.Transform.Rot = lookRotation(pr.Velocity)
	}

	if sweeper == nil {
		pr.Transform.Pos = pr.Transform.Pos.Add(move)
		return nil, false
	}
	hit, blocked := sweeper.Sweep(pr.Transform.Pos, dir, pr.p.Radius, dist)
	if !blocked {
		pr.Transform.Pos = pr.Transform.Pos.Add(move)
		return nil, false
	}

	pr.Transform.Pos = pr.Transform.Pos.Add(dir.Mul(math.Max(0, hit.Distance-SweepSkin)))
	return pr.collide(hit)
}

// collide applies the contact rules: hazard layers detonate at once, anything else
// bounces until the bounce budget is exceeded.
func (pr *Projectile) collide(hit Hit) (*Explosion, bool) {
	if hit.Surface != nil && pr.p.ExplodeMask.Has(hit.Surface.Layer) {
		return pr.explode(CauseHazard, hit.Point, hit.Normal, hit.Surface), true
	}
	pr.Bounces++
	if pr.Bounces > pr.p.MaxBounces {
		return pr.explode(CauseBounces, hit.Point, hit.Normal, hit.Surface), true
	}
	into := pr.Velocity.Dot(hit.Normal)
	if into < 0 {
		pr.Velocity = pr.Velocity.Sub(hit.Normal.Mul((1 + pr.p.Restitution) * into))
	}
	return nil, false
}

func (pr *Projectile) explode(cause ExplosionCause, point, normal Vec3, surface *Surface) *Explosion {
	ctx := ImpactContext{
		Point:            point,
		Normal:           normal,
		IncomingVelocity: pr.Velocity,
		Energy:           pr.profile.Energy(pr.Velocity.Len()),
		Radius:           pr.profile.BaseRadius,
		Instigator:       pr.Instigator,
		Projectile:       pr.Entity,
	}
	consumedBy := -1
	if surface != nil {
		consumedBy = NotifyImpact(surface.Receivers, ctx)
	}
	pr.State = ProjectileExploded
	pr.Velocity = Vec3{}
	return &Explosion{Cause: cause, Context: ctx, Surface: surface, ConsumedBy: consumedBy}
}
