package game

// ImpactContext describes a projectile explosion as seen by the surface it struck.
type ImpactContext struct {
	Point            Vec3
	Normal           Vec3
	IncomingVelocity Vec3
	Energy           float64 // normalized 0..1 strength
	Radius           float64 // effect radius
	Instigator       EntityID
	Projectile       EntityID
}

// ImpactReceiver is any capability attached to a surface that reacts to explosions.
// Returning true consumes the event and stops propagation on that surface.
type ImpactReceiver interface {
	ReceiveImpact(ctx ImpactContext) bool
}

// ImpactReceiverFunc adapts a plain function to ImpactReceiver.
type ImpactReceiverFunc func(ctx ImpactContext) bool

func (f ImpactReceiverFunc) ReceiveImpact(ctx ImpactContext) bool { return f(ctx) }

// NotifyImpact hands ctx to receivers in order until one consumes it.
// It returns the index of the consuming receiver, or -1.
func NotifyImpact(receivers []ImpactReceiver, ctx ImpactContext) int {
	for i, r := range receivers {
		if r == nil {
			continue
		}
		if r.ReceiveImpact(ctx) {
			return i
		}
	}
	return -1
}

// ExplosionProfile scales the strength of a projectile's explosion.
type ExplosionProfile struct {
	BaseRadius     float64
	BaseEnergy     float64
	ReferenceSpeed float64 // impact speed that maps to full BaseEnergy
}

func DefaultExplosionProfile() ExplosionProfile {
	return ExplosionProfile{
		BaseRadius:     ExplosionBaseRadius,
		BaseEnergy:     ExplosionBaseEnergy,
		ReferenceSpeed: ExplosionReferenceSpeed,
	}
}

func SanitizeExplosionProfile(p ExplosionProfile) ExplosionProfile {
	if !(p.BaseRadius >= 0) || !finite(p.BaseRadius) {
		p.BaseRadius = 0
	}
	if !(p.BaseEnergy >= 0) {
		p.BaseEnergy = 0
	}
	if !(p.ReferenceSpeed >= 0) {
		p.ReferenceSpeed = 0
	}
	return p
}

// Energy maps an impact speed onto 0..1. A zero reference speed means full energy always.
func (p ExplosionProfile) Energy(speed float64) float64 {
	if p.ReferenceSpeed <= 0 {
		return Clamp(p.BaseEnergy, 0, 1)
	}
	return Clamp(p.BaseEnergy*speed/p.ReferenceSpeed, 0, 1)
}
