package game

// DestructibleWall absorbs explosions strong enough to damage it and switches its
// surface off once its hit points run out.
type DestructibleWall struct {
	Surface        *Surface
	RequiredEnergy float64
	HitPoints      int
}

func NewDestructibleWall(surface *Surface, requiredEnergy float64, hitPoints int) *DestructibleWall {
	if hitPoints < 1 {
		hitPoints = 1
	}
	w := &DestructibleWall{
		Surface:        surface,
		RequiredEnergy: Clamp(requiredEnergy, 0, 1),
		HitPoints:      hitPoints,
	}
	if surface != nil {
		surface.AddReceiver(w)
	}
	return w
}

func (w *DestructibleWall) Broken() bool { return w.HitPoints <= 0 }

func (w *DestructibleWall) ReceiveImpact(ctx ImpactContext) bool {
	if w.Broken() || ctx.Energy < w.RequiredEnergy {
		return false
	}
	w.HitPoints--
	if w.HitPoints <= 0 && w.Surface != nil {
		w.Surface.Active = false
	}
	return true
}
