package game

// PeriodicHazard switches a surface on for OnDuration seconds, then off for OffDuration,
// starting in the on phase.
type PeriodicHazard struct {
	Surface     *Surface
	OnDuration  float64
	OffDuration float64

	elapsed float64
}

func NewPeriodicHazard(surface *Surface, on, off float64) *PeriodicHazard {
	if !(on > 0) {
		on = Dt
	}
	if !(off >= 0) {
		off = 0
	}
	h := &PeriodicHazard{Surface: surface, OnDuration: on, OffDuration: off}
	if surface != nil {
		surface.Active = true
	}
	return h
}

func (h *PeriodicHazard) Period() float64 { return h.OnDuration + h.OffDuration }

// On reports whether the hazard is in its on phase.
func (h *PeriodicHazard) On() bool {
	return h.elapsed < h.OnDuration
}

// Advance moves the duty cycle forward and applies the phase to the surface.
func (h *PeriodicHazard) Advance(dt float64) {
	if !(dt > 0) {
		return
	}
	h.elapsed += dt
	for period := h.Period(); h.elapsed >= period; {
		h.elapsed -= period
	}
	if h.Surface != nil {
		h.Surface.Active = h.On()
	}
}
