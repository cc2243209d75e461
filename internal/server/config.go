package server

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	. "crabtrain/internal/game"
)

type chainConfig struct {
	Gap          *float64 `json:"gap"`
	PursuitSpeed *float64 `json:"pursuitSpeed"`
}

type moverConfig struct {
	Accel               *float64 `json:"accel"`
	SteerRate           *float64 `json:"steerRate"`
	Traction            *float64 `json:"traction"`
	BrakeForwardDecel   *float64 `json:"brakeForwardDecel"`
	BrakeLateralBoost   *float64 `json:"brakeLateralBoost"`
	BrakeTractionScale  *float64 `json:"brakeTractionScale"`
	MaxPlanarSpeed      *float64 `json:"maxPlanarSpeed"`
	BaseLateralFriction *float64 `json:"baseLateralFriction"`
	Radius              *float64 `json:"radius"`
	Skin                *float64 `json:"skin"`
}

type launchConfig struct {
	VelocityScale *float64 `json:"velocityScale"`
	MinSpeed      *float64 `json:"minSpeed"`
	MaxSpeed      *float64 `json:"maxSpeed"`
	AddUpwardKick *bool    `json:"addUpwardKick"`
	UpwardKick    *float64 `json:"upwardKick"`
	Radius        *float64 `json:"radius"`
	MaxBounces    *int     `json:"maxBounces"`
	MaxLifetime   *float64 `json:"maxLifetime"`
	Restitution   *float64 `json:"restitution"`
	Gravity       *float64 `json:"gravity"`
}

type explosionConfig struct {
	BaseRadius     *float64 `json:"baseRadius"`
	BaseEnergy     *float64 `json:"baseEnergy"`
	ReferenceSpeed *float64 `json:"referenceSpeed"`
}

type simConfig struct {
	Followers      *int             `json:"followers"`
	RecordInterval *float64         `json:"recordInterval"`
	HistoryMargin  *int             `json:"historyMargin"`
	Chain          *chainConfig     `json:"chain"`
	Mover          *moverConfig     `json:"mover"`
	Launch         *launchConfig    `json:"launch"`
	Explosion      *explosionConfig `json:"explosion"`
}

// TuningOverrides represents optional command-line or per-room overrides.
type TuningOverrides struct {
	Followers      *float64
	RecordInterval *float64
	Gap            *float64
	PursuitSpeed   *float64
	MaxPlanarSpeed *float64
	SteerRate      *float64
	LaunchMinSpeed *float64
	LaunchMaxSpeed *float64
	VelocityScale  *float64
}

func (o TuningOverrides) apply(base Tuning) Tuning {
	if n, ok := followersOverride(o.Followers); ok {
		base.Followers = n
	}
	setFloat(&base.RecordInterval, o.RecordInterval)
	setFloat(&base.Chain.Gap, o.Gap)
	setFloat(&base.Chain.PursuitSpeed, o.PursuitSpeed)
	setFloat(&base.Mover.MaxPlanarSpeed, o.MaxPlanarSpeed)
	setFloat(&base.Mover.SteerRate, o.SteerRate)
	setFloat(&base.Launch.MinSpeed, o.LaunchMinSpeed)
	setFloat(&base.Launch.MaxSpeed, o.LaunchMaxSpeed)
	setFloat(&base.Launch.VelocityScale, o.VelocityScale)
	return SanitizeTuning(base)
}

// followersOverride converts a float override into a follower count inside [0, MaxFollowers].
// Non-finite values are ignored.
func followersOverride(v *float64) (int, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return int(math.Max(0, math.Min(*v, MaxFollowers))), true
}

func (o TuningOverrides) empty() bool {
	return o == TuningOverrides{}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func mergeSimConfig(base Tuning, cfg simConfig) Tuning {
	setInt(&base.Followers, cfg.Followers)
	setFloat(&base.RecordInterval, cfg.RecordInterval)
	setInt(&base.HistoryMargin, cfg.HistoryMargin)
	if c := cfg.Chain; c != nil {
		setFloat(&base.Chain.Gap, c.Gap)
		setFloat(&base.Chain.PursuitSpeed, c.PursuitSpeed)
	}
	if m := cfg.Mover; m != nil {
		p := &base.Mover
		setFloat(&p.Accel, m.Accel)
		setFloat(&p.SteerRate, m.SteerRate)
		setFloat(&p.Traction, m.Traction)
		setFloat(&p.BrakeForwardDecel, m.BrakeForwardDecel)
		setFloat(&p.BrakeLateralBoost, m.BrakeLateralBoost)
		setFloat(&p.BrakeTractionScale, m.BrakeTractionScale)
		setFloat(&p.MaxPlanarSpeed, m.MaxPlanarSpeed)
		setFloat(&p.BaseLateralFriction, m.BaseLateralFriction)
		setFloat(&p.Radius, m.Radius)
		setFloat(&p.Skin, m.Skin)
	}
	if l := cfg.Launch; l != nil {
		p := &base.Launch
		setFloat(&p.VelocityScale, l.VelocityScale)
		setFloat(&p.MinSpeed, l.MinSpeed)
		setFloat(&p.MaxSpeed, l.MaxSpeed)
		if l.AddUpwardKick != nil {
			p.AddUpwardKick = *l.AddUpwardKick
		}
		setFloat(&p.UpwardKick, l.UpwardKick)
		setFloat(&p.Radius, l.Radius)
		setInt(&p.MaxBounces, l.MaxBounces)
		setFloat(&p.MaxLifetime, l.MaxLifetime)
		setFloat(&p.Restitution, l.Restitution)
		setFloat(&p.Gravity, l.Gravity)
	}
	if e := cfg.Explosion; e != nil {
		setFloat(&base.Explosion.BaseRadius, e.BaseRadius)
		setFloat(&base.Explosion.BaseEnergy, e.BaseEnergy)
		setFloat(&base.Explosion.ReferenceSpeed, e.ReferenceSpeed)
	}
	return SanitizeTuning(base)
}

// loadTuningFromFile layers the JSON file at path over base. A missing file is not an error.
func loadTuningFromFile(path string, base Tuning) (Tuning, error) {
	if path == "" {
		return SanitizeTuning(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return SanitizeTuning(base), nil
		}
		return SanitizeTuning(base), fmt.Errorf("read sim config %q: %w", cleanPath, err)
	}
	var cfg simConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SanitizeTuning(base), fmt.Errorf("parse sim config %q: %w", cleanPath, err)
	}
	return mergeSimConfig(base, cfg), nil
}
