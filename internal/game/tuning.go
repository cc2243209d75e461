package game

// Tuning collects every tunable of a room. Values are sanitized once, at construction,
// so the tick never sees degenerate numbers.
type Tuning struct {
	Followers      int
	RecordInterval float64
	HistoryMargin  int
	Mover          MoverParams
	Chain          ChainParams
	Launch         LaunchParams
	Explosion      ExplosionProfile
}

func DefaultTuning() Tuning {
	return Tuning{
		Followers:      FollowerCount,
		RecordInterval: RecordInterval,
		HistoryMargin:  HistoryMargin,
		Mover:          DefaultMoverParams(),
		Chain:          DefaultChainParams(),
		Launch:         DefaultLaunchParams(),
		Explosion:      DefaultExplosionProfile(),
	}
}

// SanitizeTuning clamps and normalizes every section of t.
func SanitizeTuning(t Tuning) Tuning {
	if t.Followers < 0 {
		t.Followers = 0
	}
	if t.Followers > MaxFollowers {
		t.Followers = MaxFollowers
	}
	if !(t.RecordInterval >= MinRecordInterval) {
		t.RecordInterval = RecordInterval
	}
	if t.RecordInterval > MaxRecordInterval {
		t.RecordInterval = MaxRecordInterval
	}
	if t.HistoryMargin < 1 {
		t.HistoryMargin = 1
	}
	if t.HistoryMargin > MaxHistoryMargin {
		t.HistoryMargin = MaxHistoryMargin
	}
	t.Mover = SanitizeMoverParams(t.Mover)
	t.Chain = SanitizeChainParams(t.Chain, Dt)
	t.Launch = SanitizeLaunchParams(t.Launch)
	t.Explosion = SanitizeExplosionProfile(t.Explosion)
	return t
}

// HistoryCapacity sizes the leader's ring for the configured train.
func (t Tuning) HistoryCapacity() int {
	return HistoryCapacity(t.Followers, t.Chain.Gap, t.RecordInterval, t.HistoryMargin)
}
