package game

import "github.com/go-gl/mathgl/mgl64"

// Leader is the input-driven body: it moves, records its path and drags the chain behind it.
type Leader struct {
	Entity    EntityID
	Transform *Transform

	mover   *Mover
	history *History
	chain   *Chain
	tuning  Tuning
}

// NewLeader spawns the leader and its initial followers at pose. tuning must already be sanitized.
func NewLeader(spawner Spawner, pose Transform, tuning Tuning) *Leader {
	id, tr := spawner.Spawn(pose)
	l := &Leader{
		Entity:    id,
		Transform: tr,
		mover:     NewMover(tuning.Mover),
		chain:     NewChain(tuning.Chain),
		tuning:    tuning,
	}
	l.chain.SpawnInitial(tuning.Followers, pose, spawner)
	l.history = NewHistory(tuning.HistoryCapacity(), tuning.RecordInterval, pose.Pos)
	return l
}

func (l *Leader) Position() Vec3        { return l.Transform.Pos }
func (l *Leader) Rotation() mgl64.Quat  { return l.Transform.Rot }
func (l *Leader) PlanarVelocity() Vec3  { return l.mover.PlanarVelocity() }
func (l *Leader) FollowerCount() int    { return l.chain.Len() }
func (l *Leader) History() *History     { return l.history }
func (l *Leader) Chain() *Chain         { return l.chain }
func (l *Leader) Mover() *Mover         { return l.mover }
func (l *Leader) Tuning() Tuning        { return l.tuning }
func (l *Leader) HeadToRecord() float64 { return l.history.HeadToRecord() }

// Step runs one fixed tick of the locomotion, recording and follower pipeline and
// returns the number of history records it made.
func (l *Leader) Step(in Input, dt float64, sweeper Sweeper) int {
	l.mover.Step(l.Transform, in, dt, sweeper)
	records := l.history.Accumulate(dt, l.Transform.Pos)
	l.chain.Update(l.history, l.history.HeadToRecord(), l.Transform.Pos, dt)
	return records
}

// SampleAtDelay is where the leader was delay seconds ago along its recorded path.
func (l *Leader) SampleAtDelay(delay float64) Vec3 {
	return SampleAtDelay(l.history, l.Transform.Pos, l.history.HeadToRecord(), delay)
}

// SetRecordInterval changes the cadence. Existing samples were taken at the old spacing,
// so the ring restarts from the leader's current position.
func (l *Leader) SetRecordInterval(interval float64) {
	l.tuning.RecordInterval = interval
	l.tuning = SanitizeTuning(l.tuning)
	l.history.Reset(l.tuning.RecordInterval, l.tuning.HistoryCapacity(), l.Transform.Pos)
}

// Detach removes the tail follower and turns it into a projectile launched along the
// path velocity reconstructed at its delay.
func (l *Leader) Detach() (*Projectile, Launch, bool) {
	oldCount := l.chain.Len()
	f, ok := l.chain.DetachTail()
	if !ok {
		return nil, Launch{}, false
	}
	delay := l.tuning.Chain.Gap * float64(oldCount)

	fallback := Forward
	if f.Transform != nil {
		fallback = f.Transform.Forward()
	}
	launch := ReconstructLaunch(l.history, l.Transform.Pos, l.history.HeadToRecord(), delay, fallback, l.tuning.Launch)

	tr := f.Transform
	if tr == nil {
		tr = &Transform{}
	}
	tr.Pos = launch.Position
	tr.Rot = lookRotation(launch.Direction)

	proj := NewProjectile(f.Entity, l.Entity, tr, launch.Velocity, l.tuning.Launch, l.tuning.Explosion)
	return proj, launch, true
}
