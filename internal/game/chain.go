package game

// Spawner instantiates a body at a pose and returns its entity and live transform.
type Spawner interface {
	Spawn(pose Transform) (EntityID, *Transform)
}

// ChainParams tunes the follower train.
type ChainParams struct {
	Gap          float64 // delay step between consecutive followers, seconds
	PursuitSpeed float64 // proportional pursuit gain toward the delayed target
}

func DefaultChainParams() ChainParams {
	return ChainParams{Gap: FollowerGap, PursuitSpeed: FollowerPursuit}
}

// SanitizeChainParams keeps the gap in [MinFollowerGap, MaxFollowerGap] and pursuit*dt
// inside the stable range.
func SanitizeChainParams(p ChainParams, dt float64) ChainParams {
	if !(p.Gap >= MinFollowerGap) {
		p.Gap = MinFollowerGap
	}
	if p.Gap > MaxFollowerGap {
		p.Gap = MaxFollowerGap
	}
	if !(p.PursuitSpeed >= 0) {
		p.PursuitSpeed = 0
	}
	if dt > 0 && p.PursuitSpeed*dt > MaxPursuitFraction {
		p.PursuitSpeed = MaxPursuitFraction / dt
	}
	return p
}

// Follower is one chain member. Its delay is fixed when it joins the chain.
type Follower struct {
	Entity    EntityID
	Index     int
	Delay     float64
	Transform *Transform
	Target    Vec3 // last delayed target it pursued
}

// Chain is the ordered train of followers; only the tail can leave.
type Chain struct {
	p         ChainParams
	followers []*Follower
}

func NewChain(p ChainParams) *Chain {
	return &Chain{p: p, followers: make([]*Follower, 0, 8)}
}

func (c *Chain) Params() ChainParams { return c.p }

func (c *Chain) Len() int { return len(c.followers) }

// Delay is the time lag assigned to slot i.
func (c *Chain) Delay(i int) float64 {
	return c.p.Gap * float64(i+1)
}

func (c *Chain) Followers() []*Follower {
	return append([]*Follower(nil), c.followers...)
}

// RequiredHistorySeconds is how far back the farthest follower, plus one gap, samples.
func (c *Chain) RequiredHistorySeconds() float64 {
	return c.p.Gap * float64(len(c.followers)+1)
}

// SpawnInitial appends count followers at pose.
func (c *Chain) SpawnInitial(count int, pose Transform, spawner Spawner) {
	for i := 0; i < count; i++ {
		id, tr := spawner.Spawn(pose)
		idx := len(c.followers)
		c.followers = append(c.followers, &Follower{
			Entity:    id,
			Index:     idx,
			Delay:     c.Delay(idx),
			Transform: tr,
			Target:    pose.Pos,
		})
	}
}

// Update moves every follower a proportional step toward its delayed sample of the leader path.
func (c *Chain) Update(view HistoryView, headToRecord float64, leaderPos Vec3, dt float64) {
	for _, f := range c.followers {
		target := SampleAtDelay(view, leaderPos, headToRecord, f.Delay)
		f.Target = target
		tr := f.Transform
		if tr == nil {
			continue
		}
		move := target.Sub(tr.Pos)
		tr.Pos = tr.Pos.Add(move.Mul(c.p.PursuitSpeed * dt))
		if move.LenSqr() > FacingEpsilonSqr {
			tr.Rot = lookRotation(move)
		}
	}
}

// DetachTail removes and returns the last follower, or false when the chain is empty.
func (c *Chain) DetachTail() (*Follower, bool) {
	n := len(c.followers)
	if n == 0 {
		return nil, false
	}
	tail := c.followers[n-1]
	c.followers[n-1] = nil
	c.followers = c.followers[:n-1]
	return tail, true
}
