package game

import "github.com/go-gl/mathgl/mgl64"

type BodyView struct {
	Entity EntityID
	Pos    Vec3
	Rot    mgl64.Quat
}

type FollowerView struct {
	BodyView
	Index  int
	Delay  float64
	Target Vec3
}

type ProjectileView struct {
	BodyView
	Velocity Vec3
	Bounces  int
	Life     float64
}

type SurfaceView struct {
	ID     string
	Layer  int
	Active bool
}

// Snapshot is a read-only copy of a room's state, safe to use after the lock is released.
type Snapshot struct {
	RoomID       string
	Now          float64
	Leader       BodyView
	Velocity     Vec3
	HeadToRecord float64
	HistoryLen   int
	History      *History // detached copy of the leader's ring
	Followers    []FollowerView
	Projectiles  []ProjectileView
	Surfaces     []SurfaceView
	Events       []Event
}

func (r *Room) Snapshot(sinceSeq uint64) Snapshot {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.SnapshotLocked(sinceSeq)
}

// SnapshotLocked copies the room state; events newer than sinceSeq are included.
func (r *Room) SnapshotLocked(sinceSeq uint64) Snapshot {
	hist := r.leader.History().Clone()
	s := Snapshot{
		RoomID:       r.ID,
		Now:          r.Now,
		HeadToRecord: hist.HeadToRecord(),
		HistoryLen:   hist.Len(),
		History:      hist,
		Events:       r.EventsSinceLocked(sinceSeq),
	}
	r.World.ForEach([]ComponentKey{CompTransform, CompLeader}, func(id EntityID) {
		lc := r.World.LeaderData(id)
		if lc == nil || lc.Leader == nil {
			return
		}
		s.Leader = BodyView{Entity: id, Pos: lc.Leader.Position(), Rot: lc.Leader.Rotation()}
		s.Velocity = lc.Leader.PlanarVelocity()
	})
	// Followers are spawned in chain order, so ascending ids keep index order.
	r.World.ForEach([]ComponentKey{CompTransform, CompFollower}, func(id EntityID) {
		fc := r.World.FollowerData(id)
		tr := r.World.Transform(id)
		if fc == nil || fc.Follower == nil || tr == nil {
			return
		}
		f := fc.Follower
		s.Followers = append(s.Followers, FollowerView{
			BodyView: BodyView{Entity: id, Pos: tr.Pos, Rot: tr.Rot},
			Index:    f.Index,
			Delay:    f.Delay,
			Target:   f.Target,
		})
	})
	r.World.ForEach([]ComponentKey{CompProjectile}, func(id EntityID) {
		pc := r.World.ProjectileData(id)
		if pc == nil || pc.Projectile == nil || pc.Projectile.Transform == nil {
			return
		}
		p := pc.Projectile
		s.Projectiles = append(s.Projectiles, ProjectileView{
			BodyView: BodyView{Entity: id, Pos: p.Transform.Pos, Rot: p.Transform.Rot},
			Velocity: p.Velocity,
			Bounces:  p.Bounces,
			Life:     p.Life,
		})
	})
	for _, surface := range r.Arena.Scene.Surfaces() {
		s.Surfaces = append(s.Surfaces, SurfaceView{ID: surface.ID, Layer: surface.Layer, Active: surface.Active})
	}
	return s
}
