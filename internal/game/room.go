package game

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const maxRoomEvents = 64

type EventType string

const (
	EventDetach    EventType = "detach"
	EventExplosion EventType = "explosion"
)

// Event is a discrete happening in a room, kept for telemetry consumers.
type Event struct {
	Seq        uint64
	Type       EventType
	At         float64
	Entity     EntityID
	Delay      float64 // detach: the follower's delay
	Velocity   Vec3    // detach: launch velocity; explosion: incoming velocity
	Point      Vec3
	Cause      ExplosionCause
	SurfaceID  string
	Energy     float64
	ConsumedBy int
}

// TickReport summarizes one fixed tick.
type TickReport struct {
	Records     int
	Explosions  []*Explosion
	Followers   int
	Projectiles int
}

// Room owns one leader, its train, its projectiles and the arena they move in.
type Room struct {
	ID    string
	Now   float64
	World *World
	Arena *Arena
	Mu    sync.Mutex

	leader *Leader
	tuning Tuning
	input  Input
	spawn  Transform

	events  []Event
	nextSeq uint64

	lastActive float64
	clients    int
	log        *zap.Logger
}

func NewRoom(id string, tuning Tuning, arena *Arena) *Room {
	if arena == nil {
		arena = NewEmptyArena()
	}
	r := &Room{
		ID:    id,
		Arena: arena,
		log:   zap.NewNop(),
		spawn: NewTransform(Vec3{0, LeaderRadius, 0}, mgl64.QuatIdent()),
	}
	r.reset(SanitizeTuning(tuning))
	return r
}

func (r *Room) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	r.log = l.With(zap.String("room", r.ID))
}

// SetSpawnLocked moves the leader's start pose; it takes effect on the next reset. Callers hold Mu.
func (r *Room) SetSpawnLocked(pose Transform) {
	r.spawn = pose
}

func (r *Room) SetSpawn(pose Transform) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.SetSpawnLocked(pose)
}

func (r *Room) reset(tuning Tuning) {
	r.tuning = tuning
	r.World = NewWorld()
	r.Now = 0
	r.input = Input{}
	r.leader = NewLeader(r.World, r.spawn, tuning)
	r.World.SetComponent(r.leader.Entity, CompLeader, &LeaderComponent{Leader: r.leader})
	for _, f := range r.leader.Chain().Followers() {
		r.World.SetComponent(f.Entity, CompFollower, &FollowerComponent{Follower: f})
	}
}

// ResetLocked rebuilds the leader and its train with new tuning. Callers hold Mu.
func (r *Room) ResetLocked(tuning Tuning) {
	r.reset(SanitizeTuning(tuning))
	r.log.Info("room reset", zap.Int("followers", r.tuning.Followers), zap.Float64("gap", r.tuning.Chain.Gap))
}

func (r *Room) Reset(tuning Tuning) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.ResetLocked(tuning)
}

func (r *Room) TuningLocked() Tuning { return r.tuning }

func (r *Room) LeaderLocked() *Leader { return r.leader }

// SetInput caches the latest control state; it is consumed by the next Tick.
func (r *Room) SetInput(in Input) {
	r.Mu.Lock()
	r.input = in.sanitized()
	r.lastActive = r.Now
	r.Mu.Unlock()
}

// Tick advances the room by one fixed step: locomotion, recording, followers,
// projectiles, then the arena's timed hazards.
func (r *Room) Tick() TickReport {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.TickLocked()
}

func (r *Room) TickLocked() TickReport {
	r.Now += Dt
	report := TickReport{}
	report.Records = r.leader.Step(r.input, Dt, r.Arena.Scene)
	report.Explosions = r.updateProjectiles(Dt)
	r.Arena.Advance(Dt)
	report.Followers = r.leader.FollowerCount()
	report.Projectiles = r.World.Count(CompProjectile)
	return report
}

func (r *Room) updateProjectiles(dt float64) []*Explosion {
	var explosions []*Explosion
	var dead []EntityID
	r.World.ForEach([]ComponentKey{CompTransform, CompProjectile}, func(id EntityID) {
		pc := r.World.ProjectileData(id)
		if pc == nil || pc.Projectile == nil {
			return
		}
		ex, exploded := pc.Projectile.Step(dt, r.Arena.Scene)
		if !exploded {
			return
		}
		explosions = append(explosions, ex)
		dead = append(dead, id)
		surfaceID := ""
		if ex.Surface != nil {
			surfaceID = ex.Surface.ID
		}
		r.pushEvent(Event{
			Type:       EventExplosion,
			Entity:     id,
			Velocity:   ex.Context.IncomingVelocity,
			Point:      ex.Context.Point,
			Cause:      ex.Cause,
			SurfaceID:  surfaceID,
			Energy:     ex.Context.Energy,
			ConsumedBy: ex.ConsumedBy,
		})
		r.log.Debug("projectile exploded",
			zap.Int64("entity", int64(id)),
			zap.String("cause", string(ex.Cause)),
			zap.String("surface", surfaceID),
			zap.Int("consumed_by", ex.ConsumedBy))
	})
	for _, id := range dead {
		r.World.RemoveEntity(id)
	}
	return explosions
}

// Detach frees the tail follower and launches it. It returns false when the chain is empty.
func (r *Room) Detach() (*Projectile, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.DetachLocked()
}

func (r *Room) DetachLocked() (*Projectile, bool) {
	proj, launch, ok := r.leader.Detach()
	if !ok {
		r.log.Debug("detach on empty chain")
		return nil, false
	}
	r.lastActive = r.Now
	r.World.RemoveComponent(proj.Entity, CompFollower)
	r.World.SetComponent(proj.Entity, CompTransform, proj.Transform)
	r.World.SetComponent(proj.Entity, CompProjectile, &ProjectileComponent{Projectile: proj})
	r.pushEvent(Event{
		Type:     EventDetach,
		Entity:   proj.Entity,
		Delay:    r.tuning.Chain.Gap * float64(r.leader.FollowerCount()+1),
		Velocity: launch.Velocity,
		Point:    launch.Position,
	})
	r.log.Debug("follower detached",
		zap.Int64("entity", int64(proj.Entity)),
		zap.Float64("speed", launch.Velocity.Len()),
		zap.Int("remaining", r.leader.FollowerCount()))
	return proj, true
}

// SampleAtDelay exposes the leader's delayed path position to external detach logic.
func (r *Room) SampleAtDelay(delay float64) Vec3 {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.leader.SampleAtDelay(delay)
}

func (r *Room) pushEvent(ev Event) {
	r.nextSeq++
	ev.Seq = r.nextSeq
	ev.At = r.Now
	r.events = append(r.events, ev)
	if len(r.events) > maxRoomEvents {
		r.events = append(r.events[:0], r.events[len(r.events)-maxRoomEvents:]...)
	}
}

// EventsSinceLocked returns buffered events with Seq > seq.
func (r *Room) EventsSinceLocked(seq uint64) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Seq > seq {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Room) AttachClient() {
	r.Mu.Lock()
	r.clients++
	r.lastActive = r.Now
	r.Mu.Unlock()
}

func (r *Room) DetachClient() {
	r.Mu.Lock()
	if r.clients > 0 {
		r.clients--
	}
	r.lastActive = r.Now
	r.Mu.Unlock()
}

// IdleLocked reports whether nobody is connected and nothing happened for timeout seconds.
func (r *Room) IdleLocked(timeout float64) bool {
	return r.clients == 0 && r.Now-r.lastActive >= timeout
}

// Hub holds every live room by id.
type Hub struct {
	Rooms map[string]*Room
	Mu    sync.Mutex

	tuning Tuning
	log    *zap.Logger
}

func NewHub(tuning Tuning, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{Rooms: map[string]*Room{}, tuning: SanitizeTuning(tuning), log: log}
}

func (h *Hub) Tuning() Tuning { return h.tuning }

// GetRoom returns the room with id, creating it with the hub's tuning and the default arena.
func (h *Hub) GetRoom(id string) *Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	r, ok := h.Rooms[id]
	if !ok {
		r = NewRoom(id, h.tuning, NewDefaultArena())
		r.SetLogger(h.log)
		h.Rooms[id] = r
		h.log.Info("room created", zap.String("room", id))
	}
	return r
}

// RoomList returns the rooms ordered by id.
func (h *Hub) RoomList() []*Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	out := make([]*Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CleanupIdleRooms drops rooms that have had no clients for RoomIdleTimeoutS of sim time
// and returns their ids.
func (h *Hub) CleanupIdleRooms() []string {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	var removed []string
	for id, r := range h.Rooms {
		r.Mu.Lock()
		idle := r.IdleLocked(RoomIdleTimeoutS)
		r.Mu.Unlock()
		if idle {
			delete(h.Rooms, id)
			removed = append(removed, id)
			h.log.Info("room removed", zap.String("room", id))
		}
	}
	sort.Strings(removed)
	return removed
}
