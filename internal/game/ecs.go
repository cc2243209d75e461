package game

import "sort"

type EntityID int64

type ComponentKey string

// World stores the components of every body in a room keyed by entity.
type World struct {
	nextEntity EntityID
	components map[ComponentKey]map[EntityID]any
}

// LeaderComponent marks the input-driven body whose trajectory is recorded.
type LeaderComponent struct {
	Leader *Leader
}

// FollowerComponent links a chain member's entity to its chain slot.
type FollowerComponent struct {
	Follower *Follower
}

// ProjectileComponent holds the ballistic state of a detached follower.
type ProjectileComponent struct {
	Projectile *Projectile
}

const (
	CompTransform  ComponentKey = "transform"
	CompLeader     ComponentKey = "leader"
	CompFollower   ComponentKey = "follower"
	CompProjectile ComponentKey = "projectile"
)

func (w *World) Transform(id EntityID) *Transform {
	if v, ok := w.GetComponent(id, CompTransform); ok {
		if t, ok := v.(*Transform); ok {
			return t
		}
	}
	return nil
}

func (w *World) LeaderData(id EntityID) *LeaderComponent {
	if v, ok := w.GetComponent(id, CompLeader); ok {
		if t, ok := v.(*LeaderComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) FollowerData(id EntityID) *FollowerComponent {
	if v, ok := w.GetComponent(id, CompFollower); ok {
		if t, ok := v.(*FollowerComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) ProjectileData(id EntityID) *ProjectileComponent {
	if v, ok := w.GetComponent(id, CompProjectile); ok {
		if t, ok := v.(*ProjectileComponent); ok {
			return t
		}
	}
	return nil
}

func NewWorld() *World {
	return &World{
		nextEntity: 0,
		components: make(map[ComponentKey]map[EntityID]any),
	}
}

func (w *World) NewEntity() EntityID {
	w.nextEntity++
	return w.nextEntity
}

// Spawn creates an entity with a transform at pose. It is the spawn capability handed to the chain.
func (w *World) Spawn(pose Transform) (EntityID, *Transform) {
	id := w.NewEntity()
	tr := pose
	w.SetComponent(id, CompTransform, &tr)
	return id, &tr
}

func (w *World) SetComponent(id EntityID, key ComponentKey, value any) {
	store, ok := w.components[key]
	if !ok {
		store = make(map[EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}

func (w *World) RemoveComponent(id EntityID, key ComponentKey) {
	if store, ok := w.components[key]; ok {
		delete(store, id)
	}
}

func (w *World) GetComponent(id EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}

func (w *World) HasComponent(id EntityID, key ComponentKey) bool {
	if store, ok := w.components[key]; ok {
		_, ok := store[id]
		return ok
	}
	return false
}

func (w *World) RemoveEntity(id EntityID) {
	for _, store := range w.components {
		delete(store, id)
	}
}

// ForEach visits, in ascending id order, every entity that has all required components.
// Ordering keeps ticks deterministic.
func (w *World) ForEach(required []ComponentKey, fn func(EntityID)) {
	if len(required) == 0 {
		return
	}
	first := w.components[required[0]]
	if first == nil {
		return
	}
	ids := make([]EntityID, 0, len(first))
	for id := range first {
		match := true
		for _, key := range required[1:] {
			if store := w.components[key]; store == nil {
				match = false
				break
			} else if _, ok := store[id]; !ok {
				match = false
				break
			}
		}
		if match {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(id)
	}
}

func (w *World) Count(key ComponentKey) int {
	return len(w.components[key])
}

func (w *World) Exists(id EntityID) bool {
	for _, store := range w.components {
		if _, ok := store[id]; ok {
			return true
		}
	}
	return false
}
