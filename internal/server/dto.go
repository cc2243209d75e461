package server

import (
	"strconv"

	"crabtrain/internal/game"
)

type vec3DTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type quatDTO struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type leaderDTO struct {
	ID       string  `json:"id"`
	Pos      vec3DTO `json:"pos"`
	Rot      quatDTO `json:"rot"`
	Velocity vec3DTO `json:"vel"`
	Speed    float64 `json:"speed"`
}

type followerDTO struct {
	ID     string  `json:"id"`
	Index  int     `json:"index"`
	Delay  float64 `json:"delay"`
	Pos    vec3DTO `json:"pos"`
	Rot    quatDTO `json:"rot"`
	Target vec3DTO `json:"target"`
}

type projectileDTO struct {
	ID       string  `json:"id"`
	Pos      vec3DTO `json:"pos"`
	Velocity vec3DTO `json:"vel"`
	Bounces  int     `json:"bounces"`
	Life     float64 `json:"life"`
}

type surfaceDTO struct {
	ID     string `json:"id"`
	Layer  int    `json:"layer"`
	Active bool   `json:"active"`
}

type eventDTO struct {
	Seq        uint64  `json:"seq"`
	Type       string  `json:"type"`
	At         float64 `json:"t"`
	Entity     string  `json:"entity"`
	Delay      float64 `json:"delay,omitempty"`
	Velocity   vec3DTO `json:"vel"`
	Point      vec3DTO `json:"point"`
	Cause      string  `json:"cause,omitempty"`
	Surface    string  `json:"surface,omitempty"`
	Energy     float64 `json:"energy,omitempty"`
	ConsumedBy *int    `json:"consumed_by,omitempty"`
}

type stateMsg struct {
	Type         string          `json:"type"`
	Room         string          `json:"room"`
	Now          float64         `json:"now"`
	Leader       leaderDTO       `json:"leader"`
	HeadToRecord float64         `json:"head_to_record"`
	HistoryLen   int             `json:"history_len"`
	HistoryClock float64         `json:"history_clock"`
	LastRecordAt float64         `json:"last_record_at"`
	Trail        []vec3DTO       `json:"trail"`
	Followers    []followerDTO   `json:"followers"`
	Projectiles  []projectileDTO `json:"projectiles"`
	Surfaces     []surfaceDTO    `json:"surfaces"`
	Events       []eventDTO      `json:"events,omitempty"`
}

// maxTrailPoints bounds the recorded path sent per frame, newest first.
const maxTrailPoints = 256

func entityKey(id game.EntityID) string {
	return "e" + strconv.FormatInt(int64(id), 10)
}

func vecDTO(v game.Vec3) vec3DTO {
	return vec3DTO{X: v[0], Y: v[1], Z: v[2]}
}

func rotDTO(b game.BodyView) quatDTO {
	return quatDTO{W: b.Rot.W, X: b.Rot.V[0], Y: b.Rot.V[1], Z: b.Rot.V[2]}
}

func stateFromSnapshot(s game.Snapshot) stateMsg {
	msg := stateMsg{
		Type: "state",
		Room: s.RoomID,
		Now:  s.Now,
		Leader: leaderDTO{
			ID:       entityKey(s.Leader.Entity),
			Pos:      vecDTO(s.Leader.Pos),
			Rot:      rotDTO(s.Leader),
			Velocity: vecDTO(s.Velocity),
			Speed:    s.Velocity.Len(),
		},
		HeadToRecord: s.HeadToRecord,
		HistoryLen:   s.HistoryLen,
		Followers:    make([]followerDTO, 0, len(s.Followers)),
		Projectiles:  make([]projectileDTO, 0, len(s.Projectiles)),
		Surfaces:     make([]surfaceDTO, 0, len(s.Surfaces)),
	}
	if h := s.History; h != nil {
		msg.HistoryClock = h.Clock()
		msg.LastRecordAt = h.LastRecord()
		n := min(h.Len(), maxTrailPoints)
		msg.Trail = make([]vec3DTO, 0, n)
		for k := 0; k < n; k++ {
			p, err := h.Sample(k)
			if err != nil {
				break
			}
			msg.Trail = append(msg.Trail, vecDTO(p))
		}
	}
	for _, f := range s.Followers {
		msg.Followers = append(msg.Followers, followerDTO{
			ID:     entityKey(f.Entity),
			Index:  f.Index,
			Delay:  f.Delay,
			Pos:    vecDTO(f.Pos),
			Rot:    rotDTO(f.BodyView),
			Target: vecDTO(f.Target),
		})
	}
	for _, p := range s.Projectiles {
		msg.Projectiles = append(msg.Projectiles, projectileDTO{
			ID:       entityKey(p.Entity),
			Pos:      vecDTO(p.Pos),
			Velocity: vecDTO(p.Velocity),
			Bounces:  p.Bounces,
			Life:     p.Life,
		})
	}
	for _, sf := range s.Surfaces {
		msg.Surfaces = append(msg.Surfaces, surfaceDTO{ID: sf.ID, Layer: sf.Layer, Active: sf.Active})
	}
	for _, ev := range s.Events {
		dto := eventDTO{
			Seq:      ev.Seq,
			Type:     string(ev.Type),
			At:       ev.At,
			Entity:   entityKey(ev.Entity),
			Delay:    ev.Delay,
			Velocity: vecDTO(ev.Velocity),
			Point:    vecDTO(ev.Point),
			Cause:    string(ev.Cause),
			Surface:  ev.SurfaceID,
			Energy:   ev.Energy,
		}
		if ev.Type == game.EventExplosion {
			consumed := ev.ConsumedBy
			dto.ConsumedBy = &consumed
		}
		msg.Events = append(msg.Events, dto)
	}
	return msg
}

// inputMsg is an inbound control frame. Missing numeric fields keep their zero value.
type inputMsg struct {
	Type     string  `json:"type"`
	Throttle float64 `json:"throttle"`
	Steer    float64 `json:"steer"`
	Brake    bool    `json:"brake"`
}

func (m inputMsg) toInput() game.Input {
	return game.Input{Throttle: m.Throttle, Steer: m.Steer, Brake: m.Brake}
}
