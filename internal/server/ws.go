package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	. "crabtrain/internal/game"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	formatJSON  = "json"
	formatProto = "proto"
)

type helloMsg struct {
	Type         string  `json:"type"`
	Conn         string  `json:"conn"`
	Room         string  `json:"room"`
	Format       string  `json:"format"`
	Followers    int     `json:"followers"`
	Gap          float64 `json:"gap"`
	Interval     float64 `json:"record_interval"`
	SimHz        float64 `json:"sim_hz"`
	UpdateRateHz float64 `json:"update_rate_hz"`
}

func parseFloatOverride(values url.Values, key string) (*float64, bool) {
	raw := values.Get(key)
	if raw == "" {
		return nil, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return nil, false
	}
	return &val, true
}

func parseTuningOverrides(values url.Values) (TuningOverrides, bool) {
	var o TuningOverrides
	fields := []struct {
		key string
		dst **float64
	}{
		{"followers", &o.Followers},
		{"interval", &o.RecordInterval},
		{"gap", &o.Gap},
		{"pursuit", &o.PursuitSpeed},
		{"maxSpeed", &o.MaxPlanarSpeed},
		{"steerRate", &o.SteerRate},
		{"launchMin", &o.LaunchMinSpeed},
		{"launchMax", &o.LaunchMaxSpeed},
		{"launchScale", &o.VelocityScale},
	}
	found := false
	for _, f := range fields {
		if v, ok := parseFloatOverride(values, f.key); ok {
			*f.dst = v
			found = true
		}
	}
	return o, found
}

func parseFormat(values url.Values) string {
	if strings.ToLower(values.Get("format")) == formatProto {
		return formatProto
	}
	return formatJSON
}

// handleInbound applies one decoded client frame to the room.
func handleInbound(room *Room, msg inputMsg, log *zap.Logger) {
	switch msg.Type {
	case "input":
		room.SetInput(msg.toInput())
	case "detach":
		_, ok := room.Detach()
		observeDetach(ok)
	case "reset":
		room.Mu.Lock()
		room.ResetLocked(room.TuningLocked())
		room.Mu.Unlock()
	default:
		log.Debug("unknown message type", zap.String("type", msg.Type))
	}
}

func writeState(conn *websocket.Conn, format string, msg stateMsg) error {
	if format == formatProto {
		st, err := stateToProto(msg)
		if err != nil {
			return err
		}
		return sendProtoMessage(conn, st)
	}
	return conn.WriteJSON(msg)
}

func serveWS(h *Hub, log *zap.Logger, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	roomID := query.Get("room")
	if roomID == "" {
		roomID = "default"
	}
	format := parseFormat(query)
	overrides, hasOverrides := parseTuningOverrides(query)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade failed", zap.Error(err))
		return
	}
	connID := uuid.NewString()
	log = log.With(zap.String("conn", connID), zap.String("room", roomID))

	room := h.GetRoom(roomID)
	room.AttachClient()
	connectionsGauge.Inc()

	room.Mu.Lock()
	if hasOverrides && !overrides.empty() {
		room.ResetLocked(overrides.apply(room.TuningLocked()))
	}
	tuning := room.TuningLocked()
	room.Mu.Unlock()

	log.Info("client connected", zap.String("format", format))
	hello := helloMsg{
		Type:         "hello",
		Conn:         connID,
		Room:         roomID,
		Format:       format,
		Followers:    tuning.Followers,
		Gap:          tuning.Chain.Gap,
		Interval:     tuning.RecordInterval,
		SimHz:        SimHz,
		UpdateRateHz: UpdateRateHz,
	}
	if err := conn.WriteJSON(hello); err != nil {
		log.Warn("send hello failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg inputMsg
			switch msgType {
			case websocket.BinaryMessage:
				msg, err = decodeProtoInbound(data)
			case websocket.TextMessage:
				err = json.Unmarshal(data, &msg)
			default:
				continue
			}
			if err != nil {
				log.Debug("invalid inbound frame", zap.Error(err))
				continue
			}
			handleInbound(room, msg, log)
		}
	}()

	sendTick := time.NewTicker(time.Duration(float64(time.Second) / UpdateRateHz))
	go func() {
		defer cancel()
		var lastSeq uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-sendTick.C:
				snap := room.Snapshot(lastSeq)
				if n := len(snap.Events); n > 0 {
					lastSeq = snap.Events[n-1].Seq
				}
				if err := writeState(conn, format, stateFromSnapshot(snap)); err != nil {
					log.Debug("send error", zap.Error(err))
					return
				}
			}
		}
	}()

	<-ctx.Done()
	sendTick.Stop()
	conn.Close()
	room.DetachClient()
	connectionsGauge.Dec()
	log.Info("client disconnected")
}
