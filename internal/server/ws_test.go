package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "crabtrain/internal/game"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(DefaultTuning(), zap.NewNop())
	srv := httptest.NewServer(newMux(hub, zap.NewNop()))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readHello(t *testing.T, conn *websocket.Conn) helloMsg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var hello helloMsg
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "hello", hello.Type)
	return hello
}

// readStateUntil reads JSON state frames until cond holds or the deadline passes.
func readStateUntil(t *testing.T, conn *websocket.Conn, cond func(stateMsg) bool) stateMsg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg stateMsg
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "state" && cond(msg) {
			return msg
		}
	}
}

// TestWSHelloAndState greets the client with the room tuning and streams state.
func TestWSHelloAndState(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv, "room=alpha")

	hello := readHello(t, conn)
	assert.Equal(t, "alpha", hello.Room)
	assert.Equal(t, formatJSON, hello.Format)
	assert.Equal(t, FollowerCount, hello.Followers)
	assert.NotEmpty(t, hello.Conn)

	state := readStateUntil(t, conn, func(stateMsg) bool { return true })
	assert.Equal(t, "alpha", state.Room)
	assert.Len(t, state.Followers, FollowerCount)
	assert.NotEmpty(t, state.Surfaces)
}

// TestWSDetachLaunchesTail detaches over the socket and reports the event once.
func TestWSDetachLaunchesTail(t *testing.T) {
	hub, srv := newTestServer(t)
	conn := dial(t, srv, "room=beta")
	readHello(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "detach"}))
	state := readStateUntil(t, conn, func(m stateMsg) bool { return len(m.Followers) == FollowerCount-1 })
	require.Len(t, state.Projectiles, 1)

	var detach *eventDTO
	for i := range state.Events {
		if state.Events[i].Type == string(EventDetach) {
			detach = &state.Events[i]
		}
	}
	require.NotNil(t, detach)
	assert.Equal(t, state.Projectiles[0].ID, detach.Entity)

	next := readStateUntil(t, conn, func(stateMsg) bool { return true })
	assert.Empty(t, next.Events)

	room := hub.GetRoom("beta")
	room.Mu.Lock()
	assert.Equal(t, FollowerCount-1, room.LeaderLocked().FollowerCount())
	room.Mu.Unlock()
}

// TestWSInputIsCached stores the control state for the next tick.
func TestWSInputIsCached(t *testing.T) {
	hub, srv := newTestServer(t)
	conn := dial(t, srv, "room=gamma")
	readHello(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "input", "throttle": 1}))
	room := hub.GetRoom("gamma")
	require.Eventually(t, func() bool {
		room.Tick()
		room.Mu.Lock()
		defer room.Mu.Unlock()
		return room.LeaderLocked().PlanarVelocity().Len() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

// TestWSQueryOverridesRetuneRoom applies tuning overrides from the query string.
func TestWSQueryOverridesRetuneRoom(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv, "room=delta&followers=2&gap=0.5")
	hello := readHello(t, conn)
	assert.Equal(t, 2, hello.Followers)
	assert.Equal(t, 0.5, hello.Gap)

	state := readStateUntil(t, conn, func(stateMsg) bool { return true })
	require.Len(t, state.Followers, 2)
	assert.InDelta(t, 1.0, state.Followers[1].Delay, 1e-12)
}

// TestWSProtoFrames exchanges structpb frames in binary mode.
func TestWSProtoFrames(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv, "room=eps&format=proto")
	hello := readHello(t, conn)
	assert.Equal(t, formatProto, hello.Format)

	frame, err := structpb.NewStruct(map[string]any{"type": "detach"})
	require.NoError(t, err)
	data, err := proto.Marshal(frame)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		msgType, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.BinaryMessage, msgType)

		var st structpb.Struct
		require.NoError(t, proto.Unmarshal(raw, &st))
		assert.Equal(t, "state", st.Fields["type"].GetStringValue())
		if len(st.Fields["followers"].GetListValue().GetValues()) == FollowerCount-1 {
			assert.Len(t, st.Fields["projectiles"].GetListValue().GetValues(), 1)
			return
		}
	}
}

func TestWSResetRestoresTrain(t *testing.T) {
	hub, srv := newTestServer(t)
	room := hub.GetRoom("zeta")
	_, ok := room.Detach()
	require.True(t, ok)

	conn := dial(t, srv, "room=zeta")
	readHello(t, conn)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "reset"}))
	state := readStateUntil(t, conn, func(m stateMsg) bool { return len(m.Followers) == FollowerCount })
	assert.Empty(t, state.Projectiles)
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	metrics, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, 200, metrics.StatusCode)
}

func TestDecodeProtoInbound(t *testing.T) {
	frame, err := structpb.NewStruct(map[string]any{"type": "input", "throttle": 0.5, "steer": -1, "brake": true})
	require.NoError(t, err)
	data, err := proto.Marshal(frame)
	require.NoError(t, err)

	msg, err := decodeProtoInbound(data)
	require.NoError(t, err)
	assert.Equal(t, Input{Throttle: 0.5, Steer: -1, Brake: true}, msg.toInput())

	_, err = decodeProtoInbound([]byte{0xff, 0x01})
	assert.Error(t, err)
}

func TestStateToProtoKeepsFields(t *testing.T) {
	room := NewRoom("proto", DefaultTuning(), NewEmptyArena())
	msg := stateFromSnapshot(room.Snapshot(0))
	st, err := stateToProto(msg)
	require.NoError(t, err)

	raw, err := json.Marshal(st.AsMap())
	require.NoError(t, err)
	var back stateMsg
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, msg.Leader, back.Leader)
	assert.Len(t, back.Followers, FollowerCount)
}

// TestStateCarriesRecordedTrail sends the recorded path newest first.
func TestStateCarriesRecordedTrail(t *testing.T) {
	room := NewRoom("trail", DefaultTuning(), NewEmptyArena())
	room.SetInput(Input{Throttle: 1})
	for i := 0; i < 40; i++ {
		room.Tick()
	}
	snap := room.Snapshot(0)
	msg := stateFromSnapshot(snap)

	require.Len(t, msg.Trail, msg.HistoryLen)
	newest, err := snap.History.Sample(0)
	require.NoError(t, err)
	assert.Equal(t, vecDTO(newest), msg.Trail[0])
	assert.InDelta(t, 0.8, msg.HistoryClock, 1e-9)
	assert.LessOrEqual(t, msg.LastRecordAt, msg.HistoryClock)
	for i := 1; i < len(msg.Trail); i++ {
		assert.LessOrEqual(t, msg.Trail[i].Z, msg.Trail[i-1].Z)
	}
}

// TestWSHostileOverridesStayBounded connects with oversized tuning and still gets a bounded room.
func TestWSHostileOverridesStayBounded(t *testing.T) {
	hub, srv := newTestServer(t)
	conn := dial(t, srv, "room=hostile&gap=1e7&followers=1e9")
	hello := readHello(t, conn)
	assert.Equal(t, MaxFollowers, hello.Followers)
	assert.Equal(t, MaxFollowerGap, hello.Gap)

	room := hub.GetRoom("hostile")
	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.LessOrEqual(t, room.LeaderLocked().History().Cap(), MaxHistoryCapacity)
	assert.Equal(t, MaxFollowers, room.LeaderLocked().FollowerCount())
}
