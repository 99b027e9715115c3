package channel

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nugget/companion-hub/internal/events"
	"github.com/nugget/companion-hub/internal/petstate"
	"github.com/nugget/companion-hub/internal/probe"
)

func newTestPeer() *peerConn {
	return &peerConn{
		id:            "test-peer",
		send:          make(chan Message, 8),
		heartbeatStop: make(chan struct{}),
	}
}

func TestQueryStateRepliesWithCurrentState(t *testing.T) {
	store := petstate.New(petstate.State{Mode: petstate.ModePet, EvolutionStage: 3})
	ch := &Channel{Store: store, Bus: events.New(), Logger: slog.Default()}
	p := newTestPeer()

	ch.handleInbound(p, Message{Type: CmdQueryState, Payload: json.RawMessage(`{}`)})

	select {
	case msg := <-p.send:
		if msg.Type != EvtStateResponse {
			t.Fatalf("Type = %q, want state_response", msg.Type)
		}
		var got petstate.State
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("unmarshal state_response payload: %v", err)
		}
		if got.EvolutionStage != 3 || got.Mode != petstate.ModePet {
			t.Errorf("got %+v, want Mode=pet EvolutionStage=3", got)
		}
	default:
		t.Fatal("expected a queued state_response")
	}
}

func TestUnknownCommandNoMutationNoOutbound(t *testing.T) {
	store := petstate.New(petstate.State{Mode: petstate.ModePet, Action: "idle"})
	ch := &Channel{Store: store, Bus: events.New(), Logger: slog.Default()}
	p := newTestPeer()

	before := store.Get()
	ch.handleInbound(p, Message{Type: "totally_unknown_type", Payload: json.RawMessage(`{"x":1}`)})
	after := store.Get()

	if after.Mode != before.Mode || after.Action != before.Action || after.Emotion != before.Emotion {
		t.Fatalf("state mutated by unknown command: before=%+v after=%+v", before, after)
	}
	select {
	case msg := <-p.send:
		t.Fatalf("expected no outbound message, got %+v", msg)
	default:
	}
}

func TestSetModeMutatesState(t *testing.T) {
	store := petstate.New(petstate.State{Mode: petstate.ModePet})
	ch := &Channel{Store: store, Bus: events.New(), Logger: slog.Default()}
	p := newTestPeer()

	payload, _ := json.Marshal(setModePayload{Mode: "incarnation"})
	ch.handleInbound(p, Message{Type: CmdSetMode, Payload: payload})

	if got := store.Get().Mode; got != petstate.ModeIncarnation {
		t.Errorf("Mode = %q, want incarnation", got)
	}
}

func TestEmoteMapsToAction(t *testing.T) {
	store := petstate.New(petstate.State{})
	ch := &Channel{Store: store, Bus: events.New(), Logger: slog.Default()}
	p := newTestPeer()

	payload, _ := json.Marshal(emotePayload{Emotion: "curious"})
	ch.handleInbound(p, Message{Type: CmdEmote, Payload: payload})

	state := store.Get()
	if state.Action != "walking" {
		t.Errorf("Action = %q, want walking", state.Action)
	}
	if state.Emotion != "curious" {
		t.Errorf("Emotion = %q, want curious", state.Emotion)
	}
}

func TestUnrecognisedEmotionIgnored(t *testing.T) {
	store := petstate.New(petstate.State{Action: "idle"})
	ch := &Channel{Store: store, Bus: events.New(), Logger: slog.Default()}
	p := newTestPeer()

	payload, _ := json.Marshal(emotePayload{Emotion: "bewildered"})
	ch.handleInbound(p, Message{Type: CmdEmote, Payload: payload})

	if got := store.Get().Action; got != "idle" {
		t.Errorf("Action = %q, want unchanged idle", got)
	}
}

func TestMalformedPayloadDoesNotMutateState(t *testing.T) {
	store := petstate.New(petstate.State{Mode: petstate.ModePet})
	ch := &Channel{Store: store, Bus: events.New(), Logger: slog.Default()}
	p := newTestPeer()

	ch.handleInbound(p, Message{Type: CmdSetMode, Payload: json.RawMessage(`not json`)})

	if got := store.Get().Mode; got != petstate.ModePet {
		t.Errorf("Mode = %q, want unchanged pet", got)
	}
}

// Integration: sync fires before any other outbound event on attach
// (spec §8 invariant 4), and query_state answers synchronously with the
// current PetState (spec §8 invariant 3, scenario 3).
func TestSyncOnAttachThenQueryState(t *testing.T) {
	store := petstate.New(petstate.State{Mode: petstate.ModePet, EvolutionStage: 2})
	ch := New(store, probe.NewFake(), events.New(), slog.Default())

	srv := httptest.NewServer(http.HandlerFunc(ch.handleUpgrade))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first event: %v", err)
	}
	if first.Type != EvtSync {
		t.Fatalf("first event type = %q, want sync", first.Type)
	}

	if err := conn.WriteJSON(Message{Type: CmdQueryState, Payload: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("write query_state: %v", err)
	}

	var reply Message
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Type != EvtStateResponse {
		t.Fatalf("reply type = %q, want state_response", reply.Type)
	}
	var state petstate.State
	if err := json.Unmarshal(reply.Payload, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if state.EvolutionStage != 2 {
		t.Errorf("EvolutionStage = %d, want 2", state.EvolutionStage)
	}
}

func TestConnectedReflectsPeerLifecycle(t *testing.T) {
	store := petstate.New(petstate.State{})
	ch := New(store, probe.NewFake(), events.New(), slog.Default())

	if ch.Connected() {
		t.Fatal("Connected() = true before any peer attached")
	}

	srv := httptest.NewServer(http.HandlerFunc(ch.handleUpgrade))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	var syncMsg Message
	if err := conn.ReadJSON(&syncMsg); err != nil {
		t.Fatalf("read sync: %v", err)
	}
	if !ch.Connected() {
		t.Fatal("Connected() = false after peer attached")
	}

	conn.Close()
	waitUntil(t, func() bool { return !ch.Connected() })
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
