package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nugget/companion-hub/internal/admission"
	"github.com/nugget/companion-hub/internal/events"
	"github.com/nugget/companion-hub/internal/petstate"
	"github.com/nugget/companion-hub/internal/probe"
)

// heartbeatInterval is the spec §4.1 cadence.
const heartbeatInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	// Origin is irrelevant here: the loopback check in handleUpgrade is
	// the actual access control (spec §4.1, "rejects non-loopback
	// connections").
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Channel owns the single WebSocket peer and everything that flows
// across it: PetState mirroring, inbound command dispatch, and
// heartbeats. It implements dispatcher.PeerChannel.
type Channel struct {
	Store  *petstate.Store
	Probe  probe.Probe
	Bus    *events.Bus
	Logger *slog.Logger

	mu   sync.Mutex
	peer *peerConn
	srv  *http.Server
}

// New builds a Channel wired to store (for state mirroring and command
// mutation) and probe (for query_screen / query_windows). The channel
// subscribes to store so every Apply mirrors as a pet_state_update.
func New(store *petstate.Store, p probe.Probe, bus *events.Bus, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Channel{Store: store, Probe: p, Bus: bus, Logger: logger}
	store.Subscribe(c.onStateChange)
	return c
}

func (c *Channel) onStateChange(s petstate.State) {
	c.mu.Lock()
	p := c.peer
	c.mu.Unlock()
	if p == nil {
		return
	}
	if err := c.enqueue(p, EvtPetStateUpdate, s); err != nil {
		c.Logger.Debug("failed to mirror state update", "error", err)
	}
}

// Start binds addr:port and begins accepting connections. addr must be
// a loopback address (spec §4.1, §6).
func (c *Channel) Start(addr string, port int) error {
	if !isLoopback(addr) {
		return fmt.Errorf("channel: refusing to bind non-loopback address %q", addr)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", c.handleUpgrade)

	hostport := net.JoinHostPort(addr, strconv.Itoa(port))
	ln, err := net.Listen("tcp", hostport)
	if err != nil {
		return fmt.Errorf("channel: listen %s: %w", hostport, err)
	}

	c.srv = &http.Server{Addr: hostport, Handler: mux}
	go func() {
		if err := c.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			c.Logger.Error("channel server stopped", "error", err)
		}
	}()

	c.Logger.Info("channel listening", "addr", hostport)
	return nil
}

// Stop gracefully shuts down the HTTP server and closes any connected peer.
func (c *Channel) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.peer != nil {
		c.peer.close()
		c.peer = nil
	}
	srv := c.srv
	c.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Connected reports whether a peer is currently attached.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer != nil
}

// SendTrigger implements dispatcher.PeerChannel: it enqueues a
// proactive_trigger event for the connected peer.
func (c *Channel) SendTrigger(ctx context.Context, t admission.Admitted) error {
	c.mu.Lock()
	p := c.peer
	c.mu.Unlock()
	if p == nil {
		return fmt.Errorf("channel: no connected peer")
	}

	payload := proactiveTriggerPayload{
		Trigger:     t.Name,
		Context:     triggerContext(t),
		Timestamp:   unixNow(),
		ActiveTitle: t.ActiveTitle,
		ActiveApp:   t.ActiveApp,
	}
	return c.enqueue(p, EvtProactiveTrigger, payload)
}

// Broadcast enqueues an arbitrary outbound message for the connected
// peer. A no-op (not an error) when no peer is attached, since both
// user_event and metrics_report are best-effort notifications rather
// than replies to an inbound command.
func (c *Channel) Broadcast(typ string, payload any) error {
	c.mu.Lock()
	p := c.peer
	c.mu.Unlock()
	if p == nil {
		return nil
	}
	return c.enqueue(p, typ, payload)
}

// BroadcastUserEvent sends a user_event notification (spec §6) for
// hub-synthesized front-end events such as desktop_changed, time_change,
// user_idle, and browsing.
func (c *Channel) BroadcastUserEvent(event string, fields map[string]any) error {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["event"] = event
	return c.Broadcast(EvtUserEvent, payload)
}

// BroadcastMetrics sends a metrics_report notification (spec §6)
// carrying the current telemetry snapshot fields.
func (c *Channel) BroadcastMetrics(fields map[string]any) error {
	return c.Broadcast(EvtMetricsReport, fields)
}

func triggerContext(t admission.Admitted) map[string]any {
	ctx := make(map[string]any, len(t.Trigger.Context)+2)
	for k, v := range t.Trigger.Context {
		ctx[k] = v
	}
	if t.HasVisual {
		ctx["screen"] = map[string]any{
			"image":  t.ScreenJPEGBase64,
			"width":  960,
			"height": 540,
		}
		ctx["cursor"] = map[string]any{"x": t.CursorX, "y": t.CursorY}
	}
	return ctx
}

// handleUpgrade accepts a new WebSocket connection, rejecting anything
// not originating from loopback, then replaces any existing peer (spec
// §4.1's single-peer semantic; this repo resolves the "replace or
// refuse" open question as replace).
func (c *Channel) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		c.Logger.Warn("rejected non-loopback channel connection", "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.Logger.Error("websocket upgrade failed", "error", err)
		return
	}

	p := newPeerConn(conn, uuid.NewString())

	c.mu.Lock()
	if c.peer != nil {
		c.Logger.Info("replacing existing channel peer", "old", c.peer.id, "new", p.id)
		c.peer.close()
	}
	c.peer = p
	c.mu.Unlock()

	c.Bus.Publish(events.Event{
		Timestamp: time.Now(),
		Source:    events.SourceChannel,
		Kind:      events.KindPeerConnected,
		Data:      map[string]any{"peer": p.id},
	})

	go c.writePump(p)
	c.sendSync(p)
	go p.startHeartbeat(heartbeatInterval)
	c.readPump(p)
}

func (c *Channel) writePump(p *peerConn) {
	for msg := range p.send {
		data, err := json.Marshal(msg)
		if err != nil {
			c.Logger.Error("failed to marshal outbound channel message", "type", msg.Type, "error", err)
			continue
		}
		if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.Logger.Warn("channel send failed, disconnecting peer", "peer", p.id, "error", err)
			c.disconnectPeer(p)
			return
		}
	}
}

func (c *Channel) readPump(p *peerConn) {
	defer c.disconnectPeer(p)
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed JSON: log and drop, never disconnect (spec §4.1).
			c.Logger.Warn("dropping malformed channel message", "error", err)
			continue
		}
		c.handleInbound(p, msg)
	}
}

// disconnectPeer tears down p if it is still the active peer. Called
// from both the read and write pumps; only the first caller (for a
// given peer) does anything, since a later replacement may already
// have cleared c.peer.
func (c *Channel) disconnectPeer(p *peerConn) {
	c.mu.Lock()
	if c.peer != p {
		c.mu.Unlock()
		return
	}
	c.peer = nil
	c.mu.Unlock()

	p.close()
	c.Bus.Publish(events.Event{
		Timestamp: time.Now(),
		Source:    events.SourceChannel,
		Kind:      events.KindPeerDisconnected,
		Data:      map[string]any{"peer": p.id},
	})
}

func (c *Channel) enqueue(p *peerConn, typ string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("channel: marshal %s payload: %w", typ, err)
	}
	msg := Message{Type: typ, Payload: raw, Timestamp: unixNow()}
	select {
	case p.send <- msg:
		return nil
	default:
		return fmt.Errorf("channel: send queue full for peer %s", p.id)
	}
}

func (c *Channel) sendSync(p *peerConn) {
	if err := c.enqueue(p, EvtSync, c.Store.Get()); err != nil {
		c.Logger.Warn("failed to enqueue sync event", "error", err)
	}
}

func isLoopback(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}
