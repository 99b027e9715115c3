package channel

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// peerConn is the single connected peer. send is the outbound queue the
// writer goroutine drains in order, which is how sendSync's enqueue
// before any heartbeat or command reply keeps the sync-first ordering
// (spec §8 invariant 4).
type peerConn struct {
	id   string
	conn *websocket.Conn
	send chan Message

	heartbeatStop chan struct{}
	closeOnce     sync.Once
}

func newPeerConn(conn *websocket.Conn, id string) *peerConn {
	return &peerConn{
		id:            id,
		conn:          conn,
		send:          make(chan Message, 32),
		heartbeatStop: make(chan struct{}),
	}
}

// startHeartbeat emits a heartbeat event every interval until the peer
// closes (spec §4.1: "every 30s emit heartbeat while connected").
func (p *peerConn) startHeartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			msg := Message{
				Type:      EvtHeartbeat,
				Payload:   mustMarshal(map[string]any{"timestamp": unixNow()}),
				Timestamp: unixNow(),
			}
			select {
			case p.send <- msg:
			default:
				// send queue full; a heartbeat tick is not worth blocking for.
			}
		case <-p.heartbeatStop:
			return
		}
	}
}

// close stops the heartbeat, closes the send queue, and closes the
// underlying connection. Safe to call more than once.
func (p *peerConn) close() {
	p.closeOnce.Do(func() {
		close(p.heartbeatStop)
		close(p.send)
		if p.conn != nil {
			p.conn.Close()
		}
	})
}
