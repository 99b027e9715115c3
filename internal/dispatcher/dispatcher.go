// Package dispatcher implements the Dispatcher (spec §4.6, C9): routes
// an admitted trigger to the connected channel peer, or failing that to
// the in-process fallback brain, or failing that drops it — and always
// emits a parallel proactive-event to the front-end's local bus.
package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/nugget/companion-hub/internal/admission"
	"github.com/nugget/companion-hub/internal/events"
)

// PeerChannel is the subset of the channel (C3) the dispatcher depends
// on: whether a peer is attached, and how to hand it a trigger.
type PeerChannel interface {
	Connected() bool
	SendTrigger(ctx context.Context, t admission.Admitted) error
}

// Brain is the subset of the fallback brain (C8) the dispatcher depends
// on.
type Brain interface {
	Handle(ctx context.Context, t admission.Admitted)
}

// Dispatcher routes admitted triggers (spec §4.6).
type Dispatcher struct {
	Channel     PeerChannel
	Brain       Brain
	BrainActive bool
	Bus         *events.Bus
	Logger      *slog.Logger
}

// Dispatch routes one admitted trigger and always publishes a
// proactive-event notification for the rendering front-end, whether or
// not a peer is connected.
func (d *Dispatcher) Dispatch(ctx context.Context, t admission.Admitted) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := time.Now()
	route := "dropped"
	defer func() {
		d.Bus.Publish(events.Event{
			Timestamp: now,
			Source:    events.SourceDispatcher,
			Kind:      events.KindTriggerFired,
			Data:      map[string]any{"trigger": t.Name, "route": route},
		})
	}()

	switch {
	case d.Channel != nil && d.Channel.Connected():
		route = "channel"
		if err := d.Channel.SendTrigger(ctx, t); err != nil {
			logger.Warn("failed to send trigger to peer", "trigger", t.Name, "error", err)
		}
	case d.BrainActive && d.Brain != nil:
		route = "brain"
		d.Brain.Handle(ctx, t)
	default:
		logger.Debug("dropped trigger: no peer and no active brain", "trigger", t.Name)
	}
}
