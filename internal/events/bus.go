// Package events provides a publish/subscribe event bus for operational
// observability. Events flow from hub components (observers, classifier,
// admission, brain) to subscribers (the channel's local front-end bus,
// a future metrics collector). The bus is nil-safe: calling Publish on a
// nil *Bus is a no-op, so components do not need guard checks.
package events

import (
	"sync"
	"time"
)

// Source constants identify which component published an event.
const (
	// SourceObserver identifies events from the observer set (C5).
	SourceObserver = "observer"
	// SourceClassifier identifies events from the trigger classifier (C6).
	SourceClassifier = "classifier"
	// SourceAdmission identifies events from the admission/cooldown layer (C7).
	SourceAdmission = "admission"
	// SourceDispatcher identifies events from the dispatcher (C9).
	SourceDispatcher = "dispatcher"
	// SourceBrain identifies events from the fallback brain (C8).
	SourceBrain = "brain"
	// SourceChannel identifies events from the WebSocket channel (C3).
	SourceChannel = "channel"
	// SourceParser identifies events from the command parser (C2).
	SourceParser = "parser"
)

// Kind constants describe the type of event within a source.
const (
	// KindObservation signals a raw observation was produced by an observer.
	// Data: kind, ts.
	KindObservation = "observation"
	// KindTriggerClassified signals the classifier emitted a trigger.
	// Data: trigger, importance.
	KindTriggerClassified = "trigger_classified"
	// KindTriggerDropped signals admission dropped a trigger (global or
	// per-trigger cooldown). Data: trigger, reason.
	KindTriggerDropped = "trigger_dropped"
	// KindTriggerEnriched signals a visual trigger was enriched with a
	// screen capture and cursor position. Data: trigger.
	KindTriggerEnriched = "trigger_enriched"
	// KindTriggerFired signals a trigger passed admission and was routed.
	// Data: trigger, route ("channel"|"brain"|"dropped").
	KindTriggerFired = "trigger_fired"
	// KindPeerConnected signals a peer attached to the channel.
	KindPeerConnected = "peer_connected"
	// KindPeerDisconnected signals the peer detached from the channel.
	KindPeerDisconnected = "peer_disconnected"
	// KindBatchCollapsed signals the low-importance batch window expired
	// and collapsed to a single survivor trigger. Data: trigger, dropped.
	KindBatchCollapsed = "batch_collapsed"
	// KindBrainResponse signals the fallback brain produced (or failed to
	// produce) a response for a trigger. Data: trigger, ok.
	KindBrainResponse = "brain_response"
	// KindParsed signals the command parser classified free text input.
	// Data: type.
	KindParsed = "parsed"
)

// Event represents a single operational event published by a component.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"ts"`
	// Source identifies the component that published the event.
	Source string `json:"source"`
	// Kind describes the type of event within the source.
	Kind string `json:"kind"`
	// Data holds event-specific key/value pairs.
	Data map[string]any `json:"data,omitempty"`
}

// Bus is a non-blocking broadcast event bus. Subscribers receive events
// on buffered channels; slow subscribers miss events rather than
// blocking publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	// recvToSend maps the receive-only channel returned by Subscribe back
	// to the bidirectional channel stored in subs, so Unsubscribe can
	// accept the caller's <-chan Event view.
	recvToSend map[<-chan Event]chan Event
}

// New creates a new event bus ready for use.
func New() *Bus {
	return &Bus{
		subs:       make(map[chan Event]struct{}),
		recvToSend: make(map[<-chan Event]chan Event),
	}
}

// Publish sends an event to all subscribers. Non-blocking: if a
// subscriber's channel is full, the event is dropped for that
// subscriber. Safe to call on a nil receiver (no-op).
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is full — drop the event rather than block.
		}
	}
}

// Subscribe returns a channel that receives published events. The
// caller must eventually call Unsubscribe to avoid resource leaks.
// bufSize controls the channel buffer; 64 is a reasonable default.
func (b *Bus) Subscribe(bufSize int) <-chan Event {
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	b.recvToSend[ch] = ch
	return ch
}

// Unsubscribe removes a subscription and closes the channel. Safe to
// call with a channel that is already unsubscribed (no-op).
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sendCh, ok := b.recvToSend[ch]
	if !ok {
		return
	}
	delete(b.subs, sendCh)
	delete(b.recvToSend, ch)
	close(sendCh)
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
