package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch := b.Subscribe(4)

	b.Publish(Event{Source: SourceClassifier, Kind: KindTriggerClassified})

	select {
	case e := <-ch:
		if e.Kind != KindTriggerClassified {
			t.Errorf("Kind = %q, want %q", e.Kind, KindTriggerClassified)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishNonBlockingWhenFull(t *testing.T) {
	b := New()
	ch := b.Subscribe(1)

	b.Publish(Event{Kind: "a"})
	done := make(chan struct{})
	go func() {
		b.Publish(Event{Kind: "b"}) // channel full; must not block
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}
	<-ch // drain
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch := b.Subscribe(1)
	b.Unsubscribe(ch)

	if n := b.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}

	// double unsubscribe is a no-op
	b.Unsubscribe(ch)
}

func TestPublishNilBusNoop(t *testing.T) {
	var b *Bus
	b.Publish(Event{Kind: "noop"}) // must not panic
	if n := b.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount on nil bus = %d, want 0", n)
	}
}
