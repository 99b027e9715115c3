package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/nugget/companion-hub/internal/admission"
	"github.com/nugget/companion-hub/internal/classifier"
	"github.com/nugget/companion-hub/internal/events"
)

type fakeChannel struct {
	connected bool
	sent      []admission.Admitted
	sendErr   error
}

func (f *fakeChannel) Connected() bool { return f.connected }
func (f *fakeChannel) SendTrigger(_ context.Context, t admission.Admitted) error {
	f.sent = append(f.sent, t)
	return f.sendErr
}

type fakeBrain struct {
	handled []admission.Admitted
}

func (f *fakeBrain) Handle(_ context.Context, t admission.Admitted) {
	f.handled = append(f.handled, t)
}

func newAdmitted(name string) admission.Admitted {
	return admission.Admitted{Trigger: classifier.Trigger{Name: name, TS: time.Now()}}
}

func TestDispatchToChannelWhenConnected(t *testing.T) {
	ch := &fakeChannel{connected: true}
	br := &fakeBrain{}
	d := &Dispatcher{Channel: ch, Brain: br, BrainActive: true, Bus: events.New()}

	d.Dispatch(context.Background(), newAdmitted("app_switch"))

	if len(ch.sent) != 1 {
		t.Fatalf("expected 1 trigger sent to channel, got %d", len(ch.sent))
	}
	if len(br.handled) != 0 {
		t.Fatalf("expected brain not to be invoked when peer connected, got %d", len(br.handled))
	}
}

func TestDispatchToBrainWhenNoPeer(t *testing.T) {
	ch := &fakeChannel{connected: false}
	br := &fakeBrain{}
	d := &Dispatcher{Channel: ch, Brain: br, BrainActive: true, Bus: events.New()}

	d.Dispatch(context.Background(), newAdmitted("coding_detected"))

	if len(ch.sent) != 0 {
		t.Fatalf("expected no triggers sent to channel, got %d", len(ch.sent))
	}
	if len(br.handled) != 1 {
		t.Fatalf("expected 1 trigger handled by brain, got %d", len(br.handled))
	}
}

func TestDispatchDropsWhenNoPeerAndNoBrain(t *testing.T) {
	ch := &fakeChannel{connected: false}
	d := &Dispatcher{Channel: ch, Brain: nil, BrainActive: false, Bus: events.New()}

	sub := d.Bus.Subscribe(4)
	d.Dispatch(context.Background(), newAdmitted("app_switch"))

	select {
	case e := <-sub:
		if e.Data["route"] != "dropped" {
			t.Fatalf("expected route=dropped event, got %+v", e)
		}
	default:
		t.Fatal("expected a trigger_fired event even when dropped")
	}
}

func TestDispatchAlwaysPublishesEvent(t *testing.T) {
	ch := &fakeChannel{connected: true}
	d := &Dispatcher{Channel: ch, Bus: events.New()}

	sub := d.Bus.Subscribe(4)
	d.Dispatch(context.Background(), newAdmitted("shopping_detected"))

	select {
	case e := <-sub:
		if e.Kind != events.KindTriggerFired {
			t.Fatalf("expected KindTriggerFired, got %s", e.Kind)
		}
	default:
		t.Fatal("expected an event to be published")
	}
}
