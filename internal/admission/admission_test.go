package admission

import (
	"context"
	"testing"
	"time"

	"github.com/nugget/companion-hub/internal/classifier"
	"github.com/nugget/companion-hub/internal/clock"
	"github.com/nugget/companion-hub/internal/probe"
)

var base = time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)

func newTestGate() (*Gate, *clock.Fake, *probe.Fake) {
	fc := clock.NewFake(base)
	fp := probe.NewFake()
	g := New(fp, fc, nil, nil)
	return g, fc, fp
}

func TestGlobalMinIntervalDrops(t *testing.T) {
	g, fc, _ := newTestGate()

	_, ok := g.Admit(context.Background(), classifier.Trigger{Name: "app_switch", TS: base})
	if !ok {
		t.Fatal("expected first trigger to be admitted")
	}

	fc.Advance(3 * time.Second)
	_, ok = g.Admit(context.Background(), classifier.Trigger{Name: "error_detected", TS: fc.Now()})
	if ok {
		t.Fatal("expected second trigger within 8s global interval to be dropped")
	}

	fc.Advance(6 * time.Second)
	_, ok = g.Admit(context.Background(), classifier.Trigger{Name: "error_detected", TS: fc.Now()})
	if !ok {
		t.Fatal("expected trigger after global interval elapses to be admitted")
	}
}

func TestPerTriggerCooldown(t *testing.T) {
	g, fc, _ := newTestGate()

	_, ok := g.Admit(context.Background(), classifier.Trigger{Name: "shopping_detected", TS: base})
	if !ok {
		t.Fatal("expected first shopping_detected to be admitted")
	}

	fc.Advance(9 * time.Second) // clears the global gate, not the 120s category cooldown
	_, ok = g.Admit(context.Background(), classifier.Trigger{Name: "shopping_detected", TS: fc.Now()})
	if ok {
		t.Fatal("expected second shopping_detected within its cooldown to be dropped")
	}

	fc.Advance(130 * time.Second)
	_, ok = g.Admit(context.Background(), classifier.Trigger{Name: "shopping_detected", TS: fc.Now()})
	if !ok {
		t.Fatal("expected shopping_detected to be admitted after its cooldown elapses")
	}
}

func TestVisualTriggerEnrichment(t *testing.T) {
	g, _, fp := newTestGate()
	fp.SetScreenshot(probe.Screenshot{JPEG: []byte("jpegdata"), Width: 960, Height: 540}, nil)
	fp.SetCursor(probe.CursorPos{X: 42, Y: 7})

	admitted, ok := g.Admit(context.Background(), classifier.Trigger{Name: "shopping_detected", TS: base})
	if !ok {
		t.Fatal("expected trigger to be admitted")
	}
	if !admitted.HasVisual {
		t.Fatal("expected shopping_detected to be visually enriched")
	}
	if admitted.CursorX != 42 || admitted.CursorY != 7 {
		t.Fatalf("expected cursor (42,7), got (%d,%d)", admitted.CursorX, admitted.CursorY)
	}
}

func TestNonVisualTriggerNotEnriched(t *testing.T) {
	g, _, _ := newTestGate()
	admitted, ok := g.Admit(context.Background(), classifier.Trigger{Name: "app_switch", TS: base})
	if !ok {
		t.Fatal("expected trigger to be admitted")
	}
	if admitted.HasVisual {
		t.Fatal("expected app_switch to not be visually enriched")
	}
}
