package observer

import (
	"testing"
	"time"
)

var base = time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)

func TestClipboardStateDedup(t *testing.T) {
	var st clipboardState

	o, ok := st.evaluate(base, "hello", false)
	if !ok || o.Kind != KindClipboardText || o.Text != "hello" {
		t.Fatalf("first text not emitted: %+v ok=%v", o, ok)
	}

	if _, ok := st.evaluate(base.Add(time.Second), "hello", false); ok {
		t.Fatal("repeated identical text should be deduped")
	}

	o, ok = st.evaluate(base.Add(2*time.Second), "world", false)
	if !ok || o.Text != "world" {
		t.Fatalf("changed text not emitted: %+v ok=%v", o, ok)
	}
}

func TestClipboardImageTransition(t *testing.T) {
	var st clipboardState
	o, ok := st.evaluate(base, "", true)
	if !ok || o.Kind != KindClipboardImage {
		t.Fatalf("image not emitted: %+v ok=%v", o, ok)
	}
	if _, ok := st.evaluate(base, "", true); ok {
		t.Fatal("repeated image presence should be deduped")
	}
}

func TestWindowStateChangeAndStable(t *testing.T) {
	var st windowState

	o := st.evaluate(base, "Editor - VSCode")
	if o.Kind != KindActiveTitleChanged {
		t.Fatalf("first title should be active_title_changed, got %v", o.Kind)
	}

	o = st.evaluate(base.Add(30*time.Second), "Editor - VSCode")
	if o.Kind != KindTitleStable || o.Duration != 30*time.Second {
		t.Fatalf("unchanged title should be title_stable(30s), got %+v", o)
	}

	o = st.evaluate(base.Add(31*time.Second), "Browser - Chrome")
	if o.Kind != KindActiveTitleChanged {
		t.Fatalf("changed title should re-fire active_title_changed, got %v", o.Kind)
	}
}

func TestIdleHysteresis(t *testing.T) {
	var st idleState

	if _, ok := st.evaluate(base, 10*time.Second); ok {
		t.Fatal("should not fire below enter threshold")
	}

	o, ok := st.evaluate(base, 61*time.Second)
	if !ok || o.Kind != KindIdleEntered {
		t.Fatalf("expected idle_entered above 60s, got %+v ok=%v", o, ok)
	}

	if _, ok := st.evaluate(base, 30*time.Second); ok {
		t.Fatal("should not re-fire between the exit and enter thresholds")
	}

	o, ok = st.evaluate(base, 4*time.Second)
	if !ok || o.Kind != KindIdleExited {
		t.Fatalf("expected idle_exited below 5s, got %+v ok=%v", o, ok)
	}
}

func TestEvaluateTick(t *testing.T) {
	ts := time.Date(2026, 7, 31, 23, 15, 0, 0, time.UTC)
	o := evaluateTick(ts)
	if o.Kind != KindTick || o.Hour != 23 || o.Minute != 15 {
		t.Fatalf("unexpected tick: %+v", o)
	}
}
