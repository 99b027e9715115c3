package petstate

import "testing"

func TestNewDefaults(t *testing.T) {
	s := New(State{})
	got := s.Get()
	if got.Mode != ModePet {
		t.Errorf("Mode = %q, want %q", got.Mode, ModePet)
	}
	if got.Position.Edge != EdgeBottom {
		t.Errorf("Position.Edge = %q, want %q", got.Position.Edge, EdgeBottom)
	}
}

func TestApplyMergesFields(t *testing.T) {
	s := New(State{})
	action := "jumping"
	if _, err := s.Apply(Patch{Action: &action}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got := s.Get()
	if got.Action != "jumping" {
		t.Errorf("Action = %q, want jumping", got.Action)
	}
	// Untouched fields keep their prior value.
	if got.Mode != ModePet {
		t.Errorf("Mode = %q, want %q", got.Mode, ModePet)
	}
}

func TestApplyRejectsInvalidMode(t *testing.T) {
	s := New(State{})
	bad := Mode("sleepwalking")
	if _, err := s.Apply(Patch{Mode: &bad}); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	// State must be unchanged.
	if got := s.Get(); got.Mode != ModePet {
		t.Errorf("Mode = %q after rejected patch, want unchanged %q", got.Mode, ModePet)
	}
}

func TestApplyRejectsNegativeEvolutionStage(t *testing.T) {
	s := New(State{})
	neg := -1
	if _, err := s.Apply(Patch{EvolutionStage: &neg}); err == nil {
		t.Fatal("expected error for negative evolution stage")
	}
}

func TestApplyNotifiesSubscribers(t *testing.T) {
	s := New(State{})
	var got State
	calls := 0
	s.Subscribe(func(st State) {
		got = st
		calls++
	})

	action := "sleeping"
	if _, err := s.Apply(Patch{Action: &action}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if calls != 1 {
		t.Fatalf("subscriber called %d times, want 1", calls)
	}
	if got.Action != "sleeping" {
		t.Errorf("notified Action = %q, want sleeping", got.Action)
	}
}

func TestMemoryMergeDoesNotReplaceWholesale(t *testing.T) {
	s := New(State{})
	if _, err := s.Apply(Patch{Memory: map[string]any{"a": 1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Apply(Patch{Memory: map[string]any{"b": 2}}); err != nil {
		t.Fatal(err)
	}

	got := s.Get()
	if got.Memory["a"] != 1 || got.Memory["b"] != 2 {
		t.Errorf("Memory = %+v, want both a and b present", got.Memory)
	}
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	s := New(State{})
	s.Apply(Patch{Memory: map[string]any{"a": 1}})

	got := s.Get()
	got.Memory["a"] = 999

	fresh := s.Get()
	if fresh.Memory["a"] != 1 {
		t.Errorf("mutating a Get() snapshot affected the store's internal state")
	}
}
