package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nugget/companion-hub/internal/admission"
	"github.com/nugget/companion-hub/internal/classifier"
	"github.com/nugget/companion-hub/internal/clock"
	"github.com/nugget/companion-hub/internal/events"
	"github.com/nugget/companion-hub/internal/llm"
)

type fakeLLM struct {
	mu        sync.Mutex
	calls     []fakeCall
	responses []string // consumed in order; falls back to a generic one when exhausted
}

type fakeCall struct {
	model     string
	maxTokens int
	prompt    string
}

func (f *fakeLLM) Chat(_ context.Context, model string, messages []llm.Message, maxTokens int) (*llm.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{model: model, maxTokens: maxTokens, prompt: messages[0].Content})

	content := `{"speech":"hi there","emotion":"happy"}`
	if len(f.responses) > 0 {
		content = f.responses[0]
		f.responses = f.responses[1:]
	}
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: content}}, nil
}

func (f *fakeLLM) Ping(context.Context) error { return nil }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestBrain(fl *fakeLLM) *Brain {
	b := New(fl, clock.NewFake(time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)), events.New(), nil)
	// Tests flush the batch directly instead of waiting on a real timer.
	b.AfterFunc = func(time.Duration, func()) *time.Timer { return nil }
	return b
}

func admittedFor(name, app, title string) admission.Admitted {
	return admission.Admitted{Trigger: classifier.Trigger{Name: name, ActiveApp: app, ActiveTitle: title, TS: time.Now()}}
}

func TestHighImportanceProcessesImmediatelyWithSonnet(t *testing.T) {
	fl := &fakeLLM{}
	b := newTestBrain(fl)

	b.Handle(context.Background(), admittedFor("error_loop", "Terminal", "panic: x"))

	if fl.callCount() != 1 {
		t.Fatalf("expected 1 immediate model call, got %d", fl.callCount())
	}
	if fl.calls[0].model != llm.ModelSonnet {
		t.Fatalf("expected sonnet for HIGH importance, got %s", fl.calls[0].model)
	}
	if fl.calls[0].maxTokens != 150 {
		t.Fatalf("expected maxTokens=150 for HIGH, got %d", fl.calls[0].maxTokens)
	}
}

func TestMediumImportanceUsesHaiku(t *testing.T) {
	fl := &fakeLLM{}
	b := newTestBrain(fl)

	b.Handle(context.Background(), admittedFor("shopping_detected", "Chrome", "Amazon.com"))

	if fl.callCount() != 1 {
		t.Fatalf("expected 1 immediate model call, got %d", fl.callCount())
	}
	if fl.calls[0].model != llm.ModelHaiku {
		t.Fatalf("expected haiku for MEDIUM importance, got %s", fl.calls[0].model)
	}
	if fl.calls[0].maxTokens != 100 {
		t.Fatalf("expected maxTokens=100 for MEDIUM, got %d", fl.calls[0].maxTokens)
	}
}

func TestLowImportanceBatchesUntilFlush(t *testing.T) {
	fl := &fakeLLM{}
	b := newTestBrain(fl)

	b.Handle(context.Background(), admittedFor("app_switch", "Chrome", "a"))
	b.Handle(context.Background(), admittedFor("app_switch", "VSCode", "b"))

	if fl.callCount() != 0 {
		t.Fatalf("expected no model call before batch flush, got %d", fl.callCount())
	}

	b.flushBatch(context.Background())

	if fl.callCount() != 1 {
		t.Fatalf("expected exactly 1 model call after flush collapses the batch, got %d", fl.callCount())
	}
}

func TestBatchPrefersVisualSurvivor(t *testing.T) {
	fl := &fakeLLM{}
	b := newTestBrain(fl)

	plain := admittedFor("app_switch", "Chrome", "plain")
	visual := admittedFor("app_switch", "VSCode", "visual")
	visual.HasVisual = true

	b.Handle(context.Background(), plain)
	b.Handle(context.Background(), visual)
	b.flushBatch(context.Background())

	if fl.callCount() != 1 {
		t.Fatalf("expected 1 model call, got %d", fl.callCount())
	}
	if want := fmt.Sprintf("%q", "visual"); !strings.Contains(fl.calls[0].prompt, want) {
		t.Fatalf("expected prompt to reference the visual survivor's title, got %q", fl.calls[0].prompt)
	}
}

func TestLowImportanceCacheHitSkipsModelCall(t *testing.T) {
	fl := &fakeLLM{}
	b := newTestBrain(fl)

	first := admittedFor("app_switch", "Chrome", "a")
	b.Handle(context.Background(), first)
	b.flushBatch(context.Background())
	if fl.callCount() != 1 {
		t.Fatalf("expected 1 model call on first occurrence, got %d", fl.callCount())
	}

	second := admittedFor("app_switch", "Chrome", "a")
	b.Handle(context.Background(), second)
	b.flushBatch(context.Background())
	if fl.callCount() != 1 {
		t.Fatalf("expected cache hit to avoid a second model call, got %d calls", fl.callCount())
	}
}

func TestHighImportanceNeverCached(t *testing.T) {
	fl := &fakeLLM{}
	b := newTestBrain(fl)

	b.Handle(context.Background(), admittedFor("late_night", "Chrome", "x"))
	b.Handle(context.Background(), admittedFor("late_night", "Chrome", "x"))

	if fl.callCount() != 2 {
		t.Fatalf("expected HIGH triggers to always re-evaluate, got %d calls", fl.callCount())
	}
}

func TestUnparsableResponseDropsWithoutCaching(t *testing.T) {
	fl := &fakeLLM{responses: []string{"not json at all", `{"speech":"ok"}`}}
	b := newTestBrain(fl)

	t1 := admittedFor("app_switch", "Chrome", "a")
	b.Handle(context.Background(), t1)
	b.flushBatch(context.Background())

	t2 := admittedFor("app_switch", "Chrome", "a")
	b.Handle(context.Background(), t2)
	b.flushBatch(context.Background())

	if fl.callCount() != 2 {
		t.Fatalf("expected the unparsable first response not to populate the cache, forcing a 2nd call, got %d", fl.callCount())
	}
}
