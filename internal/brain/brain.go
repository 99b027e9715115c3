// Package brain implements the fallback Brain Triggers path (spec
// §4.7, C8): importance classification, low-importance batching, a
// per-trigger-and-app response cache, prompt composition, model
// invocation, and response execution via the event bus.
package brain

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nugget/companion-hub/internal/admission"
	"github.com/nugget/companion-hub/internal/clock"
	"github.com/nugget/companion-hub/internal/events"
	"github.com/nugget/companion-hub/internal/llm"
)

// DefaultBatchWindow is the spec §4.7 default LOW-importance batch
// window, used when Brain.BatchWindow is left zero. Configurable via
// config.BrainConfig.BatchWindowMS.
const DefaultBatchWindow = 10 * time.Second

// maxRecentInteractions bounds the "last 3 interactions" excerpt (spec
// §4.7's prompt-composition detail).
const maxRecentInteractions = 3

// modelCallTimeout bounds each model call made by process.
const modelCallTimeout = 30 * time.Second

type cacheEntry struct {
	response Response
}

// Brain is the in-process fallback brain. Handle is its only entry
// point, called by the dispatcher when no channel peer is connected.
type Brain struct {
	LLM    llm.Client
	Clock  clock.Clock
	Bus    *events.Bus
	Logger *slog.Logger

	// BatchWindow is the LOW-importance batch collapse window (spec
	// §4.7). Zero means DefaultBatchWindow; New leaves it zero, and
	// cmd/hub sets it from config.BrainConfig.BatchWindowMS.
	BatchWindow time.Duration

	// AfterFunc schedules the batch-flush timer. Defaults to
	// time.AfterFunc; tests override it to avoid a real 10s wait.
	AfterFunc func(d time.Duration, f func()) *time.Timer

	mu         sync.Mutex
	batch      []admission.Admitted
	batchTimer *time.Timer
	cache      map[string]cacheEntry
	recent     []string
}

// New builds a Brain ready to handle triggers, using DefaultBatchWindow.
// Callers that need config.BrainConfig.BatchWindowMS honored should set
// the returned Brain's BatchWindow field before first use.
func New(client llm.Client, clk clock.Clock, bus *events.Bus, logger *slog.Logger) *Brain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Brain{
		LLM:       client,
		Clock:     clk,
		Bus:       bus,
		Logger:    logger,
		AfterFunc: time.AfterFunc,
		cache:     make(map[string]cacheEntry),
	}
}

// batchWindow returns BatchWindow if set, else DefaultBatchWindow.
func (b *Brain) batchWindow() time.Duration {
	if b.BatchWindow > 0 {
		return b.BatchWindow
	}
	return DefaultBatchWindow
}

// Handle routes an admitted trigger per its importance (spec §4.7):
// HIGH/MEDIUM process immediately, LOW is appended to the batch buffer.
func (b *Brain) Handle(ctx context.Context, t admission.Admitted) {
	importance := ImportanceOf(t.Name)
	t.Importance = string(importance)
	if importance == ImportanceLow {
		b.enqueueLow(ctx, t)
		return
	}
	b.process(ctx, t, importance)
}

// enqueueLow appends a LOW trigger to the batch buffer, arming the
// single-shot flush timer on the first insertion.
func (b *Brain) enqueueLow(ctx context.Context, t admission.Admitted) {
	b.mu.Lock()
	b.batch = append(b.batch, t)
	first := len(b.batch) == 1
	b.mu.Unlock()

	if first {
		b.batchTimer = b.AfterFunc(b.batchWindow(), func() { b.flushBatch(ctx) })
	}
}

// flushBatch selects one survivor from the batch (spec §4.7: prefer a
// visually-enriched entry, else the newest), clears the buffer, and
// processes the survivor as LOW.
func (b *Brain) flushBatch(ctx context.Context) {
	b.mu.Lock()
	batch := b.batch
	b.batch = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	survivor := batch[len(batch)-1]
	for _, t := range batch {
		if t.HasVisual {
			survivor = t
			break
		}
	}

	dropped := make([]string, 0, len(batch)-1)
	for _, t := range batch {
		if t.Name != survivor.Name || t.TS != survivor.TS {
			dropped = append(dropped, t.Name)
		}
	}
	b.Bus.Publish(events.Event{
		Timestamp: b.now(),
		Source:    events.SourceBrain,
		Kind:      events.KindBatchCollapsed,
		Data:      map[string]any{"trigger": survivor.Name, "dropped": dropped},
	})

	b.process(ctx, survivor, ImportanceLow)
}

func (b *Brain) now() time.Time {
	if b.Clock != nil {
		return b.Clock.Now()
	}
	return time.Now()
}

// process composes a prompt, checks/reads the cache for LOW triggers,
// calls the model, parses the response, writes the cache for everything
// but HIGH, and executes the response via the event bus.
func (b *Brain) process(ctx context.Context, t admission.Admitted, importance Importance) {
	cacheKey := t.Name + ":" + t.ActiveApp

	if importance == ImportanceLow {
		b.mu.Lock()
		entry, ok := b.cache[cacheKey]
		b.mu.Unlock()
		if ok {
			b.execute(t, entry.response)
			return
		}
	}

	b.mu.Lock()
	recent := append([]string(nil), b.recent...)
	b.mu.Unlock()

	prompt := buildPrompt(t, recent)
	model := llm.ModelHaiku
	maxTokens := 100
	if importance == ImportanceHigh {
		model = llm.ModelSonnet
		maxTokens = 150
	}

	userMsg := llm.Message{Role: "user", Content: prompt}
	if t.HasVisual {
		userMsg.ImageJPEGBase64 = t.ScreenJPEGBase64
	}
	callCtx, cancel := context.WithTimeout(ctx, modelCallTimeout)
	defer cancel()
	resp, err := b.LLM.Chat(callCtx, model, []llm.Message{userMsg}, maxTokens)
	if err != nil {
		b.Logger.Warn("brain model call failed", "trigger", t.Name, "importance", importance, "error", err)
		b.Bus.Publish(events.Event{
			Timestamp: b.now(), Source: events.SourceBrain, Kind: events.KindBrainResponse,
			Data: map[string]any{"trigger": t.Name, "ok": false},
		})
		return
	}

	parsed, ok := parseResponse(resp.Message.Content)
	if !ok {
		b.Logger.Debug("brain response unparsable, dropping", "trigger", t.Name)
		b.Bus.Publish(events.Event{
			Timestamp: b.now(), Source: events.SourceBrain, Kind: events.KindBrainResponse,
			Data: map[string]any{"trigger": t.Name, "ok": false},
		})
		return
	}

	if importance != ImportanceHigh {
		b.mu.Lock()
		b.cache[cacheKey] = cacheEntry{response: parsed}
		b.mu.Unlock()
	}

	b.execute(t, parsed)
}

// execute emits the derived speak/action/emote commands via the event
// bus (spec §4.7: "via the channel's local event bus") and records the
// interaction for the next prompt's "last 3 interactions" excerpt.
func (b *Brain) execute(t admission.Admitted, r Response) {
	b.Bus.Publish(events.Event{
		Timestamp: b.now(),
		Source:    events.SourceBrain,
		Kind:      events.KindBrainResponse,
		Data: map[string]any{
			"trigger": t.Name,
			"ok":      true,
			"speech":  r.Speech,
			"action":  r.Action,
			"emotion": r.Emotion,
		},
	})

	b.mu.Lock()
	b.recent = append(b.recent, t.Name+": "+r.Speech)
	if len(b.recent) > maxRecentInteractions {
		b.recent = b.recent[len(b.recent)-maxRecentInteractions:]
	}
	b.mu.Unlock()
}
