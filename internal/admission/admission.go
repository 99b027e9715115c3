// Package admission implements the Admission/Cooldown gate (spec §4.5,
// C7): the global min-interval, the per-trigger cooldown table, and the
// visual-enrichment decision that attaches a screen capture and cursor
// position to triggers in the closed Visual Triggers set.
package admission

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/nugget/companion-hub/internal/classifier"
	"github.com/nugget/companion-hub/internal/clock"
	"github.com/nugget/companion-hub/internal/events"
	"github.com/nugget/companion-hub/internal/probe"
)

// DefaultGlobalMinInterval is the spec §4.5 default global gate.
const DefaultGlobalMinInterval = 8 * time.Second

// Gate owns the cooldown map and history of fires — a single writer per
// spec §5 ("cooldown map ... owned by one task"). Callers must serialize
// calls to Admit (e.g. from one admission goroutine reading a channel of
// classified triggers).
type Gate struct {
	clock clock.Clock
	probe probe.Probe
	bus   *events.Bus
	log   *slog.Logger

	globalMinInterval time.Duration
	cooldowns         map[string]time.Duration

	mu            sync.Mutex
	lastAnyFireTs time.Time
	lastFire      map[string]time.Time
}

// New builds a Gate from the classifier's default cooldown table
// (milliseconds, per spec §4.5) and the global min-interval default.
// bus may be nil (Publish on a nil *events.Bus is a no-op).
func New(p probe.Probe, clk clock.Clock, bus *events.Bus, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	cooldowns := make(map[string]time.Duration, len(classifier.DefaultCooldowns))
	for name, ms := range classifier.DefaultCooldowns {
		cooldowns[name] = time.Duration(ms) * time.Millisecond
	}
	return &Gate{
		clock:             clk,
		probe:             p,
		bus:               bus,
		log:               logger,
		globalMinInterval: DefaultGlobalMinInterval,
		cooldowns:         cooldowns,
		lastFire:          make(map[string]time.Time),
	}
}

// Admitted is a Trigger that passed admission, optionally enriched with
// visual context (spec §4.5 step 4).
type Admitted struct {
	classifier.Trigger
	ScreenJPEGBase64 string
	CursorX, CursorY int
	HasVisual        bool
}

// Admit applies the spec §4.5 pipeline: global min-interval, per-trigger
// cooldown, record-keeping, then visual enrichment. Returns ok=false if
// the trigger was dropped.
func (g *Gate) Admit(ctx context.Context, t classifier.Trigger) (Admitted, bool) {
	now := g.clock.Now()

	g.mu.Lock()
	if !g.lastAnyFireTs.IsZero() && now.Sub(g.lastAnyFireTs) < g.globalMinInterval {
		g.mu.Unlock()
		g.log.Debug("dropped by global min-interval", "trigger", t.Name)
		g.publishDropped(t.Name, "global_min_interval")
		return Admitted{}, false
	}

	cooldown, ok := g.cooldowns[t.Name]
	if !ok {
		cooldown = g.globalMinInterval
	}
	if last, seen := g.lastFire[t.Name]; seen && now.Sub(last) < cooldown {
		g.mu.Unlock()
		g.log.Debug("dropped by per-trigger cooldown", "trigger", t.Name, "cooldown", cooldown)
		g.publishDropped(t.Name, "per_trigger_cooldown")
		return Admitted{}, false
	}

	g.lastAnyFireTs = now
	g.lastFire[t.Name] = now
	g.mu.Unlock()

	admitted := Admitted{Trigger: t}
	if classifier.VisualTriggers[t.Name] {
		g.enrich(ctx, &admitted)
	}

	g.log.Debug("admitted", "trigger", t.Name, "visual", admitted.HasVisual)
	return admitted, true
}

// publishDropped notifies the event bus a trigger was dropped by the
// admission gate, so subscribers (the telemetry bridge's "triggers
// dropped by cooldown" counter) see it without Admit's callers having to
// thread it through themselves.
func (g *Gate) publishDropped(name, reason string) {
	g.bus.Publish(events.Event{
		Timestamp: g.clock.Now(),
		Source:    events.SourceAdmission,
		Kind:      events.KindTriggerDropped,
		Data:      map[string]any{"trigger": name, "reason": reason},
	})
}

// enrich captures the screen and cursor position for a visual trigger.
// Failure is logged and absorbed — a visual trigger still dispatches
// without context rather than being dropped (spec never says visual
// enrichment failure should cause a drop).
func (g *Gate) enrich(ctx context.Context, a *Admitted) {
	shot, err := g.probe.CaptureScreen(ctx)
	if err != nil {
		g.log.Warn("screen capture failed", "trigger", a.Name, "error", err)
	} else {
		a.ScreenJPEGBase64 = base64.StdEncoding.EncodeToString(shot.JPEG)
		a.HasVisual = true
	}

	pos, err := g.probe.CursorPos(ctx)
	if err != nil {
		g.log.Warn("cursor position failed", "trigger", a.Name, "error", err)
		return
	}
	a.CursorX, a.CursorY = pos.X, pos.Y
}
