package classifier

import (
	"strings"
	"time"

	"github.com/nugget/companion-hub/internal/observer"
)

// Classifier turns Observations into Triggers. It owns the history
// buffers (spec §3) and is the single writer/reader of them — callers
// must serialize calls to Classify (e.g. from one goroutine reading an
// observation channel), matching spec §5's "single writer task" policy.
type Classifier struct {
	h *history

	currentTitle    string
	currentCategory Category
	currentApp      string
}

// New creates a Classifier with empty history.
func New() *Classifier {
	return &Classifier{h: newHistory()}
}

// Classify processes one Observation and returns zero or more Triggers.
// Given the same history state and observation it always returns the
// same result (pure apart from the history-buffer state it owns).
func (c *Classifier) Classify(o observer.Observation) []Trigger {
	switch o.Kind {
	case observer.KindClipboardText:
		return c.classifyClipboardText(o)
	case observer.KindClipboardImage:
		return c.classifyClipboardImage(o)
	case observer.KindActiveTitleChanged:
		return c.classifyTitleChanged(o)
	case observer.KindTitleStable:
		return c.classifyTitleStable(o)
	case observer.KindIdleEntered:
		return nil // no emitting detector for idle_entered itself (spec §9)
	case observer.KindIdleExited:
		return []Trigger{c.newTrigger("idle_return", o.TS, nil)}
	case observer.KindTick:
		return c.classifyTick(o)
	default:
		return nil
	}
}

func (c *Classifier) newTrigger(name string, ts time.Time, ctx map[string]any) Trigger {
	return Trigger{
		Name:        name,
		Context:     ctx,
		TS:          ts,
		ActiveTitle: c.currentTitle,
		ActiveApp:   c.currentApp,
	}
}

func (c *Classifier) classifyClipboardText(o observer.Observation) []Trigger {
	name := classifyClipboardText(o.Text)
	c.h.clip.add(o.TS, name)

	triggers := []Trigger{c.newTrigger(name, o.TS, map[string]any{"text_len": len(o.Text)})}
	if detectRepeatedCopy(c.h, o.TS) {
		triggers = append(triggers, c.newTrigger("repeated_copy", o.TS, nil))
	}
	return triggers
}

func (c *Classifier) classifyClipboardImage(o observer.Observation) []Trigger {
	c.h.clip.add(o.TS, "generic_copy")
	triggers := []Trigger{c.newTrigger("generic_copy", o.TS, map[string]any{"content": "image"})}
	if detectRepeatedCopy(c.h, o.TS) {
		triggers = append(triggers, c.newTrigger("repeated_copy", o.TS, nil))
	}
	return triggers
}

func (c *Classifier) classifyTitleChanged(o observer.Observation) []Trigger {
	lower := strings.ToLower(o.Title)
	cat, catTrigger, hasCat := MatchCategory(lower)

	app := extractApp(o.Title)
	// c.currentApp == "" means this is the first title observation ever
	// seen — there is no prior app to have switched from, so it must not
	// count as an app_switch (spec §4.4).
	appChanged := c.currentApp != "" && app != c.currentApp
	if appChanged {
		c.h.appSwitch.add(o.TS, app)
		c.h.appChanged = o.TS
	}

	c.currentTitle = o.Title
	c.currentApp = app
	c.h.title.add(o.TS, o.Title)
	c.h.titleChanged = o.TS

	if hasCat {
		c.currentCategory = cat
		c.h.category.add(o.TS, string(cat))
	} else {
		c.currentCategory = ""
		c.h.category.add(o.TS, "")
	}

	var triggers []Trigger
	if appChanged {
		triggers = append(triggers, c.newTrigger("app_switch", o.TS, map[string]any{"app": app}))
	}
	if hasCat {
		triggers = append(triggers, c.newTrigger(catTrigger, o.TS, nil))
	}
	if IsErrorTitle(lower) {
		c.h.errors.add(o.TS, o.Title)
		triggers = append(triggers, c.newTrigger("error_detected", o.TS, nil))
		if detectErrorLoop(c.h, o.TS) {
			triggers = append(triggers, c.newTrigger("error_loop", o.TS, nil))
		}
	}

	triggers = append(triggers, c.compositeTriggers(o.TS)...)
	return triggers
}

func (c *Classifier) classifyTitleStable(o observer.Observation) []Trigger {
	var triggers []Trigger
	if detectLongFocus(c.h, o.TS) {
		triggers = append(triggers, c.newTrigger("long_focus", o.TS, map[string]any{"duration_s": o.Duration.Seconds()}))
	}
	if detectDeepFocus(c.h, o.TS, c.currentCategory) {
		triggers = append(triggers, c.newTrigger("deep_focus", o.TS, map[string]any{"duration_s": o.Duration.Seconds()}))
	}
	if detectSocialScrolling(c.h, o.TS, c.currentCategory) {
		triggers = append(triggers, c.newTrigger("social_scrolling", o.TS, map[string]any{"duration_s": o.Duration.Seconds()}))
	}
	return triggers
}

func (c *Classifier) compositeTriggers(now time.Time) []Trigger {
	var triggers []Trigger
	checks := []struct {
		name string
		fire bool
	}{
		{"wiki_rabbit_hole", detectWikiRabbitHole(c.h, now)},
		{"price_comparison", detectPriceComparison(c.h, now)},
		{"research_mode", detectResearchMode(c.h, now)},
		{"procrastination", detectProcrastination(c.h, now)},
		{"repeated_search", detectRepeatedSearch(c.h, now)},
		{"rapid_switching", detectRapidSwitching(c.h, now)},
	}
	for _, ch := range checks {
		if ch.fire {
			triggers = append(triggers, c.newTrigger(ch.name, now, nil))
		}
	}
	return triggers
}

func (c *Classifier) classifyTick(o observer.Observation) []Trigger {
	names := timeTriggers(o.Hour, o.Minute, o.Weekday, c.currentCategory)
	triggers := make([]Trigger, 0, len(names))
	for _, n := range names {
		triggers = append(triggers, c.newTrigger(n, o.TS, nil))
	}
	return triggers
}
