// Package observer implements the Observer Set (spec §4.3, C5): four
// cooperative periodic tasks that read the Platform Probe and push
// normalised Observations to the Classifier. Observers never call the
// brain or the channel directly, and never touch PetState.
package observer

import (
	"context"
	"log/slog"
	"time"

	"github.com/nugget/companion-hub/internal/clock"
	"github.com/nugget/companion-hub/internal/probe"
)

// Kind is the closed set of observation kinds (spec §3).
type Kind string

const (
	KindClipboardText       Kind = "clipboard_text"
	KindClipboardImage      Kind = "clipboard_image"
	KindActiveTitleChanged  Kind = "active_title_changed"
	KindTitleStable         Kind = "title_stable"
	KindIdleEntered         Kind = "idle_entered"
	KindIdleExited          Kind = "idle_exited"
	KindTick                Kind = "tick"
)

// Observation is a transient event produced by an observer and consumed
// by the classifier (spec §3).
type Observation struct {
	Kind Kind
	TS   time.Time

	// Kind-specific fields. Only the fields relevant to Kind are set.
	Text     string        // clipboard_text
	Title    string        // active_title_changed, title_stable
	Duration time.Duration // title_stable, idle_entered, idle_exited
	Hour     int           // tick
	Minute   int           // tick
	Weekday  time.Weekday  // tick
}

// Cadences match spec §4.3's table of default periods.
const (
	ClipboardPeriod = 500 * time.Millisecond
	WindowPeriod    = 5 * time.Second
	IdlePeriod      = 10 * time.Second
	TickPeriod      = 60 * time.Second

	// IdleEnterThreshold and IdleExitThreshold are the spec's hysteresis
	// bounds: idle_entered fires once above 60s, idle_exited fires when
	// falling back below 5s.
	IdleEnterThreshold = 60 * time.Second
	IdleExitThreshold  = 5 * time.Second
)

// Set runs all four observers and fans their Observations into a single
// output channel, in each observer's own emission order (spec §5's
// single-observer ordering guarantee — no interleaving claim across
// observers).
type Set struct {
	Probe        probe.Probe
	Clock        clock.Clock
	ProbeTimeout time.Duration
	Logger       *slog.Logger
	Out          chan<- Observation
}

// Run starts all four observer loops and blocks until ctx is cancelled.
func (s *Set) Run(ctx context.Context) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	done := make(chan struct{}, 4)
	go func() { s.runClipboard(ctx, logger); done <- struct{}{} }()
	go func() { s.runWindow(ctx, logger); done <- struct{}{} }()
	go func() { s.runIdle(ctx, logger); done <- struct{}{} }()
	go func() { s.runTick(ctx, logger); done <- struct{}{} }()

	for i := 0; i < 4; i++ {
		<-done
	}
}

func (s *Set) timeoutCtx(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := s.ProbeTimeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}

func (s *Set) emit(o Observation) {
	select {
	case s.Out <- o:
	default:
		// Classifier is the single reader and should keep up; a full
		// channel here indicates backpressure worth surfacing, but
		// observers must never block on it.
	}
}
