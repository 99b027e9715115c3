package observer

import (
	"context"
	"log/slog"
	"time"
)

// idleState implements the spec's hysteresis: idle_entered fires once
// when crossing above IdleEnterThreshold, idle_exited fires once when
// falling back below IdleExitThreshold. Between those bounds no event
// fires, avoiding chatter right at the threshold.
type idleState struct {
	idle bool
}

func (st *idleState) evaluate(now time.Time, idleFor time.Duration) (Observation, bool) {
	switch {
	case !st.idle && idleFor > IdleEnterThreshold:
		st.idle = true
		return Observation{Kind: KindIdleEntered, TS: now, Duration: idleFor}, true
	case st.idle && idleFor < IdleExitThreshold:
		st.idle = false
		return Observation{Kind: KindIdleExited, TS: now, Duration: idleFor}, true
	}
	return Observation{}, false
}

func (s *Set) runIdle(ctx context.Context, logger *slog.Logger) {
	ticker := time.NewTicker(IdlePeriod)
	defer ticker.Stop()

	var st idleState
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := s.timeoutCtx(ctx)
			seconds, err := s.Probe.IdleSeconds(pctx)
			cancel()
			if err != nil {
				logger.Debug("idle probe failed", "error", err)
				continue
			}
			if o, ok := st.evaluate(s.Clock.Now(), time.Duration(seconds*float64(time.Second))); ok {
				s.emit(o)
			}
		}
	}
}
