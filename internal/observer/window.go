package observer

import (
	"context"
	"log/slog"
	"time"
)

// windowState tracks the active window title and when it last changed.
type windowState struct {
	title      string
	changedAt  time.Time
	haveTitle  bool
}

// evaluate returns active_title_changed when the title differs from the
// last-seen one, or title_stable(duration since last change) otherwise.
func (st *windowState) evaluate(now time.Time, title string) Observation {
	if !st.haveTitle || title != st.title {
		st.title = title
		st.changedAt = now
		st.haveTitle = true
		return Observation{Kind: KindActiveTitleChanged, TS: now, Title: title}
	}
	return Observation{Kind: KindTitleStable, TS: now, Title: title, Duration: now.Sub(st.changedAt)}
}

func (s *Set) runWindow(ctx context.Context, logger *slog.Logger) {
	ticker := time.NewTicker(WindowPeriod)
	defer ticker.Stop()

	var st windowState
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := s.timeoutCtx(ctx)
			title, err := s.Probe.ActiveWindowTitle(pctx)
			cancel()
			if err != nil {
				logger.Debug("active window probe failed", "error", err)
				continue
			}
			s.emit(st.evaluate(s.Clock.Now(), title))
		}
	}
}
