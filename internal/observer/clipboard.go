package observer

import (
	"context"
	"log/slog"
	"time"
)

// clipboardState tracks what the clipboard last contained so only
// changes are emitted.
type clipboardState struct {
	lastText    string
	lastWasImage bool
}

// evaluate compares the probe's current clipboard content against the
// last-seen state and returns an Observation if it changed. Pure apart
// from the state receiver, so it is unit-testable without a probe.
func (st *clipboardState) evaluate(now time.Time, text string, hasImage bool) (Observation, bool) {
	if hasImage && !st.lastWasImage {
		st.lastWasImage = true
		st.lastText = ""
		return Observation{Kind: KindClipboardImage, TS: now}, true
	}
	if !hasImage {
		st.lastWasImage = false
	}
	if !hasImage && text != "" && text != st.lastText {
		st.lastText = text
		return Observation{Kind: KindClipboardText, TS: now, Text: text}, true
	}
	return Observation{}, false
}

func (s *Set) runClipboard(ctx context.Context, logger *slog.Logger) {
	ticker := time.NewTicker(ClipboardPeriod)
	defer ticker.Stop()

	var st clipboardState
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := s.timeoutCtx(ctx)
			text, err := s.Probe.ClipboardText(pctx)
			if err != nil {
				logger.Debug("clipboard text probe failed", "error", err)
			}
			hasImage, err := s.Probe.ClipboardHasImage(pctx)
			if err != nil {
				logger.Debug("clipboard image probe failed", "error", err)
			}
			cancel()

			if o, ok := st.evaluate(s.Clock.Now(), text, hasImage); ok {
				s.emit(o)
			}
		}
	}
}
