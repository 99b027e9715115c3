// Package probe defines the Platform Probe interface (spec §2, C1): the
// hub's only window onto OS-level signals. Every call is bounded by a
// caller-supplied timeout; per spec §5 a timeout yields an empty result,
// never a propagated error.
package probe

import "context"

// WindowInfo describes one item in the platform's window list.
type WindowInfo struct {
	Title string
	App   string
}

// CursorPos is the on-screen pointer position.
type CursorPos struct {
	X, Y int
}

// Screenshot is a downscaled, JPEG-encoded capture, base64-friendly as
// raw bytes (callers base64-encode at the point of use, e.g. admission
// enrichment and the channel's screen_capture event).
type Screenshot struct {
	JPEG   []byte
	Width  int
	Height int
}

// Probe is the interface every Observer and the admission layer depend
// on. Implementations must never block past the context deadline; on
// timeout they return the zero value and a non-nil error, which callers
// absorb (log and continue) rather than propagate.
type Probe interface {
	// ActiveWindowTitle returns the foreground window's title.
	ActiveWindowTitle(ctx context.Context) (string, error)
	// WindowList returns all currently open windows.
	WindowList(ctx context.Context) ([]WindowInfo, error)
	// CursorPos returns the current pointer position.
	CursorPos(ctx context.Context) (CursorPos, error)
	// IdleSeconds returns how long the user has been idle.
	IdleSeconds(ctx context.Context) (float64, error)
	// ClipboardText returns the current clipboard text content, or ""
	// if the clipboard holds no text (e.g. an image).
	ClipboardText(ctx context.Context) (string, error)
	// ClipboardHasImage reports whether the clipboard currently holds
	// image data.
	ClipboardHasImage(ctx context.Context) (bool, error)
	// CaptureScreen returns a downscaled screenshot, per spec ~960x540.
	CaptureScreen(ctx context.Context) (Screenshot, error)
}
