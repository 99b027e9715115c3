package probe

import (
	"context"
	"sync"
)

// Fake is an in-memory Probe for tests (the admission and channel test
// suites use it). All fields are protected by an internal mutex; set them with
// the Set* helpers from any goroutine.
type Fake struct {
	mu sync.Mutex

	title       string
	windows     []WindowInfo
	cursor      CursorPos
	idleSeconds float64
	clipText    string
	clipImage   bool
	screenshot  Screenshot
	screenErr   error
}

// NewFake returns a ready-to-use Fake probe.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) SetActiveWindowTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

func (f *Fake) SetIdleSeconds(s float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idleSeconds = s
}

func (f *Fake) SetClipboardText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clipText = text
	f.clipImage = false
}

func (f *Fake) SetClipboardImage(has bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clipImage = has
	if has {
		f.clipText = ""
	}
}

func (f *Fake) SetCursor(c CursorPos) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = c
}

func (f *Fake) SetScreenshot(s Screenshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screenshot = s
	f.screenErr = err
}

func (f *Fake) ActiveWindowTitle(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title, nil
}

func (f *Fake) WindowList(context.Context) ([]WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]WindowInfo(nil), f.windows...), nil
}

func (f *Fake) CursorPos(context.Context) (CursorPos, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, nil
}

func (f *Fake) IdleSeconds(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idleSeconds, nil
}

func (f *Fake) ClipboardText(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clipText, nil
}

func (f *Fake) ClipboardHasImage(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clipImage, nil
}

func (f *Fake) CaptureScreen(context.Context) (Screenshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screenshot, f.screenErr
}
