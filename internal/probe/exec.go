package probe

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ExecProbe implements Probe by shelling out to external command-line
// utilities (xdotool, xclip, scrot) rather than talking to any network
// service — every call stays local, matching the hub's loopback-only,
// no-authentication design (spec §6 Non-goals). Callers must pass a
// context with a deadline; per spec §5 the recommended bound is 3-5s.
type ExecProbe struct {
	// MaxScreenWidth/MaxScreenHeight bound the downscaled capture size.
	// Defaults to the spec's ~960x540 when zero.
	MaxScreenWidth, MaxScreenHeight int
}

// NewExecProbe returns an ExecProbe with spec-default capture dimensions.
func NewExecProbe() *ExecProbe {
	return &ExecProbe{MaxScreenWidth: 960, MaxScreenHeight: 540}
}

func runCapture(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

// ActiveWindowTitle shells out to `xdotool getactivewindow getwindowname`.
func (p *ExecProbe) ActiveWindowTitle(ctx context.Context) (string, error) {
	return runCapture(ctx, "xdotool", "getactivewindow", "getwindowname")
}

// WindowList shells out to `xdotool search --name ""` plus one
// getwindowname lookup per id; partial results on timeout are dropped
// rather than returned incomplete, per the probe's all-or-empty contract.
func (p *ExecProbe) WindowList(ctx context.Context) ([]WindowInfo, error) {
	out, err := runCapture(ctx, "xdotool", "search", "--name", "")
	if err != nil {
		return nil, err
	}
	var windows []WindowInfo
	for _, id := range strings.Fields(out) {
		title, err := runCapture(ctx, "xdotool", "getwindowname", id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		windows = append(windows, WindowInfo{Title: title})
	}
	return windows, nil
}

// CursorPos shells out to `xdotool getmouselocation --shell`.
func (p *ExecProbe) CursorPos(ctx context.Context) (CursorPos, error) {
	out, err := runCapture(ctx, "xdotool", "getmouselocation", "--shell")
	if err != nil {
		return CursorPos{}, err
	}
	var pos CursorPos
	for _, line := range strings.Split(out, "\n") {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		switch k {
		case "X":
			pos.X = n
		case "Y":
			pos.Y = n
		}
	}
	return pos, nil
}

// IdleSeconds shells out to `xprintidle`, which reports idle time in
// milliseconds.
func (p *ExecProbe) IdleSeconds(ctx context.Context) (float64, error) {
	out, err := runCapture(ctx, "xprintidle")
	if err != nil {
		return 0, err
	}
	ms, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, err
	}
	return ms / 1000.0, nil
}

// ClipboardText shells out to `xclip -selection clipboard -o`. A
// non-text clipboard (or empty clipboard) yields "" and no error.
func (p *ExecProbe) ClipboardText(ctx context.Context) (string, error) {
	out, err := runCapture(ctx, "xclip", "-selection", "clipboard", "-o")
	if err != nil {
		return "", nil //nolint:nilerr // empty/non-text clipboard is not an error condition
	}
	return out, nil
}

// ClipboardHasImage checks the clipboard TARGETS list for an image MIME type.
func (p *ExecProbe) ClipboardHasImage(ctx context.Context) (bool, error) {
	out, err := runCapture(ctx, "xclip", "-selection", "clipboard", "-t", "TARGETS", "-o")
	if err != nil {
		return false, nil //nolint:nilerr // no clipboard owner is not an error condition
	}
	return strings.Contains(out, "image/"), nil
}

// CaptureScreen shells out to `scrot` into a temp file, then reads it
// back. Downscaling to MaxScreenWidth/MaxScreenHeight happens via
// scrot's own resize option to avoid decoding the full-resolution image
// in-process.
func (p *ExecProbe) CaptureScreen(ctx context.Context) (Screenshot, error) {
	width, height := p.MaxScreenWidth, p.MaxScreenHeight
	if width == 0 {
		width = 960
	}
	if height == 0 {
		height = 540
	}

	f, err := os.CreateTemp("", "companion-hub-capture-*.jpg")
	if err != nil {
		return Screenshot{}, err
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	resize := strconv.Itoa(width) + "x" + strconv.Itoa(height)
	cmd := exec.CommandContext(ctx, "scrot", "--overwrite", "--resize", resize, path)
	if err := cmd.Run(); err != nil {
		return Screenshot{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Screenshot{}, err
	}
	return Screenshot{JPEG: data, Width: width, Height: height}, nil
}
