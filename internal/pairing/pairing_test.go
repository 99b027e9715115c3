package pairing

import (
	"bytes"
	"strings"
	"testing"
)

func TestURLFormatsLoopbackAddress(t *testing.T) {
	if got, want := URL(9320), "ws://127.0.0.1:9320/"; got != want {
		t.Errorf("URL(9320) = %q, want %q", got, want)
	}
}

func TestPrintIncludesURLAndQRBody(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, 9320); err != nil {
		t.Fatalf("Print: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ws://127.0.0.1:9320/") {
		t.Errorf("output missing pairing URL:\n%s", out)
	}
	if len(out) < len("ws://127.0.0.1:9320/")+10 {
		t.Errorf("output too short to contain a rendered QR code:\n%s", out)
	}
}
