// Package pairing renders the hub's loopback WebSocket URL as a
// terminal QR code, for the `hub pair` CLI subcommand: a convenience
// for scanning from a companion front-end on a second device (e.g. over
// an adb/ssh port-forward), not a protocol change.
package pairing

import (
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
)

// URL builds the loopback WebSocket endpoint the companion front-end
// should connect to.
func URL(port int) string {
	return fmt.Sprintf("ws://127.0.0.1:%d/", port)
}

// Print writes the pairing URL followed by a scannable terminal QR code
// to w.
func Print(w io.Writer, port int) error {
	target := URL(port)

	q, err := qrcode.New(target, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("pairing: build qr code: %w", err)
	}

	fmt.Fprintln(w, target)
	fmt.Fprintln(w, q.ToSmallString(false))
	return nil
}
