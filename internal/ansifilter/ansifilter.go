// Package ansifilter strips ANSI/VT/ECMA-48 escape sequences from a
// pty byte stream, preserving the handful of C0 control bytes that
// affect line structure. It is resumable across arbitrary chunk
// boundaries: the decoder state byte persists between Write calls.
package ansifilter

import (
	"io"

	"github.com/charmbracelet/x/ansi"
)

// keptControls is the C0 control-byte allow-list: everything else with
// width==0 (escape/CSI/OSC/DCS/SOS/PM/APC sequences, other C0 bytes) is
// dropped.
var keptControls = map[byte]bool{
	'\n': true,
	'\r': true,
	'\t': true,
	'\b': true,
}

// Stripper is an io.Writer that removes escape sequences from whatever
// is written to it and forwards the printable remainder to an
// underlying writer.
type Stripper struct {
	dst   io.Writer
	state byte
}

// NewStripper returns a Stripper writing stripped output to dst.
func NewStripper(dst io.Writer) *Stripper {
	return &Stripper{dst: dst}
}

// Write decodes seq sequences from p, keeping printable text and the
// allow-listed C0 controls, dropping everything else, and forwards the
// surviving bytes to the underlying writer in one call. The decoder
// state carries over to the next Write, so p need not align on
// sequence boundaries.
func (s *Stripper) Write(p []byte) (int, error) {
	remaining := string(p)
	var out []byte

	for len(remaining) > 0 {
		sequence, width, byteCount, newState := ansi.DecodeSequence(remaining, s.state, nil)
		s.state = newState

		if width == 0 {
			if byteCount == 1 && keptControls[sequence[0]] {
				out = append(out, sequence[0])
			}
			remaining = remaining[byteCount:]
			continue
		}

		out = append(out, sequence...)
		remaining = remaining[byteCount:]
	}

	if len(out) > 0 {
		if _, err := s.dst.Write(out); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
