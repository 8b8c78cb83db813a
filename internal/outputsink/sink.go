// Package outputsink assembles the two line-oriented destinations a
// reclog session writes to — the log file and the user's stdout —
// applying the optional ANSI-stripping and timestamp-prefix pipeline
// per sink.
package outputsink

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"reclog/internal/ansifilter"
	"reclog/internal/timestamp"
)

// LineSink accepts one complete, newline-terminated line at a time.
// Implementations flush after every write so a crash never loses a
// line that was already accepted.
type LineSink interface {
	WriteLine(line []byte, now time.Time) error
	Close() error
}

// FileSink is the log-file destination: optionally ANSI-stripped,
// optionally timestamped. Once Dead is true the sink is abandoned —
// WriteLine becomes a no-op returning the error that killed it.
type FileSink struct {
	file     *os.File
	out      *bufio.Writer
	stripper *ansifilter.Stripper
	stripBuf *bytes.Buffer
	stamper  *timestamp.Stamper
	Dead     bool
	err      error
}

// NewFileSink wraps an already-opened file. raw disables ANSI
// stripping; stamper may be nil to disable timestamp prefixes. When
// stripping is enabled the decoder state persists across WriteLine
// calls for the life of the sink, so an escape sequence split across
// whatever chunk boundaries the caller hands in still strips cleanly.
func NewFileSink(f *os.File, raw bool, stamper *timestamp.Stamper) *FileSink {
	s := &FileSink{
		file:    f,
		out:     bufio.NewWriter(f),
		stamper: stamper,
	}
	if !raw {
		s.stripBuf = &bytes.Buffer{}
		s.stripper = ansifilter.NewStripper(s.stripBuf)
	}
	return s
}

// WriteLine writes one line, applying timestamp prefix and ANSI
// stripping per the sink's configuration, then flushes. On error the
// sink marks itself dead and returns the error; callers should stop
// calling WriteLine and surface the error once, per the runtime-I/O
// error policy.
func (s *FileSink) WriteLine(line []byte, now time.Time) error {
	if s.Dead {
		return s.err
	}

	if s.stamper != nil {
		if _, err := s.out.WriteString(s.stamper.Format(now)); err != nil {
			return s.kill(err)
		}
	}

	payload := line
	if s.stripper != nil {
		s.stripBuf.Reset()
		s.stripper.Write(line)
		payload = s.stripBuf.Bytes()
	}

	if _, err := s.out.Write(payload); err != nil {
		return s.kill(err)
	}
	if err := s.out.Flush(); err != nil {
		return s.kill(err)
	}
	return nil
}

func (s *FileSink) kill(err error) error {
	s.Dead = true
	s.err = fmt.Errorf("file sink write failed: %w", err)
	return s.err
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	if s.file == nil {
		return nil
	}
	_ = s.out.Flush()
	return s.file.Close()
}

// StdoutSink is the user-visible destination. It always receives raw
// (unstripped) bytes so live color output is preserved; Silent
// discards everything while still reporting success so pump C is
// never blocked.
type StdoutSink struct {
	w       io.Writer
	stamper *timestamp.Stamper
	Silent  bool
	Dead    bool
}

// NewStdoutSink wraps w (normally os.Stdout). stamper may be nil.
func NewStdoutSink(w io.Writer, stamper *timestamp.Stamper, silent bool) *StdoutSink {
	return &StdoutSink{w: w, stamper: stamper, Silent: silent}
}

// WriteLine writes one line to stdout. On error the sink marks itself
// dead and continues to report success so the caller (pump C) keeps
// draining the ring instead of blocking.
func (s *StdoutSink) WriteLine(line []byte, now time.Time) error {
	if s.Silent || s.Dead {
		return nil
	}
	if s.stamper != nil {
		if _, err := io.WriteString(s.w, s.stamper.Format(now)); err != nil {
			s.Dead = true
			return nil
		}
	}
	if _, err := s.w.Write(line); err != nil {
		s.Dead = true
	}
	return nil
}

func (s *StdoutSink) Close() error { return nil }

// NullSink discards everything; used for --null.
type NullSink struct{}

func (NullSink) WriteLine(line []byte, now time.Time) error { return nil }
func (NullSink) Close() error                               { return nil }
