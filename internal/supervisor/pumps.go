package supervisor

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"reclog/internal/term"
)

// pumpA forwards the wrapper's stdin to the pty master. On stdin EOF it
// writes the pty's VEOF byte so the child's next read returns 0, then
// returns. A blocked Read here outlives shutdown by design: the
// process exits via os.Exit once the supervisor reaches EXITED, which
// reclaims the goroutine — the idiomatic Go substitute for the
// self-pipe cancellation trick, since nothing downstream of pump A
// needs to observe its termination.
func (s *Supervisor) pumpA() {
	buf := make([]byte, 4096)
	for {
		n, err := s.stdin.Read(buf)
		if n > 0 {
			s.trace("stdin", buf[:n])
			if _, werr := s.pty.Master.Write(buf[:n]); werr != nil {
				s.logger.Debug("pump A write to pty failed", "error", werr)
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				s.logger.Debug("pump A stdin read error", "error", err)
			}
			if veof, verr := term.VEOF(s.pty.Master); verr == nil {
				_, _ = s.pty.Master.Write([]byte{veof})
			}
			return
		}
	}
}

// pumpB reads raw bytes from the pty master, assembles them into
// lines, and offers every line to both the file pipeline (pump D, via
// a channel) and the stdout pipeline (the ring buffer, directly since
// pushes never block). It terminates on EOF or EIO — Linux's
// end-of-session indicator once the slave side is gone — both treated
// as clean stream end, never as errors. This is a hot loop: it must
// never block on anything but the pty read itself and the bounded
// file-line channel, which pump D drains.
func (s *Supervisor) pumpB() {
	defer close(s.fileLines)
	defer s.ring.Close()

	buf := make([]byte, 8192)
	asm := &lineAssembler{}
	for {
		n, err := s.pty.Master.Read(buf)
		if n > 0 {
			s.trace("pty", buf[:n])
			for _, line := range asm.Feed(buf[:n]) {
				s.offerLine(line)
			}
		}
		if err != nil {
			if tail := asm.Flush(); len(tail) > 0 {
				s.offerLine(tail)
			}
			if !isEndOfPty(err) {
				s.logger.Debug("pump B pty read error", "error", err)
			}
			s.pumpBDone <- struct{}{}
			return
		}
	}
}

func (s *Supervisor) offerLine(line []byte) {
	cp := make([]byte, len(line))
	copy(cp, line)
	s.ring.Push(cp)
	s.fileLines <- line
}

func isEndOfPty(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}

// pumpC dequeues lines from the ring buffer and writes them to stdout.
// If stdout dies it keeps draining and discarding so pump B is never
// blocked on a full ring.
func (s *Supervisor) pumpC() {
	for {
		line, ok := s.ring.Pop()
		if !ok {
			return
		}
		s.trace("stdout", line)
		_ = s.stdoutSink.WriteLine(line, time.Now())
	}
}

// pumpD drains the file-line channel pump B feeds and writes each line
// to the log file sink, with its own timestamp/ANSI-strip pipeline.
func (s *Supervisor) pumpD() {
	for line := range s.fileLines {
		s.trace("file", line)
		if err := s.fileSink.WriteLine(line, time.Now()); err != nil {
			s.logger.Debug("pump D file write failed", "error", err)
		}
	}
}

// reap blocks in Wait4 until the child changes state, translating raw
// wait status into lifecycle events. It runs on its own goroutine so
// the supervisor's main select loop never blocks on it; this also
// means SIGCHLD's role collapses to "wake up and look", which Go's
// blocking Wait4 gives for free without races against async delivery.
func (s *Supervisor) reap() {
	for {
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(s.pty.Pid, &ws, syscall.WUNTRACED|syscall.WCONTINUED, nil)
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			s.childEvents <- childEvent{kind: childErr, err: err}
			close(s.childDone)
			return
		}
		if pid != s.pty.Pid {
			continue
		}

		switch {
		case ws.Exited():
			s.childEvents <- childEvent{kind: childExited, code: ws.ExitStatus()}
			close(s.childDone)
			return
		case ws.Signaled():
			s.childEvents <- childEvent{kind: childSignaled, signal: ws.Signal()}
			close(s.childDone)
			return
		case ws.Stopped():
			s.childEvents <- childEvent{kind: childStopped, signal: ws.StopSignal()}
		case ws.Continued():
			s.childEvents <- childEvent{kind: childContinued}
		}
	}
}

type childEventKind int

const (
	childExited childEventKind = iota
	childSignaled
	childStopped
	childContinued
	childErr
)

type childEvent struct {
	kind   childEventKind
	code   int
	signal syscall.Signal
	err    error
}

