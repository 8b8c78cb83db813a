// Package supervisor is the session supervisor: the concurrent I/O and
// control-flow engine that pairs a pty master with stdin, stdout, and
// the log file, and drives the RUN/DRAINING/KILLING/EXITED lifecycle.
package supervisor

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"reclog/internal/exitstatus"
	"reclog/internal/linebuffer"
	"reclog/internal/outputsink"
	"reclog/internal/ptysession"
	"reclog/internal/signalplane"
	"reclog/internal/term"
	"reclog/internal/tracelog"
)

// Config carries the resolved options the supervisor needs, independent
// of how they were parsed.
type Config struct {
	QuitDeadline time.Duration
	BufferLines  int
	Logger       *slog.Logger

	// Trace, if non-nil, receives a tagged, timestamped copy of every
	// byte each pump moves (stdin, pty, file, stdout) in tracelog's wire
	// format. Nil disables tracing entirely.
	Trace io.Writer
}

// Supervisor owns the pty, the child, the deadline timers, and the
// pumps for a single reclog invocation.
type Supervisor struct {
	pty        *ptysession.Session
	ring       *linebuffer.Ring
	fileSink   outputsink.LineSink
	stdoutSink *outputsink.StdoutSink
	signals    *signalplane.Plane
	termState  *term.State
	tracer     *tracelog.Tracer

	stdin  *os.File
	stdout *os.File

	fileLines   chan []byte
	pumpBDone   chan struct{}
	childEvents chan childEvent
	childDone   chan struct{}

	phase        phaseVar
	quitDeadline time.Duration
	logger       *slog.Logger

	gracefulArmed bool
	suspendArmed  bool

	wg sync.WaitGroup

	exitOnce   sync.Once
	finishOnce sync.Once
	exitCode   int
}

// New wires a Supervisor around an already-started pty session.
func New(pty *ptysession.Session, stdin, stdout *os.File, fileSink outputsink.LineSink, stdoutSink *outputsink.StdoutSink, termState *term.State, cfg Config) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var tracer *tracelog.Tracer
	if cfg.Trace != nil {
		tracer = tracelog.New(cfg.Trace)
	}
	return &Supervisor{
		pty:          pty,
		ring:         linebuffer.New(cfg.BufferLines),
		fileSink:     fileSink,
		stdoutSink:   stdoutSink,
		signals:      signalplane.New(),
		termState:    termState,
		tracer:       tracer,
		stdin:        stdin,
		stdout:       stdout,
		fileLines:    make(chan []byte, cfg.BufferLines),
		pumpBDone:    make(chan struct{}, 1),
		childEvents:  make(chan childEvent, 4),
		childDone:    make(chan struct{}),
		quitDeadline: cfg.QuitDeadline,
		logger:       logger,
	}
}

// Run starts all pumps and the reaper, drives the lifecycle state
// machine to completion, restores the user's terminal mode, and
// returns the process exit code to use.
func (s *Supervisor) Run() int {
	defer s.termState.Restore()
	defer s.signals.Stop()

	// Pump A is intentionally not tracked by the WaitGroup: a blocking
	// stdin read can outlive every other pump (see pumpA's doc comment),
	// and the process exiting reclaims it.
	go s.pumpA()

	s.wg.Add(2)
	go func() { defer s.wg.Done(); s.pumpC() }()
	go func() { defer s.wg.Done(); s.pumpD() }()
	go s.pumpB()
	go s.reap()

	s.phase.store(Run)

	var quitTimer *time.Timer
	var quitTimerC <-chan time.Time

	for s.phase.load() != Exited {
		select {
		case ev, ok := <-s.signals.Events():
			if !ok {
				continue
			}
			s.handleSignal(ev)

		case <-s.pumpBDone:
			s.logger.Debug("pump B terminated")
			s.finish()

		case ev := <-s.childEvents:
			terminal := s.handleChildEvent(ev)
			if terminal && s.phase.load() == Run {
				s.phase.store(Draining)
				quitTimer = time.NewTimer(s.quitDeadline)
				quitTimerC = quitTimer.C
			}

		case <-quitTimerC:
			s.logger.Debug("quit deadline expired")
			s.pty.Close() // forces pump B's read to unblock with an error
			s.finish()
		}
	}

	if quitTimer != nil {
		quitTimer.Stop()
	}

	// A deadline-driven SIGKILL may race the reaper: make sure the
	// child's final status is actually collected before reporting an
	// exit code, even if the main loop woke via pump B closing first.
	<-s.childDone
	select {
	case ev := <-s.childEvents:
		s.handleChildEvent(ev)
	default:
	}

	s.wg.Wait()
	_ = s.fileSink.Close()
	if s.tracer != nil {
		s.tracer.Close()
	}
	return s.exitCode
}

// trace hands a pump's bytes to the debug sidecar. A no-op when tracing
// is disabled, so the pumps can call it unconditionally.
func (s *Supervisor) trace(stream string, p []byte) {
	if s.tracer == nil || len(p) == 0 {
		return
	}
	s.tracer.Write(stream, p)
}

func (s *Supervisor) handleSignal(ev signalplane.Event) {
	switch ev.Class {
	case signalplane.Graceful:
		phase := s.phase.load()
		if phase == Draining {
			s.escalate()
			return
		}
		if s.gracefulArmed {
			s.escalate()
			return
		}
		s.gracefulArmed = true
		_ = s.pty.SignalGroup(toSyscallSignal(ev.Signal))

	case signalplane.Emergency:
		_ = s.pty.SignalGroup(toSyscallSignal(ev.Signal))
		s.phase.store(Killing)
		s.startKillDeadline()

	case signalplane.Suspend:
		sig := toSyscallSignal(ev.Signal)
		_ = s.pty.SignalGroup(sig)
		if !s.suspendArmed {
			s.suspendArmed = true
			_ = syscall.Kill(os.Getpid(), syscall.SIGSTOP)
		} else {
			_ = s.pty.SignalGroup(syscall.SIGSTOP)
		}

	case signalplane.Resume:
		s.suspendArmed = false
		_ = s.pty.SignalGroup(syscall.SIGCONT)

	case signalplane.Passthrough:
		size := term.PreferredWindowSize(s.stdin, s.stdout)
		_ = s.pty.Resize(size)

	case signalplane.Lifecycle, signalplane.Ignore:
		// SIGCHLD reaping happens on the dedicated reap() goroutine;
		// SIGPIPE is handled at write sites. Nothing to do here.
	}
}

func (s *Supervisor) escalate() {
	_ = s.pty.SignalGroup(syscall.SIGKILL)
	s.phase.store(Killing)
	s.startKillDeadline()
}

func (s *Supervisor) startKillDeadline() {
	go func() {
		time.Sleep(s.quitDeadline)
		s.finish()
	}()
}

// handleChildEvent records the exit status for terminal events and
// reports whether the event ends the child's lifetime (exit or
// signal-death). Stopped/continued events are job-control notices only
// and never drive a phase transition on their own.
func (s *Supervisor) handleChildEvent(ev childEvent) bool {
	switch ev.kind {
	case childExited:
		s.exitOnce.Do(func() { s.exitCode = ev.code })
		return true
	case childSignaled:
		s.exitOnce.Do(func() { s.exitCode = exitstatus.Signaled(int(ev.signal)) })
		return true
	case childErr:
		s.logger.Debug("reaper error", "error", ev.err)
		return false
	default: // childStopped, childContinued
		return false
	}
}

// finish performs the idempotent transition into EXITED: close the pty
// (unblocking pump B) and, when the phase is KILLING, SIGKILL the
// group. It
// can be invoked both from the run loop and from a deadline goroutine
// racing against it, so the side effects are guarded by finishOnce;
// the run loop still owns noticing the resulting phase change, via
// pump B's EOF/error waking the select on pumpBDone.
func (s *Supervisor) finish() {
	s.finishOnce.Do(func() {
		if s.phase.load() == Killing {
			_ = s.pty.SignalGroup(syscall.SIGKILL)
		}
		_ = s.pty.Close()
		s.phase.store(Exited)
	})
}

func toSyscallSignal(sig os.Signal) syscall.Signal {
	if s, ok := sig.(syscall.Signal); ok {
		return s
	}
	return syscall.SIGTERM
}
