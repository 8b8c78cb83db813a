// Package ptysession allocates the pty pair, launches the child
// process attached to it as a new session leader, and exposes the
// handful of operations the supervisor needs against the running
// child: resize and signal-the-group. Reaping happens separately, via
// syscall.Wait4 against the raw pid, since cmd.Wait would race the
// supervisor's own blocking Wait4 reap loop.
package ptysession

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"

	"reclog/internal/term"
)

// Session owns the pty master and the launched child. The slave is
// closed in the parent immediately after the child inherits it, per
// the component design: only the master remains live in the wrapper.
type Session struct {
	Master *os.File
	cmd    *exec.Cmd
	Pid    int
}

// Start allocates a pty pair sized to size, launches argv[0] with
// argv[1:] as arguments attached to the slave as controlling terminal,
// and closes the parent's slave handle. The child becomes its own
// session and process group leader, so Pgid() == Pid for its entire
// lifetime.
func Start(argv []string, size term.WindowSize) (*Session, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("no command given")
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, &ExecError{Err: fmt.Errorf("%s: %w", argv[0], err)}
	}

	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}

	if err := pty.Setsize(master, &pty.Winsize{Rows: size.Rows, Cols: size.Cols}); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("set initial pty size: %w", err)
	}

	cmd := exec.Command(path, argv[1:]...)
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0, // index of cmd.Stdin among the child's inherited fds
	}

	if err := cmd.Start(); err != nil {
		master.Close()
		slave.Close()
		return nil, &ExecError{Err: err}
	}

	// The slave is now owned by the child; the parent never reads or
	// writes it directly.
	slave.Close()

	return &Session{Master: master, cmd: cmd, Pid: cmd.Process.Pid}, nil
}

// Pgid returns the child's process group id, which equals its pid
// because it was started as a new session leader.
func (s *Session) Pgid() int {
	return s.Pid
}

// Resize applies a new window size to the pty master, propagating
// SIGWINCH to the child's foreground process group.
func (s *Session) Resize(size term.WindowSize) error {
	return pty.Setsize(s.Master, &pty.Winsize{Rows: size.Rows, Cols: size.Cols})
}

// SignalGroup sends sig to the child's entire process group, never to
// the pid alone, per the invariant that all forwarding targets the
// pgid.
func (s *Session) SignalGroup(sig syscall.Signal) error {
	if err := syscall.Kill(-s.Pgid(), sig); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("signal process group %d: %w", s.Pgid(), err)
	}
	return nil
}

// Close closes the pty master. Safe to call once the session is
// finished; unblocks any pending read on the master.
func (s *Session) Close() error {
	return s.Master.Close()
}

// ExecError marks a failure to start the child (LookPath or exec),
// which cmd/reclog reports with exit code 126.
type ExecError struct {
	Err error
}

func (e *ExecError) Error() string { return e.Err.Error() }
func (e *ExecError) Unwrap() error { return e.Err }
