// Package term manages the user's controlling terminal: saving and
// restoring its termios mode, querying the VEOF byte and window size,
// and detecting whether a file descriptor is a tty at all.
package term

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// State is a saved termios snapshot, restorable exactly once per save.
type State struct {
	fd  int
	raw *unix.Termios
}

// IsTerminal reports whether f refers to a terminal device.
func IsTerminal(f *os.File) bool {
	return xterm.IsTerminal(int(f.Fd()))
}

// Save captures the current termios of f so it can later be restored.
// Returns nil, nil if f is not a terminal — restoring a nil State is a
// no-op, which lets callers save unconditionally.
func Save(f *os.File) (*State, error) {
	fd := int(f.Fd())
	if !xterm.IsTerminal(fd) {
		return nil, nil
	}
	raw, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("save termios: %w", err)
	}
	return &State{fd: fd, raw: raw}, nil
}

// Restore reapplies a previously saved termios. A nil receiver is a
// deliberate no-op so the scoped-guard pattern in the supervisor can
// call it unconditionally on every exit path, including panic.
func (s *State) Restore() error {
	if s == nil || s.raw == nil {
		return nil
	}
	if err := unix.IoctlSetTermios(s.fd, ioctlSetTermios, s.raw); err != nil {
		return fmt.Errorf("restore termios: %w", err)
	}
	return nil
}

// VEOF returns the terminal's configured end-of-file byte (usually
// Ctrl-D). Writing this byte to a pty master causes the slave's next
// read to return 0 once pending input is drained.
func VEOF(f *os.File) (byte, error) {
	fd := int(f.Fd())
	raw, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return 0, fmt.Errorf("query VEOF: %w", err)
	}
	return raw.Cc[unix.VEOF], nil
}

// WindowSize is a terminal size in character cells.
type WindowSize struct {
	Rows, Cols uint16
}

// DefaultWindowSize is used when neither stdin nor stdout is a tty.
var DefaultWindowSize = WindowSize{Rows: 24, Cols: 80}

// Size reads the window size of f. Per the open question on SIGWINCH
// sourcing, callers should prefer stdout and fall back to stdin.
func Size(f *os.File) (WindowSize, error) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return WindowSize{}, fmt.Errorf("get window size: %w", err)
	}
	return WindowSize{Rows: ws.Row, Cols: ws.Col}, nil
}

// ApplySize pushes size onto the pty master referenced by fd via
// TIOCSWINSZ, which propagates SIGWINCH to the slave's foreground
// process group.
func ApplySize(f *os.File, size WindowSize) error {
	ws := &unix.Winsize{Row: size.Rows, Col: size.Cols}
	if err := unix.IoctlSetWinsize(int(f.Fd()), unix.TIOCSWINSZ, ws); err != nil {
		return fmt.Errorf("set window size: %w", err)
	}
	return nil
}

// PreferredWindowSize picks stdout's size if it is a tty, else stdin's,
// else the default.
func PreferredWindowSize(stdin, stdout *os.File) WindowSize {
	if IsTerminal(stdout) {
		if size, err := Size(stdout); err == nil {
			return size
		}
	}
	if IsTerminal(stdin) {
		if size, err := Size(stdin); err == nil {
			return size
		}
	}
	return DefaultWindowSize
}

// SetCanonical switches f into canonical, line-buffered mode with echo,
// the default interactive line discipline.
func SetCanonical(f *os.File) error {
	fd := int(f.Fd())
	raw, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}
	raw.Lflag |= unix.ICANON | unix.ECHO | unix.ISIG
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, raw); err != nil {
		return fmt.Errorf("set canonical mode: %w", err)
	}
	return nil
}
