package signalplane

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		sig   syscall.Signal
		class Class
	}{
		{syscall.SIGINT, Graceful},
		{syscall.SIGTERM, Graceful},
		{syscall.SIGQUIT, Emergency},
		{syscall.SIGHUP, Emergency},
		{syscall.SIGTSTP, Suspend},
		{syscall.SIGTTIN, Suspend},
		{syscall.SIGTTOU, Suspend},
		{syscall.SIGCONT, Resume},
		{syscall.SIGWINCH, Passthrough},
		{syscall.SIGCHLD, Lifecycle},
		{syscall.SIGPIPE, Ignore},
	}
	for _, c := range cases {
		require.Equal(t, c.class, classify(c.sig), c.sig.String())
	}
}

func TestPlane_NewExposesEventsChannel(t *testing.T) {
	p := New()
	defer p.Stop()

	require.NotNil(t, p.Events())
}
