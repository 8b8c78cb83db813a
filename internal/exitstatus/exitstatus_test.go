package exitstatus

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignaled(t *testing.T) {
	require.Equal(t, 128+9, Signaled(9))
	require.Equal(t, 128+15, Signaled(15))
}

func TestError_MessageFallsBackToCode(t *testing.T) {
	e := New(126, nil)
	require.Equal(t, "exit status 126", e.Error())
}

func TestError_MessageWrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("exec: not found")
	e := New(126, underlying)
	require.Equal(t, "exec: not found", e.Error())
	require.ErrorIs(t, e, underlying)
}

func TestForChild_NormalExit(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	require.Equal(t, 0, ForChild(cmd.ProcessState))
}

func TestForChild_NonZeroExit(t *testing.T) {
	cmd := exec.Command("false")
	err := cmd.Run()
	require.Error(t, err)
	require.Equal(t, 1, ForChild(cmd.ProcessState))
}

func TestForChild_Signaled(t *testing.T) {
	cmd := exec.Command("sh", "-c", "kill -TERM $$")
	err := cmd.Run()
	require.Error(t, err)
	require.Equal(t, Signaled(15), ForChild(cmd.ProcessState))
}
