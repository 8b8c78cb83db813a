package supervisor

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reclog/internal/outputsink"
	"reclog/internal/ptysession"
	"reclog/internal/term"
)

func TestSupervisor_Run_ChildExitPropagatesExitCode(t *testing.T) {
	stdinR, stdinW, err := os.Pipe()
	require.NoError(t, err)
	stdoutR, stdoutW, err := os.Pipe()
	require.NoError(t, err)

	captured := make(chan string, 1)
	go func() {
		out, _ := io.ReadAll(stdoutR)
		captured <- string(out)
	}()
	stdinW.Close() // stdin is already at EOF: pump A writes VEOF and returns

	session, err := ptysession.Start([]string{"sh", "-c", "echo hello; exit 3"}, term.DefaultWindowSize)
	require.NoError(t, err)

	sup := New(session, stdinR, stdoutW, outputsink.NullSink{}, outputsink.NewStdoutSink(stdoutW, nil, false), nil, Config{
		QuitDeadline: 200 * time.Millisecond,
		BufferLines:  64,
	})

	code := sup.Run()
	stdoutW.Close()

	require.Equal(t, 3, code)
	require.Contains(t, <-captured, "hello")
}

func TestSupervisor_Run_SilentStdoutStillDrains(t *testing.T) {
	stdinR, stdinW, err := os.Pipe()
	require.NoError(t, err)
	stdoutR, stdoutW, err := os.Pipe()
	require.NoError(t, err)
	go io.ReadAll(stdoutR)
	stdinW.Close()

	session, err := ptysession.Start([]string{"sh", "-c", "echo quiet; exit 0"}, term.DefaultWindowSize)
	require.NoError(t, err)

	sup := New(session, stdinR, stdoutW, outputsink.NullSink{}, outputsink.NewStdoutSink(stdoutW, nil, true), nil, Config{
		QuitDeadline: 200 * time.Millisecond,
		BufferLines:  64,
	})

	code := sup.Run()
	stdoutW.Close()

	require.Equal(t, 0, code)
}
