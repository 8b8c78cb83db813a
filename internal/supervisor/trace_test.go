package supervisor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"reclog/internal/tracelog"
)

func TestSupervisor_Trace_NoopWithoutTracer(t *testing.T) {
	s := &Supervisor{}
	s.trace("pty", []byte("hello"))
}

func TestSupervisor_Trace_WritesTaggedChunk(t *testing.T) {
	var buf bytes.Buffer
	s := &Supervisor{tracer: tracelog.New(&buf)}

	s.trace("stdin", []byte("hi\n"))
	s.tracer.Close()

	require.Contains(t, buf.String(), "stdin ")
	require.Contains(t, buf.String(), "hi\n")
}

func TestSupervisor_Trace_IgnoresEmptyWrites(t *testing.T) {
	var buf bytes.Buffer
	s := &Supervisor{tracer: tracelog.New(&buf)}

	s.trace("pty", nil)
	s.tracer.Close()

	require.Empty(t, buf.String())
}
