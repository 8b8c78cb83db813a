package tracelog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracer_WritesTaggedChunk(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)

	tr.Write("pty", []byte("hello\n"))
	tr.Close()

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "pty "), "got %q", out)
	require.Contains(t, out, "6: hello\n")
}

func TestTracer_IgnoresEmptyWrites(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)

	tr.Write("stdin", nil)
	tr.Write("stdin", []byte{})
	tr.Close()

	require.Empty(t, buf.String())
}

func TestTracer_InterleavesAllFourStreams(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)

	tr.Write("stdin", []byte("a"))
	tr.Write("pty", []byte("b"))
	tr.Write("file", []byte("c"))
	tr.Write("stdout", []byte("d"))
	tr.Close()

	out := buf.String()
	for _, stream := range []string{"stdin", "pty", "file", "stdout"} {
		require.Contains(t, out, stream+" ")
	}
}

func TestTracer_CopiesWriteBuffer(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)

	p := []byte("mutate me")
	tr.Write("pty", p)
	p[0] = 'X'
	tr.Close()

	require.Contains(t, buf.String(), "mutate me")
}
