package linebuffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRing_PushPop_InOrder(t *testing.T) {
	r := New(4)
	r.Push([]byte("a\n"))
	r.Push([]byte("b\n"))
	r.Push([]byte("c\n"))

	line, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, "a\n", string(line))

	line, ok = r.Pop()
	require.True(t, ok)
	require.Equal(t, "b\n", string(line))
}

func TestRing_DropOldestOnOverflow(t *testing.T) {
	r := New(2)
	r.Push([]byte("a\n"))
	r.Push([]byte("b\n"))
	r.Push([]byte("c\n")) // evicts "a\n"

	line, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, "b\n", string(line))

	line, ok = r.Pop()
	require.True(t, ok)
	require.Equal(t, "c\n", string(line))

	require.Equal(t, uint64(1), r.Dropped())
}

func TestRing_PushNeverBlocks(t *testing.T) {
	r := New(1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			r.Push([]byte("x\n"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked under sustained overflow")
	}
}

func TestRing_PopDrainsQueuedLinesAfterClose(t *testing.T) {
	r := New(4)
	r.Push([]byte("a\n"))
	r.Close()

	line, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, "a\n", string(line))

	_, ok = r.Pop()
	require.False(t, ok)
}

func TestRing_PopUnblocksOnClose(t *testing.T) {
	r := New(4)
	done := make(chan bool)
	go func() {
		_, ok := r.Pop()
		done <- ok
	}()

	r.Close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock on Close")
	}
}
