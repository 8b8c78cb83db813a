// Package tracelog implements reclog's --debug trace sidecar: a tagged,
// timestamped append-only record of the bytes each of the four pumps
// (stdin, pty, file, stdout) moves during a session. It exists purely
// for after-the-fact inspection of a run that misbehaved; reclog never
// reads its own trace back, so the format only needs to be writable,
// not parsed.
package tracelog

import (
	"fmt"
	"io"
	"time"
)

// Tracer appends tagged chunks to a single destination writer. One
// goroutine owns the destination, so the four pumps can call Write
// concurrently without serializing on the underlying file themselves.
type Tracer struct {
	chunks chan chunk
	done   chan struct{}
}

type chunk struct {
	stream string
	at     time.Time
	data   []byte
}

// New starts the tracer's writer goroutine, which runs until Close is
// called.
func New(w io.Writer) *Tracer {
	chunks := make(chan chunk, 64)
	done := make(chan struct{})

	go func() {
		for c := range chunks {
			fmt.Fprintf(w, "%s %s %d: %s\n", c.stream, c.at.Format("2006-01-02T15:04:05.000000000Z"), len(c.data), c.data)
		}
		close(done)
	}()

	return &Tracer{chunks: chunks, done: done}
}

// Write appends p, tagged with stream and the time it was handed to the
// tracer. p is copied before being queued, so the caller's buffer may
// be reused immediately. Empty writes are ignored.
func (t *Tracer) Write(stream string, p []byte) {
	if len(p) == 0 {
		return
	}
	data := make([]byte, len(p))
	copy(data, p)
	t.chunks <- chunk{stream: stream, at: time.Now().UTC(), data: data}
}

// Close drains queued writes and stops the writer goroutine.
func (t *Tracer) Close() {
	close(t.chunks)
	<-t.done
}
