// Package timestamp renders the per-line timestamp prefix reclog
// prepends to stdout and log-file lines. It supports wall-clock,
// elapsed, and delta-from-last-line sources, all rendered through a
// single strftime-style format pattern.
package timestamp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Source selects what instant a Stamper measures against.
type Source int

const (
	// Wall renders the current wallclock time.
	Wall Source = iota
	// Elapsed renders time since the Stamper was created.
	Elapsed
	// Delta renders time since the previous emitted line (zero for the
	// first line).
	Delta
)

// ParseSource maps the --ts-src flag value to a Source.
func ParseSource(s string) (Source, error) {
	switch s {
	case "wall":
		return Wall, nil
	case "elapsed":
		return Elapsed, nil
	case "delta":
		return Delta, nil
	default:
		return 0, fmt.Errorf("invalid --ts-src %q (want wall, elapsed, or delta)", s)
	}
}

// DefaultFormat is the default --ts-fmt pattern.
const DefaultFormat = "%T%.3f "

// fracSpecPattern matches the chrono-style fractional-seconds
// extension (%.3f, %.6f, %.9f) that strftime itself does not support.
var fracSpecPattern = regexp.MustCompile(`%\.(\d)f`)

// fracPlaceholder is substituted for the fractional spec before handing
// the pattern to strftime, then replaced with the rendered digits
// afterward. It must not collide with any other strftime output, so it
// uses bytes strftime's verb table never produces.
const fracPlaceholder = "\x00FRAC\x00"

// Stamper renders timestamp prefixes for a single reclog session.
type Stamper struct {
	source   Source
	compiled *strftime.Strftime
	fracDigits int
	hasFrac  bool

	start time.Time
	mu    sync.Mutex
	last  time.Time
	first bool
}

// New compiles format and builds a Stamper for the given source. now is
// the instant treated as both "start" (for Elapsed) and the first
// "last emit" (for Delta).
func New(source Source, format string, now time.Time) (*Stamper, error) {
	pattern := format
	fracDigits := 0
	hasFrac := false
	if m := fracSpecPattern.FindStringSubmatch(format); m != nil {
		hasFrac = true
		fracDigits, _ = strconv.Atoi(m[1])
		pattern = fracSpecPattern.ReplaceAllString(format, fracPlaceholder)
	}

	compiled, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid --ts-fmt %q: %w", format, err)
	}

	return &Stamper{
		source:     source,
		compiled:   compiled,
		fracDigits: fracDigits,
		hasFrac:    hasFrac,
		start:      now,
		last:       now,
		first:      true,
	}, nil
}

// Format renders the timestamp prefix for a line emitted at instant
// now, advancing the delta-source "last emit" bookkeeping.
func (s *Stamper) Format(now time.Time) string {
	var instant time.Time
	switch s.source {
	case Wall:
		instant = now
	case Elapsed:
		instant = time.Unix(0, 0).UTC().Add(now.Sub(s.start))
	case Delta:
		s.mu.Lock()
		var d time.Duration
		if s.first {
			d = 0
			s.first = false
		} else {
			d = now.Sub(s.last)
		}
		s.last = now
		s.mu.Unlock()
		instant = time.Unix(0, 0).UTC().Add(d)
	}

	rendered := s.compiled.FormatString(instant)
	if s.hasFrac {
		nanos := instant.Nanosecond()
		scale := 1
		for i := 0; i < 9-s.fracDigits; i++ {
			scale *= 10
		}
		frac := fmt.Sprintf(".%0*d", s.fracDigits, nanos/scale)
		rendered = strings.Replace(rendered, fracPlaceholder, frac, 1)
	}
	return rendered
}
