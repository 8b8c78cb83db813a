package supervisor

// lineAssembler accumulates raw bytes into complete, newline-terminated
// lines. It carries a partial line across Feed calls and yields it,
// unterminated, only when Flush is called at EOF — matching the ring
// buffer's "complete lines, or a trailing partial line only at EOF"
// contract.
type lineAssembler struct {
	carry []byte
}

// Feed appends chunk to the carry buffer and returns every complete
// line it now contains, each including its trailing '\n'. Any
// remaining partial line stays buffered for the next Feed or Flush.
func (a *lineAssembler) Feed(chunk []byte) [][]byte {
	a.carry = append(a.carry, chunk...)

	var lines [][]byte
	start := 0
	for i := 0; i < len(a.carry); i++ {
		if a.carry[i] == '\n' {
			line := make([]byte, i-start+1)
			copy(line, a.carry[start:i+1])
			lines = append(lines, line)
			start = i + 1
		}
	}
	a.carry = a.carry[start:]
	return lines
}

// Flush returns the buffered partial line, if any, and clears it. Call
// once at EOF.
func (a *lineAssembler) Flush() []byte {
	if len(a.carry) == 0 {
		return nil
	}
	line := a.carry
	a.carry = nil
	return line
}
