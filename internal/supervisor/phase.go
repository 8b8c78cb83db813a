package supervisor

import "sync/atomic"

// Phase is the session lifecycle state. All reads/writes go through
// atomic operations so pumps can observe it without taking a lock.
// The supervisor's run loop writes it, and so does the kill-deadline
// goroutine through finish; the move to EXITED is guarded by
// finishOnce so exactly one caller performs the shutdown.
type Phase int32

const (
	Run Phase = iota
	Draining
	Killing
	Exited
)

func (p Phase) String() string {
	switch p {
	case Run:
		return "RUN"
	case Draining:
		return "DRAINING"
	case Killing:
		return "KILLING"
	case Exited:
		return "EXITED"
	default:
		return "UNKNOWN"
	}
}

type phaseVar struct {
	v atomic.Int32
}

func (p *phaseVar) load() Phase {
	return Phase(p.v.Load())
}

func (p *phaseVar) store(phase Phase) {
	p.v.Store(int32(phase))
}
