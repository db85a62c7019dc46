package randsource

import (
	"fmt"
)

// Replaying consumes a recorded trace front to back, refusing any draw whose
// length or reason differs from the recorded entry. A faithful generator
// driven by a replayed trace reproduces its original output bit for bit, and
// any divergence in control flow surfaces as a mismatch instead of a
// silently different value. Not safe for concurrent draws.
type Replaying struct {
	trace Trace
	pos   int
}

// NewReplaying returns a source that replays trace.
func NewReplaying(trace Trace) *Replaying {
	return &Replaying{trace: trace}
}

// Draw pops the next recorded entry, after checking that the request matches
// what was recorded. Exhaustion and mismatches fail; generative randomness
// is never substituted.
func (r *Replaying) Draw(length int, reason string) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: %d for %q", ErrNegativeLength, length, reason)
	}
	if r.pos >= len(r.trace) {
		return nil, fmt.Errorf("%w: draw %d (%d bytes for %q) past the trace end", ErrTraceExhausted, r.pos, length, reason)
	}
	entry := r.trace[r.pos]
	if len(entry.Bytes) != length || entry.Reason != reason {
		return nil, fmt.Errorf("%w at entry %d: recorded %d bytes for %q, requested %d bytes for %q",
			ErrTraceMismatch, r.pos, len(entry.Bytes), entry.Reason, length, reason)
	}
	r.pos++
	return entry.Bytes, nil
}

// Remaining returns how many entries are left to consume.
func (r *Replaying) Remaining() int {
	return len(r.trace) - r.pos
}
