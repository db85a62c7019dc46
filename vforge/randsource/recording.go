package randsource

import (
	"log/slog"
)

// Recording wraps another source and logs every draw, bytes and reason, in
// order. The accumulated trace replays the run exactly. Not safe for
// concurrent draws: trace order is the whole point, so each concurrent
// generator needs its own Recording instance.
type Recording struct {
	inner Source
	trace Trace
}

// NewRecording wraps inner, a generative source when nil.
func NewRecording(inner Source) *Recording {
	if inner == nil {
		inner = NewGenerative()
	}
	return &Recording{inner: inner}
}

// Draw forwards to the wrapped source and appends the result to the trace.
// Zero-length draws are recorded too; replay checks every call site.
func (r *Recording) Draw(length int, reason string) ([]byte, error) {
	buf, err := r.inner.Draw(length, reason)
	if err != nil {
		return nil, err
	}
	recorded := make([]byte, len(buf))
	copy(recorded, buf)
	r.trace = append(r.trace, Entry{Bytes: recorded, Reason: reason})
	return buf, nil
}

// Trace returns a copy of the draw log accumulated so far.
func (r *Recording) Trace() Trace {
	out := make(Trace, len(r.trace))
	copy(out, r.trace)
	return out
}

// Len returns the number of recorded draws.
func (r *Recording) Len() int {
	return len(r.trace)
}

// Reset drops the accumulated trace, keeping the wrapped source.
func (r *Recording) Reset() {
	slog.Debug("Recording trace reset", "dropped_entries", len(r.trace))
	r.trace = nil
}
