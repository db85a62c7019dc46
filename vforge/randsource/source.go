// Package randsource supplies the byte-draw contract behind value
// generation: a generative source, a recording wrapper, and a replaying
// source that consumes a recorded trace, plus the derived numeric helpers
// every generator decision goes through.
package randsource

import (
	"errors"
)

// Source hands out length random bytes tagged with the caller's reason. The
// reason string names the decision being made; generative sources treat it
// as diagnostic, while the record/replay pair uses it to pin the draw
// sequence down exactly.
type Source interface {
	Draw(length int, reason string) ([]byte, error)
}

var (
	// ErrTraceExhausted reports a replay draw after the trace ran out.
	ErrTraceExhausted = errors.New("replay trace exhausted")

	// ErrTraceMismatch reports a replay draw whose length or reason differs
	// from the recorded entry. Generation diverged from the recorded run;
	// the draw is refused rather than silently regenerated.
	ErrTraceMismatch = errors.New("replay trace mismatch")

	// ErrNegativeLength reports a draw with a negative length.
	ErrNegativeLength = errors.New("negative draw length")
)
