package randsource

import (
	crand "crypto/rand"
	"fmt"
)

// Generative draws cryptographically strong bytes. Stateless; one instance
// can serve any number of callers.
type Generative struct{}

// NewGenerative returns a generative source.
func NewGenerative() *Generative {
	return &Generative{}
}

// Draw returns length fresh random bytes. The reason is diagnostic only.
func (g *Generative) Draw(length int, reason string) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: %d for %q", ErrNegativeLength, length, reason)
	}
	buf := make([]byte, length)
	if _, err := crand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to draw %d bytes for %q: %w", length, reason, err)
	}
	return buf, nil
}
