// Package generator builds random tree-shaped values from a draw source and
// a script catalog, with every decision derived from tagged byte draws so a
// recorded run replays to an identical value.
package generator

import (
	"errors"
	"fmt"
)

// Config bounds one generation session. Constructed once, read-only while
// generating.
type Config struct {
	MaxDepth         uint32   // recursion ceiling; deeper requests resolve to empty terminals
	MaxContainerSize uint32   // exclusive bound on drawn container sizes
	MaxStringLength  uint32   // exclusive bound on drawn text lengths, bytes lengths, and integer widths
	AllowedScripts   []string // scripts text generation may pick from
	ExcludedKinds    []string // kind names removed from the default registry
}

// DefaultConfig returns the bounds used when the caller supplies none.
func DefaultConfig() Config {
	return Config{
		MaxDepth:         4,
		MaxContainerSize: 8,
		MaxStringLength:  16,
		AllowedScripts:   []string{"Latin", "Greek", "Cyrillic"},
	}
}

// Validate rejects bounds that would make a draw untraceable or a pick
// impossible.
func (c Config) Validate() error {
	if c.MaxContainerSize < 1 {
		return fmt.Errorf("max container size must be at least 1, got %d", c.MaxContainerSize)
	}
	// Integer widths draw from [1, MaxStringLength); a bound below 2 would
	// skip the draw entirely and desynchronize traces.
	if c.MaxStringLength < 2 {
		return fmt.Errorf("max string length must be at least 2, got %d", c.MaxStringLength)
	}
	if len(c.AllowedScripts) == 0 {
		return errors.New("at least one allowed script is required")
	}
	return nil
}
