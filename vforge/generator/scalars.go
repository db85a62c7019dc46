package generator

import (
	"fmt"
	"math/big"
)

// genNull draws nothing.
func (g *Generator) genNull(depth uint32) (any, error) {
	return nil, nil
}

func (g *Generator) genBoolean(depth uint32) (any, error) {
	v, err := g.draws.Bool(ReasonBoolean)
	if err != nil {
		return nil, fmt.Errorf("failed to draw boolean: %w", err)
	}
	return v, nil
}

// genInteger produces a signed arbitrary-precision integer: a width in
// [1, MaxStringLength), that many magnitude bytes, then a sign bit.
func (g *Generator) genInteger(depth uint32) (any, error) {
	n, err := g.draws.UniformIndex(g.config.MaxStringLength-1, ReasonIntegerLength)
	if err != nil {
		return nil, fmt.Errorf("failed to draw integer width: %w", err)
	}
	mag, err := g.draws.Draw(int(n)+1, ReasonIntegerMagnitude)
	if err != nil {
		return nil, fmt.Errorf("failed to draw integer magnitude: %w", err)
	}
	neg, err := g.draws.Bool(ReasonIntegerSign)
	if err != nil {
		return nil, fmt.Errorf("failed to draw integer sign: %w", err)
	}
	v := new(big.Int).SetBytes(mag)
	if neg {
		v.Neg(v)
	}
	return v, nil
}

// genFloat produces a uniform deviate in [0, 1).
func (g *Generator) genFloat(depth uint32) (any, error) {
	v, err := g.draws.UnitInterval(ReasonFloat)
	if err != nil {
		return nil, fmt.Errorf("failed to draw float: %w", err)
	}
	return v, nil
}

// genGaussian produces a standard normal deviate.
func (g *Generator) genGaussian(depth uint32) (any, error) {
	v, err := g.draws.Gaussian(0, 1, ReasonGaussian)
	if err != nil {
		return nil, fmt.Errorf("failed to draw gaussian: %w", err)
	}
	return v, nil
}

// genBytes produces a byte string of length [0, MaxStringLength).
func (g *Generator) genBytes(depth uint32) (any, error) {
	n, err := g.draws.UniformIndex(g.config.MaxStringLength, ReasonBytesLength)
	if err != nil {
		return nil, fmt.Errorf("failed to draw bytes length: %w", err)
	}
	data, err := g.draws.Draw(int(n), ReasonBytesData)
	if err != nil {
		return nil, fmt.Errorf("failed to draw bytes data: %w", err)
	}
	return data, nil
}
