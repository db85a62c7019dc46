package randsource

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrEmptyPick reports a pick from an empty sequence. Programmer error at
// the call site, failed immediately instead of returning a degenerate value.
var ErrEmptyPick = errors.New("pick from empty sequence")

// Draws layers the derived numeric helpers over a raw byte source. Keep one
// instance per source: the cached Gaussian spare deviate belongs to the
// underlying draw stream, not to any particular mean and deviation.
type Draws struct {
	src       Source
	spare     float64
	haveSpare bool
}

// NewDraws wraps src.
func NewDraws(src Source) *Draws {
	return &Draws{src: src}
}

// Source returns the active byte source.
func (d *Draws) Source() Source {
	return d.src
}

// SetSource swaps the active byte source, switching between generative,
// recording, and replaying without touching generation logic. The Gaussian
// spare is dropped: it belongs to the previous draw stream.
func (d *Draws) SetSource(src Source) {
	d.src = src
	d.haveSpare = false
	d.spare = 0
}

// Draw forwards to the active source.
func (d *Draws) Draw(length int, reason string) ([]byte, error) {
	return d.src.Draw(length, reason)
}

// Uint32 interprets 4 drawn bytes as a big-endian unsigned integer.
func (d *Draws) Uint32(reason string) (uint32, error) {
	buf, err := d.src.Draw(4, reason)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// UniformIndex returns a draw-derived index in [0, bound). A zero bound
// short-circuits to 0 without drawing, so callers that must stay traceable
// cannot pass one. The result is Uint32 mod bound, which is slightly biased
// toward low values when bound does not divide 2^32; the bias is kept so
// previously recorded traces keep replaying to the same indices.
func (d *Draws) UniformIndex(bound uint32, reason string) (uint32, error) {
	if bound == 0 {
		return 0, nil
	}
	v, err := d.Uint32(reason)
	if err != nil {
		return 0, err
	}
	return v % bound, nil
}

// PickFrom returns a uniformly drawn element of seq.
func PickFrom[T any](d *Draws, seq []T, reason string) (T, error) {
	var zero T
	if len(seq) == 0 {
		return zero, fmt.Errorf("%w for %q", ErrEmptyPick, reason)
	}
	i, err := d.UniformIndex(uint32(len(seq)), reason)
	if err != nil {
		return zero, err
	}
	return seq[i], nil
}

// Bool draws one byte and returns its low bit.
func (d *Draws) Bool(reason string) (bool, error) {
	buf, err := d.src.Draw(1, reason)
	if err != nil {
		return false, err
	}
	return buf[0]&1 == 1, nil
}

// UnitInterval returns a uniform float64 in [0, 1). Eight drawn bytes are
// reinterpreted as a double with the sign forced positive and the exponent
// forced to the [1, 2) binade, then shifted down by 1. The mantissa carries
// all the entropy, so no subnormal values and no wasted high bits.
func (d *Draws) UnitInterval(reason string) (float64, error) {
	buf, err := d.src.Draw(8, reason)
	if err != nil {
		return 0, err
	}
	u := binary.BigEndian.Uint64(buf)
	u = u&0x000FFFFFFFFFFFFF | 0x3FF0000000000000
	return math.Float64frombits(u) - 1.0, nil
}

// Gaussian returns a normal deviate with the given mean and standard
// deviation, by the polar Box-Muller method: pairs of unit draws are mapped
// to [-1, 1), pairs with squared radius zero or >= 1 are rejected, and the
// second deviate of an accepted pair is cached for the next call. The spare
// is scaled at use time, so interleaved calls with different parameters
// still consume one accepted pair per two deviates.
func (d *Draws) Gaussian(mean, stdDev float64, reason string) (float64, error) {
	if d.haveSpare {
		d.haveSpare = false
		return mean + stdDev*d.spare, nil
	}
	for {
		u, err := d.UnitInterval(reason)
		if err != nil {
			return 0, err
		}
		v, err := d.UnitInterval(reason)
		if err != nil {
			return 0, err
		}
		x := 2*u - 1
		y := 2*v - 1
		s := x*x + y*y
		if s >= 1 || s == 0 {
			continue
		}
		factor := math.Sqrt(-2 * math.Log(s) / s)
		d.spare = y * factor
		d.haveSpare = true
		return mean + stdDev*x*factor, nil
	}
}
