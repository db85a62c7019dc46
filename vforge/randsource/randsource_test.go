package randsource

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// countingSource counts draws on the way through.
type countingSource struct {
	inner Source
	calls int
}

func (c *countingSource) Draw(length int, reason string) ([]byte, error) {
	c.calls++
	return c.inner.Draw(length, reason)
}

func TestGenerativeDraw(t *testing.T) {
	g := NewGenerative()

	buf, err := g.Draw(16, "entropy")
	require.NoError(t, err)
	assert.Len(t, buf, 16)

	empty, err := g.Draw(0, "nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = g.Draw(-1, "negative")
	assert.ErrorIs(t, err, ErrNegativeLength)
}

func TestRecordReplayScenario(t *testing.T) {
	rec := NewRecording(nil)
	a, err := rec.Draw(4, "a")
	require.NoError(t, err)
	b, err := rec.Draw(2, "b")
	require.NoError(t, err)

	trace := rec.Trace()
	require.Len(t, trace, 2)
	assert.Equal(t, Entry{Bytes: a, Reason: "a"}, trace[0])
	assert.Equal(t, Entry{Bytes: b, Reason: "b"}, trace[1])

	t.Run("same sequence replays the same bytes", func(t *testing.T) {
		rep := NewReplaying(trace)
		gotA, err := rep.Draw(4, "a")
		require.NoError(t, err)
		gotB, err := rep.Draw(2, "b")
		require.NoError(t, err)
		assert.Equal(t, a, gotA)
		assert.Equal(t, b, gotB)
		assert.Zero(t, rep.Remaining())
	})

	t.Run("wrong first request is a mismatch", func(t *testing.T) {
		rep := NewReplaying(trace)
		_, err := rep.Draw(2, "a")
		assert.ErrorIs(t, err, ErrTraceMismatch)
	})
}

func TestReplayingFailures(t *testing.T) {
	rec := NewRecording(nil)
	_, err := rec.Draw(3, "x")
	require.NoError(t, err)
	_, err = rec.Draw(5, "y")
	require.NoError(t, err)
	trace := rec.Trace()

	t.Run("drawing past the end is exhaustion", func(t *testing.T) {
		rep := NewReplaying(trace)
		_, err := rep.Draw(3, "x")
		require.NoError(t, err)
		_, err = rep.Draw(5, "y")
		require.NoError(t, err)
		_, err = rep.Draw(1, "z")
		assert.ErrorIs(t, err, ErrTraceExhausted)
	})

	t.Run("truncated trace exhausts early", func(t *testing.T) {
		rep := NewReplaying(trace[:1])
		_, err := rep.Draw(3, "x")
		require.NoError(t, err)
		_, err = rep.Draw(5, "y")
		assert.ErrorIs(t, err, ErrTraceExhausted)
	})

	t.Run("altered reason is a mismatch", func(t *testing.T) {
		altered := make(Trace, len(trace))
		copy(altered, trace)
		altered[1] = Entry{Bytes: altered[1].Bytes, Reason: "not-y"}
		rep := NewReplaying(altered)
		_, err := rep.Draw(3, "x")
		require.NoError(t, err)
		_, err = rep.Draw(5, "y")
		assert.ErrorIs(t, err, ErrTraceMismatch)
	})

	t.Run("altered length is a mismatch", func(t *testing.T) {
		rep := NewReplaying(trace)
		_, err := rep.Draw(4, "x")
		assert.ErrorIs(t, err, ErrTraceMismatch)
	})
}

func TestRecordingLifecycle(t *testing.T) {
	rec := NewRecording(nil)
	_, err := rec.Draw(0, "empty")
	require.NoError(t, err)
	_, err = rec.Draw(8, "bytes")
	require.NoError(t, err)

	// Zero-length draws are trace entries too.
	assert.Equal(t, 2, rec.Len())

	// The returned trace is a snapshot, not a live view.
	snapshot := rec.Trace()
	_, err = rec.Draw(1, "more")
	require.NoError(t, err)
	assert.Len(t, snapshot, 2)
	assert.Equal(t, 3, rec.Len())

	rec.Reset()
	assert.Zero(t, rec.Len())
}

func TestTraceJSONRoundTrip(t *testing.T) {
	rec := NewRecording(nil)
	_, err := rec.Draw(4, "a")
	require.NoError(t, err)
	_, err = rec.Draw(0, "empty")
	require.NoError(t, err)
	_, err = rec.Draw(9, "b")
	require.NoError(t, err)
	trace := rec.Trace()

	var buf bytes.Buffer
	require.NoError(t, EncodeTrace(&buf, trace))
	decoded, err := DecodeTrace(&buf)
	require.NoError(t, err)
	assert.Equal(t, trace, decoded)
}

func TestUint32BigEndian(t *testing.T) {
	d := NewDraws(NewReplaying(Trace{{Bytes: []byte{0x01, 0x02, 0x03, 0x04}, Reason: "n"}}))
	v, err := d.Uint32("n")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)
}

func TestUniformIndexZeroBoundDrawsNothing(t *testing.T) {
	src := &countingSource{inner: NewGenerative()}
	d := NewDraws(src)
	v, err := d.UniformIndex(0, "none")
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.Zero(t, src.calls)
}

func TestUniformIndexModulo(t *testing.T) {
	d := NewDraws(NewReplaying(Trace{{Bytes: []byte{0, 0, 0, 7}, Reason: "idx"}}))
	v, err := d.UniformIndex(5, "idx")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v)
}

func TestPickFrom(t *testing.T) {
	t.Run("empty sequence is a precondition failure", func(t *testing.T) {
		d := NewDraws(NewGenerative())
		_, err := PickFrom(d, []string(nil), "pick")
		assert.ErrorIs(t, err, ErrEmptyPick)
	})

	t.Run("returns the element at the drawn index", func(t *testing.T) {
		d := NewDraws(NewReplaying(Trace{{Bytes: []byte{0, 0, 0, 7}, Reason: "pick"}}))
		got, err := PickFrom(d, []string{"a", "b", "c", "d", "e"}, "pick")
		require.NoError(t, err)
		assert.Equal(t, "c", got)
	})
}

func TestBoolUsesLowBit(t *testing.T) {
	d := NewDraws(NewReplaying(Trace{
		{Bytes: []byte{0x02}, Reason: "flag"},
		{Bytes: []byte{0x03}, Reason: "flag"},
	}))
	v, err := d.Bool("flag")
	require.NoError(t, err)
	assert.False(t, v)
	v, err = d.Bool("flag")
	require.NoError(t, err)
	assert.True(t, v)
}

func TestUnitIntervalEdges(t *testing.T) {
	d := NewDraws(NewReplaying(Trace{
		{Bytes: make([]byte, 8), Reason: "u"},
		{Bytes: bytes.Repeat([]byte{0xFF}, 8), Reason: "u"},
	}))

	lo, err := d.UnitInterval("u")
	require.NoError(t, err)
	assert.Zero(t, lo)

	hi, err := d.UnitInterval("u")
	require.NoError(t, err)
	assert.Greater(t, hi, 0.999)
	assert.Less(t, hi, 1.0)
}

func TestUniformIndexDistribution(t *testing.T) {
	d := NewDraws(NewGenerative())
	const (
		samples = 20000
		bound   = 10
	)
	counts := make([]int, bound)
	values := make([]float64, 0, samples)
	for i := 0; i < samples; i++ {
		v, err := d.UniformIndex(bound, "uniformity")
		require.NoError(t, err)
		require.Less(t, v, uint32(bound))
		counts[v]++
		values = append(values, float64(v))
	}

	// Buckets within five sigma of the binomial expectation; the residual
	// modulo bias at this bound is far below that.
	expected := float64(samples) / bound
	sigma := math.Sqrt(float64(samples) * (1.0 / bound) * (1 - 1.0/bound))
	for idx, n := range counts {
		assert.InDelta(t, expected, float64(n), 5*sigma, "bucket %d", idx)
	}
	assert.InDelta(t, float64(bound-1)/2, stat.Mean(values, nil), 0.15)
}

func TestUnitIntervalDistribution(t *testing.T) {
	d := NewDraws(NewGenerative())
	const samples = 20000
	values := make([]float64, samples)
	for i := range values {
		v, err := d.UnitInterval("unit")
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
		values[i] = v
	}
	assert.InDelta(t, 0.5, stat.Mean(values, nil), 0.02)
}

func TestGaussianDistribution(t *testing.T) {
	d := NewDraws(NewGenerative())
	const samples = 20000
	values := make([]float64, samples)
	for i := range values {
		v, err := d.Gaussian(3, 2, "gauss")
		require.NoError(t, err)
		values[i] = v
	}
	mean, std := stat.MeanStdDev(values, nil)
	assert.InDelta(t, 3.0, mean, 0.1)
	assert.InDelta(t, 2.0, std, 0.1)
}

// acceptedPair is a replay trace whose two unit draws map to x = 0.5,
// y = -0.5: squared radius 0.5, accepted on the first try.
func acceptedPair(reason string) Trace {
	return Trace{
		{Bytes: []byte{0x00, 0x0C, 0, 0, 0, 0, 0, 0}, Reason: reason}, // 0.75
		{Bytes: []byte{0x00, 0x04, 0, 0, 0, 0, 0, 0}, Reason: reason}, // 0.25
	}
}

func TestGaussianCachesTheSpareDeviate(t *testing.T) {
	rep := NewReplaying(acceptedPair("g"))
	d := NewDraws(rep)

	first, err := d.Gaussian(0, 1, "g")
	require.NoError(t, err)
	assert.Zero(t, rep.Remaining(), "one accepted pair serves two deviates")

	second, err := d.Gaussian(0, 1, "g")
	require.NoError(t, err)

	factor := math.Sqrt(-2 * math.Log(0.5) / 0.5)
	assert.InDelta(t, 0.5*factor, first, 1e-12)
	assert.InDelta(t, -0.5*factor, second, 1e-12)
}

func TestGaussianSpareScalesPerCall(t *testing.T) {
	d := NewDraws(NewReplaying(acceptedPair("g")))

	first, err := d.Gaussian(10, 3, "g")
	require.NoError(t, err)
	second, err := d.Gaussian(-2, 0.5, "g")
	require.NoError(t, err)

	factor := math.Sqrt(-2 * math.Log(0.5) / 0.5)
	assert.InDelta(t, 10+3*0.5*factor, first, 1e-12)
	assert.InDelta(t, -2+0.5*-0.5*factor, second, 1e-12)
}

func TestSetSourceDropsTheSpare(t *testing.T) {
	d := NewDraws(NewReplaying(acceptedPair("g")))
	_, err := d.Gaussian(0, 1, "g")
	require.NoError(t, err)

	fresh := NewReplaying(acceptedPair("g"))
	d.SetSource(fresh)

	v, err := d.Gaussian(0, 1, "g")
	require.NoError(t, err)
	assert.Zero(t, fresh.Remaining(), "a fresh source means a fresh pair, not the stale spare")

	factor := math.Sqrt(-2 * math.Log(0.5) / 0.5)
	assert.InDelta(t, 0.5*factor, v, 1e-12)
}

func TestHelpersRoundTrip(t *testing.T) {
	run := func(t *testing.T, d *Draws) []any {
		t.Helper()
		var out []any
		u, err := d.Uint32("u32")
		require.NoError(t, err)
		idx, err := d.UniformIndex(37, "idx")
		require.NoError(t, err)
		pick, err := PickFrom(d, []string{"x", "y", "z"}, "pick")
		require.NoError(t, err)
		unit, err := d.UnitInterval("unit")
		require.NoError(t, err)
		gauss, err := d.Gaussian(5, 3, "gauss")
		require.NoError(t, err)
		flag, err := d.Bool("flag")
		require.NoError(t, err)
		raw, err := d.Draw(16, "blob")
		require.NoError(t, err)
		return append(out, u, idx, pick, unit, gauss, flag, raw)
	}

	rec := NewRecording(nil)
	recorded := run(t, NewDraws(rec))
	replayed := run(t, NewDraws(NewReplaying(rec.Trace())))
	assert.Equal(t, recorded, replayed)
}
