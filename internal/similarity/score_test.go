package similarity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gesture_lock/internal/motion"
)

func randomTrace(r *rand.Rand) motion.Trace {
	var t motion.Trace
	for i := 0; i < motion.SampleCount; i++ {
		t.Set(i, motion.Sample{
			X: r.Float64()*20 - 10,
			Y: r.Float64()*20 - 10,
			Z: r.Float64()*20 - 10,
		})
	}
	return t
}

func TestWindowMembership(t *testing.T) {
	n := motion.SampleCount
	cases := []struct {
		i      int
		lo, hi int
	}{
		{0, 0, 3},
		{1, 0, 4},
		{2, 0, 5},
		{25, 23, 28},
		{47, 45, 50},
		{n - 2, n - 4, n},
		{n - 1, n - 3, n},
	}
	for _, c := range cases {
		lo, hi := Window(c.i, n)
		assert.Equal(t, c.lo, lo, "lo for index %d", c.i)
		assert.Equal(t, c.hi, hi, "hi for index %d", c.i)
	}

	for i := 0; i < n; i++ {
		lo, hi := Window(i, n)
		size := hi - lo
		switch i {
		case 0, n - 1:
			assert.Equal(t, 3, size, "index %d", i)
		case 1, n - 2:
			assert.Equal(t, 4, size, "index %d", i)
		default:
			assert.Equal(t, 5, size, "index %d", i)
			assert.Equal(t, i-2, lo, "index %d must be centered", i)
		}
	}
}

func TestWindowShortSequenceIsClamped(t *testing.T) {
	lo, hi := Window(0, 2)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 2, hi)
}

func TestSmoothedUsesBoundaryWindows(t *testing.T) {
	xs := make([]float64, motion.SampleCount)
	for i := range xs {
		xs[i] = float64(i)
	}
	assert.InDelta(t, 1.0, Smoothed(xs, 0), 1e-12)  // (0+1+2)/3
	assert.InDelta(t, 1.5, Smoothed(xs, 1), 1e-12)  // (0+1+2+3)/4
	assert.InDelta(t, 10.0, Smoothed(xs, 10), 1e-12) // centered
	assert.InDelta(t, 47.5, Smoothed(xs, 48), 1e-12) // (46+47+48+49)/4
	assert.InDelta(t, 48.0, Smoothed(xs, 49), 1e-12) // (47+48+49)/3
	assert.Equal(t, 0.0, Smoothed(nil, 0))
}

func TestScoreSelfComparisonIsPerfect(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for k := 0; k < 20; k++ {
		tr := randomTrace(r)
		res := Score(tr, tr)
		assert.Equal(t, 0.0, res.TotalDiff)
		assert.Equal(t, 1.0, res.Score)
		assert.True(t, res.Success)
	}
}

func TestScoreAllPointsDiverged(t *testing.T) {
	key := motion.Constant(motion.Sample{X: 1, Y: 1, Z: 1})
	test := motion.Constant(motion.Sample{X: 11, Y: 1, Z: 1})

	res := Score(test, key)
	assert.Equal(t, 0.0, res.Score)
	assert.InDelta(t, 500.0, res.TotalDiff, 1e-9)
	assert.False(t, res.Success)

	for i := 0; i < motion.SampleCount; i++ {
		assert.InDelta(t, 10.0, Distance(&test, &key, i), 1e-9)
	}
}

func TestScoreDivergedFailsEvenWithGenerousTotalCap(t *testing.T) {
	th := DefaultThresholds()
	th.MaxTotalDiff = 1e9
	key := motion.Constant(motion.Sample{})
	test := motion.Constant(motion.Sample{Y: -8})

	res := NewScorer(th).Score(test, key)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Success)
}

func TestScoreIdenticalConstantTraces(t *testing.T) {
	key := motion.Constant(motion.Sample{X: 1, Y: 1, Z: 1})
	res := Score(key, key)
	assert.Equal(t, Result{Score: 1, TotalDiff: 0, Success: true}, res)
}

// The x offset is 2 for indices below 45 and 6 from there on. Smoothing
// leaves indices 0..44 at or below the low tolerance and 45..49 in the
// partial band, so the score is 47.5/50 while the total diff is 45*2+5*6.
func TestScoreRequiresBothGates(t *testing.T) {
	key := motion.Constant(motion.Sample{})
	test := motion.Constant(motion.Sample{})
	for i := 0; i < motion.SampleCount; i++ {
		if i < 45 {
			test.X[i] = 2
		} else {
			test.X[i] = 6
		}
	}

	res := Score(test, key)
	assert.InDelta(t, 0.95, res.Score, 1e-9)
	assert.InDelta(t, 120.0, res.TotalDiff, 1e-9)
	assert.False(t, res.Success, "a high match rate must not pass with a large total diff")

	th := DefaultThresholds()
	th.MaxTotalDiff = 121
	assert.True(t, NewScorer(th).Score(test, key).Success)
}

func TestScoreLowMatchRateFailsWithSmallTotal(t *testing.T) {
	key := motion.Constant(motion.Sample{})
	test := motion.Constant(motion.Sample{Z: 2.1})

	// every point is a full match but the total is 105: passes
	res := Score(test, key)
	assert.InDelta(t, 105.0, res.TotalDiff, 1e-9)
	assert.True(t, res.Success)

	// half credit everywhere with a generous cap: rate gate fails
	th := DefaultThresholds()
	th.MaxTotalDiff = 1000
	test = motion.Constant(motion.Sample{Z: 5})
	res = NewScorer(th).Score(test, key)
	assert.InDelta(t, 0.5, res.Score, 1e-12)
	assert.False(t, res.Success)
}

func TestTotalDiffMonotoneInDivergence(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	key := randomTrace(r)
	var offsets motion.Trace
	for i := 0; i < motion.SampleCount; i++ {
		offsets.Set(i, motion.Sample{X: r.Float64(), Y: r.Float64(), Z: r.Float64()})
	}

	prev := -1.0
	for k := 0; k <= 10; k++ {
		test := key
		for i := 0; i < motion.SampleCount; i++ {
			test.X[i] += float64(k) * offsets.X[i]
			test.Y[i] += float64(k) * offsets.Y[i]
			test.Z[i] += float64(k) * offsets.Z[i]
		}
		res := Score(test, key)
		assert.GreaterOrEqual(t, res.TotalDiff, prev-1e-9, "step %d", k)
		prev = res.TotalDiff
	}

	// growing a single channel at a single sample
	prev = -1.0
	for k := 0; k <= 10; k++ {
		test := key
		test.Y[20] += float64(k)
		res := Score(test, key)
		assert.GreaterOrEqual(t, res.TotalDiff, prev-1e-9, "step %d", k)
		prev = res.TotalDiff
	}
}

func TestCreditBands(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 1.0, th.Credit(0))
	assert.Equal(t, 1.0, th.Credit(4))
	assert.Equal(t, 0.5, th.Credit(4.0001))
	assert.Equal(t, 0.5, th.Credit(7))
	assert.Equal(t, 0.0, th.Credit(7.0001))
}

func TestVerdictIsStrict(t *testing.T) {
	th := DefaultThresholds()
	assert.True(t, th.Verdict(0.91, 109.9))
	assert.False(t, th.Verdict(0.90, 10), "score must be strictly above the threshold")
	assert.False(t, th.Verdict(1.0, 110), "total diff must be strictly below the cap")
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	bad := []Thresholds{
		{ToleranceLow: -1, ToleranceHigh: 7, SuccessThreshold: 0.9, MaxTotalDiff: 110},
		{ToleranceLow: 8, ToleranceHigh: 7, SuccessThreshold: 0.9, MaxTotalDiff: 110},
		{ToleranceLow: 4, ToleranceHigh: 7, SuccessThreshold: 1.5, MaxTotalDiff: 110},
		{ToleranceLow: 4, ToleranceHigh: 7, SuccessThreshold: 0.9, MaxTotalDiff: 0},
	}
	for _, th := range bad {
		assert.Error(t, th.Validate(), "%+v", th)
	}
}
