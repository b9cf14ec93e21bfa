package optsim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(t *testing.T) *SpectralResponseCurve {
	t.Helper()
	c, err := NewSpectralResponseCurve("triangle", []ControlPoint{{1, 0}, {2, 0.5}, {3, 0}})
	require.NoError(t, err)
	return c
}

func TestCurveRejectsBadControlPoints(t *testing.T) {
	cases := []struct {
		name   string
		points []ControlPoint
		want   error
	}{
		{"empty", nil, ErrTooFewPoints},
		{"single", []ControlPoint{{2, 0.5}}, ErrTooFewPoints},
		{"decreasing", []ControlPoint{{2, 0.1}, {1, 0.2}}, ErrNotIncreasing},
		{"repeated", []ControlPoint{{1, 0.1}, {1, 0.2}}, ErrNotIncreasing},
		{"above one", []ControlPoint{{1, 0.1}, {2, 1.2}}, ErrValueRange},
		{"negative", []ControlPoint{{1, -0.1}, {2, 0.2}}, ErrValueRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSpectralResponseCurve(tc.name, tc.points)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var cfgErr *ErrCurveConfig
			assert.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.name, cfgErr.Curve)
		})
	}
}

func TestCurveHitsControlPoints(t *testing.T) {
	c := triangle(t)
	for _, p := range []ControlPoint{{1, 0}, {2, 0.5}, {3, 0}} {
		v, ok := c.Eval(p.Energy)
		require.True(t, ok)
		assert.InDelta(t, p.Value, v, 1e-12)
	}
}

func TestCurveContinuousAtDomainEdges(t *testing.T) {
	c := triangle(t)
	lo, hi := c.Domain()

	vlo, ok := c.Eval(lo)
	require.True(t, ok)
	vin, ok := c.Eval(lo + 1e-9)
	require.True(t, ok)
	assert.InDelta(t, vlo, vin, 1e-6)

	vhi, ok := c.Eval(hi)
	require.True(t, ok)
	vin, ok = c.Eval(hi - 1e-9)
	require.True(t, ok)
	assert.InDelta(t, vhi, vin, 1e-6)
}

func TestCurveOutsideDomain(t *testing.T) {
	c := triangle(t)
	for _, e := range []float64{0.5, 0.999, 3.0001, 3.5} {
		v, ok := c.Eval(e)
		assert.False(t, ok, "energy %g", e)
		assert.Zero(t, v)
	}
}

func TestCurveTwoPointsIsLinear(t *testing.T) {
	c, err := NewSpectralResponseCurve("line", []ControlPoint{{1, 0.2}, {3, 0.6}})
	require.NoError(t, err)

	v, ok := c.Eval(2)
	require.True(t, ok)
	assert.InDelta(t, 0.4, v, 1e-12)
}

func TestCurveClampedToUnitInterval(t *testing.T) {
	// A sharp edge makes the natural spline overshoot between knots.
	c, err := NewSpectralResponseCurve("edge", []ControlPoint{{1, 0}, {1.1, 1}, {1.2, 1}, {3, 1}, {3.1, 0}})
	require.NoError(t, err)
	for e := 1.0; e <= 3.1; e += 0.01 {
		v, ok := c.Eval(e)
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestDefaultPmtCurves(t *testing.T) {
	qe := DefaultPmtQE()
	lo, hi := qe.Domain()
	assert.Equal(t, 1.5, lo)
	assert.Equal(t, 4.41, hi)
	assert.Len(t, qe.Points(), 73)

	window := DefaultPmtWindow()
	lo, hi = window.Domain()
	assert.Equal(t, 1.5, lo)
	assert.Equal(t, 4.6985, hi)
	assert.Len(t, window.Points(), 36)

	v, ok := qe.Eval(3.24)
	require.True(t, ok)
	assert.InDelta(t, 0.2776, v, 1e-9)
}

func TestWavelength(t *testing.T) {
	assert.InDelta(t, 413.28066, Wavelength(3.0), 1e-5)
	assert.InDelta(t, 1239.84198, Wavelength(1.0), 1e-12)
}
