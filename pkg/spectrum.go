package optsim

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/interp"
)

// ControlPoint is one (energy, value) sample of a spectral response curve.
// Energy is in eV.
type ControlPoint struct {
	Energy float64 `json:"energy" yaml:"energy"`
	Value  float64 `json:"value" yaml:"value"`
}

// SpectralResponseCurve is an immutable response curve interpolated with a
// natural cubic spline between its control points. Queries outside the
// control point range are rejected, never extrapolated.
type SpectralResponseCurve struct {
	name      string
	points    []ControlPoint
	predictor interp.Predictor
}

// NewSpectralResponseCurve validates the control points and fits the spline.
func NewSpectralResponseCurve(name string, points []ControlPoint) (*SpectralResponseCurve, error) {
	if len(points) < 2 {
		return nil, &ErrCurveConfig{Curve: name, Err: ErrTooFewPoints}
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		if i > 0 && p.Energy <= points[i-1].Energy {
			return nil, &ErrCurveConfig{Curve: name, Err: fmt.Errorf("%w: point %d at %g eV", ErrNotIncreasing, i, p.Energy)}
		}
		if p.Value < 0 || p.Value > 1 {
			return nil, &ErrCurveConfig{Curve: name, Err: fmt.Errorf("%w: point %d has value %g", ErrValueRange, i, p.Value)}
		}
		xs[i] = p.Energy
		ys[i] = p.Value
	}

	// A natural cubic through two points is the straight line between them.
	var fitter interp.FittablePredictor
	if len(points) == 2 {
		fitter = &interp.PiecewiseLinear{}
	} else {
		fitter = &interp.NaturalCubic{}
	}
	if err := fitter.Fit(xs, ys); err != nil {
		return nil, &ErrCurveConfig{Curve: name, Err: err}
	}

	return &SpectralResponseCurve{
		name:      name,
		points:    slices.Clone(points),
		predictor: fitter,
	}, nil
}

func (c *SpectralResponseCurve) Name() string {
	return c.name
}

// Domain returns the lowest and highest control point energies.
func (c *SpectralResponseCurve) Domain() (float64, float64) {
	return c.points[0].Energy, c.points[len(c.points)-1].Energy
}

func (c *SpectralResponseCurve) Contains(energy float64) bool {
	lo, hi := c.Domain()
	return energy >= lo && energy <= hi
}

// Points returns a copy of the control points.
func (c *SpectralResponseCurve) Points() []ControlPoint {
	return slices.Clone(c.points)
}

// Eval interpolates the curve at energy. The second return value is false
// when energy lies outside the domain. Spline overshoot is clamped to [0, 1].
func (c *SpectralResponseCurve) Eval(energy float64) (float64, bool) {
	if !c.Contains(energy) {
		return 0, false
	}
	return min(max(c.predictor.Predict(energy), 0), 1), true
}
