package optsim

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurveFile is the on-disk form of a response curve:
//
//	name: pmt_qe
//	unit: nm
//	points:
//	  - [300, 0.25]
//	  - [400, 0.27]
type CurveFile struct {
	Name   string      `yaml:"name"`
	Unit   string      `yaml:"unit"`
	Points [][]float64 `yaml:"points"`
}

// ControlPoints converts the file rows into energy ordered control points.
// Wavelength rows are converted with E = hc/lambda. Rows are sorted by energy.
func (f CurveFile) ControlPoints() ([]ControlPoint, error) {
	points := make([]ControlPoint, 0, len(f.Points))
	for i, row := range f.Points {
		if len(row) != 2 {
			return nil, fmt.Errorf("point %d has %d columns, want 2", i, len(row))
		}
		x, v := row[0], row[1]
		switch strings.ToLower(f.Unit) {
		case "", "ev":
		case "nm":
			if x <= 0 {
				return nil, fmt.Errorf("point %d has non positive wavelength %g", i, x)
			}
			x = hcEVnm / x
		default:
			return nil, fmt.Errorf("unknown unit %q", f.Unit)
		}
		points = append(points, ControlPoint{Energy: x, Value: v})
	}
	// Rows may come in either wavelength order. Equal energies are left for
	// the curve constructor to reject.
	slices.SortStableFunc(points, func(a, b ControlPoint) int {
		return cmp.Compare(a.Energy, b.Energy)
	})
	return points, nil
}

// LoadCurveFile reads a YAML curve file. When the file has no name the
// fallback name is used.
func LoadCurveFile(filename, fallback string) (*SpectralResponseCurve, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	var f CurveFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ErrCurveConfig{Curve: filename, Err: err}
	}
	if f.Name == "" {
		f.Name = fallback
	}
	points, err := f.ControlPoints()
	if err != nil {
		return nil, &ErrCurveConfig{Curve: f.Name, Err: err}
	}
	return NewSpectralResponseCurve(f.Name, points)
}

// CurveSet maps curve names to curves.
type CurveSet map[string]*SpectralResponseCurve

// DefaultCurves holds the built-in PMT curves. There is no built-in MPPC curve.
func DefaultCurves() CurveSet {
	return CurveSet{
		CurvePmtQE:     DefaultPmtQE(),
		CurvePmtWindow: DefaultPmtWindow(),
	}
}

// Override replaces curves in s with those in other.
func (s CurveSet) Override(other CurveSet) {
	for name, c := range other {
		s[name] = c
	}
}

// LoadCurveFiles overrides the curves named in the configuration with the
// contents of their files.
func (s CurveSet) LoadCurveFiles(config Configuration, logger Logger) error {
	logger = loggerOrNop(logger)
	files := []struct{ name, path string }{
		{CurvePmtQE, config.PmtQEFile},
		{CurvePmtWindow, config.PmtWindowFile},
		{CurveMppcQE, config.MppcQEFile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		c, err := LoadCurveFile(f.path, f.name)
		if err != nil {
			return err
		}
		lo, hi := c.Domain()
		logger.Info(fmt.Sprintf("Curve %s from %s: %d points, %.3f-%.3f eV", f.name, f.path, len(c.points), lo, hi), "curves")
		s[f.name] = c
	}
	return nil
}
