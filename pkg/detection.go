package optsim

import "slices"

// PhotonDetectionModel decides whether an optical photon reaching a sensor
// produces a detected hit. The combined efficiency is the product of all its
// curves; a photon outside any curve's domain has efficiency 0.
//
// Curves are shared read only between copies made with WithSource. The random
// source is not safe for concurrent use, so every worker owns its own model.
type PhotonDetectionModel struct {
	curves []*SpectralResponseCurve
	src    UniformSource
}

func NewPhotonDetectionModel(src UniformSource, curves ...*SpectralResponseCurve) (*PhotonDetectionModel, error) {
	if len(curves) == 0 {
		return nil, ErrNoCurves
	}
	for _, c := range curves {
		if c == nil {
			return nil, ErrNoCurves
		}
	}
	return &PhotonDetectionModel{
		curves: slices.Clone(curves),
		src:    src,
	}, nil
}

// WithSource returns a model sharing the same curves but drawing from src.
func (m *PhotonDetectionModel) WithSource(src UniformSource) *PhotonDetectionModel {
	return &PhotonDetectionModel{curves: m.curves, src: src}
}

func (m *PhotonDetectionModel) Curves() []*SpectralResponseCurve {
	return slices.Clone(m.curves)
}

// Efficiency returns the combined detection probability at energy (eV).
func (m *PhotonDetectionModel) Efficiency(energy float64) float64 {
	eff := 1.0
	for _, c := range m.curves {
		v, ok := c.Eval(energy)
		if !ok {
			return 0
		}
		eff *= v
	}
	return eff
}

// Detect consumes exactly one uniform draw, whatever the efficiency, so the
// stream position after N photons does not depend on their energies.
func (m *PhotonDetectionModel) Detect(energy float64) bool {
	eff := m.Efficiency(energy)
	u := m.src.Float64()
	return u < eff
}
