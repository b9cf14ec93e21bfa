package optsim

// Response tables of the SAC photomultipliers, energies in eV.

const (
	CurvePmtQE     = "pmt_qe"
	CurvePmtWindow = "pmt_window"
	CurveMppcQE    = "mppc_qe"
)

var pmtQEEnergies = []float64{
	1.5, 1.8, 1.83, 1.86, 1.89, 1.92, 1.95, 1.98, 2.01, 2.04,
	2.07, 2.10, 2.13, 2.16, 2.19, 2.22, 2.25, 2.28, 2.31, 2.34,
	2.37, 2.40, 2.43, 2.46, 2.49, 2.52, 2.55, 2.58, 2.61, 2.64,
	2.67, 2.70, 2.73, 2.76, 2.79, 2.82, 2.85, 2.88, 2.91, 2.97,
	3.00, 3.03, 3.06, 3.09, 3.12, 3.18, 3.21, 3.24, 3.36, 3.39,
	3.42, 3.48, 3.51, 3.54, 3.60, 3.63, 3.66, 3.72, 3.75, 3.81,
	3.84, 3.90, 3.93, 3.99, 4.02, 4.08, 4.11, 4.17, 4.23, 4.26,
	4.32, 4.35, 4.41,
}

var pmtQEValues = []float64{
	0.0007, 0.0017, 0.0024, 0.0057, 0.0081, 0.0106, 0.0156, 0.0205, 0.0253, 0.0358,
	0.0431, 0.0505, 0.0578, 0.0745, 0.0838, 0.0912, 0.0985, 0.1071, 0.1243, 0.1329,
	0.1427, 0.1526, 0.1619, 0.1712, 0.1784, 0.1855, 0.1933, 0.2011, 0.2108, 0.2205,
	0.2284, 0.2363, 0.2418, 0.2474, 0.2518, 0.2561, 0.2603, 0.2645, 0.2663, 0.2682,
	0.2697, 0.2713, 0.2719, 0.2725, 0.2744, 0.2763, 0.2770, 0.2776, 0.2744, 0.2713,
	0.2682, 0.2651, 0.2621, 0.2591, 0.2532, 0.2474, 0.2365, 0.2256, 0.2134, 0.2011,
	0.1923, 0.1834, 0.1698, 0.1561, 0.1415, 0.1269, 0.1116, 0.0963, 0.0792, 0.0621,
	0.0398, 0.0175, 0.0000,
}

var pmtWindowEnergies = []float64{
	1.5000, 3.1246, 3.1754, 3.2008, 3.2262, 3.3531, 3.3785, 3.4292, 3.4800, 3.5054,
	3.5562, 3.5815, 3.6323, 3.6831, 3.7085, 3.7592, 3.8100, 3.8354, 3.8862, 3.9369,
	3.9877, 4.0131, 4.0638, 4.1146, 4.1654, 4.2162, 4.2669, 4.3177, 4.3685, 4.4192,
	4.4700, 4.5208, 4.5715, 4.6223, 4.6731, 4.6985,
}

var pmtWindowValues = []float64{
	0.9950, 0.9441, 0.9333, 0.9226, 0.9120, 0.8915, 0.8710, 0.8611, 0.8511, 0.8415,
	0.8318, 0.8130, 0.7943, 0.7678, 0.7413, 0.7246, 0.7079, 0.6843, 0.6607, 0.6316,
	0.6026, 0.5698, 0.5370, 0.5024, 0.4677, 0.4284, 0.3890, 0.3490, 0.3090, 0.2745,
	0.2399, 0.1992, 0.1585, 0.1094, 0.0603, 0.0000,
}

func zipPoints(energies, values []float64) []ControlPoint {
	points := make([]ControlPoint, len(energies))
	for i := range energies {
		points[i] = ControlPoint{Energy: energies[i], Value: values[i]}
	}
	return points
}

// DefaultPmtQE is the photocathode quantum efficiency of the SAC PMTs.
func DefaultPmtQE() *SpectralResponseCurve {
	c, err := NewSpectralResponseCurve(CurvePmtQE, zipPoints(pmtQEEnergies, pmtQEValues))
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultPmtWindow is the transmittance of the SAC PMT entrance window.
func DefaultPmtWindow() *SpectralResponseCurve {
	c, err := NewSpectralResponseCurve(CurvePmtWindow, zipPoints(pmtWindowEnergies, pmtWindowValues))
	if err != nil {
		panic(err)
	}
	return c
}
