package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	optsim "github.com/next-exp/opticalsim_go/pkg"
	"github.com/stretchr/testify/require"
)

// stepDump writes n events with photons arrivals each on the SAC PMTs.
func stepDump(t *testing.T, n, photons int) []byte {
	t.Helper()
	layout := optsim.NewSACLayout(3.0)
	copies := layout.Copies()

	var buf bytes.Buffer
	w := optsim.NewStepWriter(&buf)
	for i := range n {
		event := &optsim.StepEvent{
			EventID: i,
			Primary: &optsim.Primary{EventID: i, PDG: 211, Energy: 0.75},
			Tracks:  []optsim.NewTrack{{EventID: i, Process: optsim.ProcessCerenkov, Volume: "KvcPV"}},
		}
		for j := range photons {
			p, _ := layout.Placement(copies[(i+j)%len(copies)])
			event.Arrivals = append(event.Arrivals, optsim.PhotonStep{
				EventID:  i,
				Detector: optsim.DetectorPMT,
				Copy:     p.Copy,
				PDG:      optsim.OpticalPhotonPDG,
				Energy:   1.8 + 2.4*float64(j)/float64(photons),
				Position: p.Position,
				Time:     float64(j),
			})
		}
		require.NoError(t, w.WriteEvent(event))
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, data, 0o644))
	return filename
}

func testConfiguration() optsim.Configuration {
	config := optsim.DefaultConfiguration()
	config.Seed = 20240611
	config.WriteData = false
	return config
}
