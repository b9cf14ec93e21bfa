package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	optsim "github.com/next-exp/opticalsim_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDump(t *testing.T, dir string, n, photons int) string {
	t.Helper()
	layout := optsim.NewSACLayout(3.0)
	copies := layout.Copies()

	var buf bytes.Buffer
	w := optsim.NewStepWriter(&buf)
	for i := range n {
		event := &optsim.StepEvent{EventID: i}
		for j := range photons {
			p, _ := layout.Placement(copies[j%len(copies)])
			event.Arrivals = append(event.Arrivals, optsim.PhotonStep{
				EventID: i, Detector: optsim.DetectorPMT, Copy: p.Copy, PDG: optsim.OpticalPhotonPDG,
				Energy: 2.0 + float64(j%20)*0.1, Position: p.Position, Time: float64(j),
			})
		}
		require.NoError(t, w.WriteEvent(event))
	}
	require.NoError(t, w.Flush())

	filename := filepath.Join(dir, "steps.csv")
	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o644))
	return filename
}

func TestMeasureCompressionLevels(t *testing.T) {
	dir := t.TempDir()
	config := optsim.DefaultConfiguration()
	config.Seed = 11
	config.MaxEvents = 8
	config.FileIn = writeDump(t, dir, 10, 400)

	setup, err := optsim.LoadDetectorSetup(config, nil)
	require.NoError(t, err)

	records, err := digitizeFile(config, setup)
	require.NoError(t, err)
	require.Len(t, records, 8)

	results, err := measure(records, setup, config.Seed, filepath.Join(dir, "hits.h5"), []int{0, 9}, 1)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Level)
	assert.Equal(t, 9, results[1].Level)
	for _, m := range results {
		assert.Positive(t, m.Size)
	}
	assert.Less(t, results[1].Size, results[0].Size)
}

func TestDigitizeFileMissing(t *testing.T) {
	config := optsim.DefaultConfiguration()
	config.FileIn = filepath.Join(t.TempDir(), "none.csv")
	setup, err := optsim.NewDetectorSetup(config, optsim.DefaultCurves(), nil)
	require.NoError(t, err)
	_, err = digitizeFile(config, setup)
	var openErr *optsim.ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}

func TestDigitizeFileUsesCurveFiles(t *testing.T) {
	dir := t.TempDir()
	config := optsim.DefaultConfiguration()
	config.Seed = 11
	config.FileIn = writeDump(t, dir, 4, 200)
	config.PmtQEFile = filepath.Join(dir, "blind.yaml")
	require.NoError(t, os.WriteFile(config.PmtQEFile, []byte("points:\n  - [1.0, 0]\n  - [5.0, 0]\n"), 0o644))

	setup, err := optsim.LoadDetectorSetup(config, nil)
	require.NoError(t, err)
	records, err := digitizeFile(config, setup)
	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Len(t, r.PmtHits, 200)
		assert.Zero(t, r.NumDetected())
	}
}
