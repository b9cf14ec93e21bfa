package optsim

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const sampleDump = `# evt 0
B,0,211,0.748,0,0,0.735,0,0,-29.7
T,0,Cerenkov,KvcPV
T,0,Scintillation,SACPV
H,0,pmt,6,-22,2.5,-37.5,76,1,0.85
H,0,pmt,7,-22,3.1,-12.5,76,-2,0.91
B,1,211,0.75,0,0,0.737,1,2,-29.7
H,1,pmt,0,-22,2.1,-67.4,-25,0,1.4
H,3,pmt,1,-22,2.2,-67.4,0,0,1.1
`

func readAll(t *testing.T, r *StepReader) []*StepEvent {
	t.Helper()
	var events []*StepEvent
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, event)
	}
}

func TestStepReaderGroupsEvents(t *testing.T) {
	events := readAll(t, NewStepReader(strings.NewReader(sampleDump)))
	require.Len(t, events, 3)

	first := events[0]
	assert.Equal(t, 0, first.EventID)
	require.NotNil(t, first.Primary)
	assert.Equal(t, 211, first.Primary.PDG)
	assert.Equal(t, r3.Vec{Z: 0.735}, first.Primary.Momentum)
	assert.Len(t, first.Tracks, 2)
	require.Len(t, first.Arrivals, 2)
	assert.Equal(t, PhotonStep{
		EventID: 0, Detector: DetectorPMT, Copy: 7, PDG: OpticalPhotonPDG,
		Energy: 3.1, Position: r3.Vec{X: -12.5, Y: 76, Z: -2}, Time: 0.91,
	}, first.Arrivals[1])

	assert.Equal(t, 1, events[1].EventID)
	assert.Equal(t, 3, events[2].EventID)
	assert.Nil(t, events[2].Primary)
}

func TestStepRoundTrip(t *testing.T) {
	events := readAll(t, NewStepReader(strings.NewReader(sampleDump)))

	var buf bytes.Buffer
	w := NewStepWriter(&buf)
	for _, e := range events {
		require.NoError(t, w.WriteEvent(e))
	}
	require.NoError(t, w.Flush())

	again := readAll(t, NewStepReader(&buf))
	if diff := cmp.Diff(events, again); diff != "" {
		t.Errorf("events changed after rewrite (-want +got):\n%s", diff)
	}
}

func TestStepReaderErrors(t *testing.T) {
	cases := map[string]string{
		"kind":       "X,0,foo\n",
		"event id":   "H,zero,pmt,0,-22,2,0,0,0,0\n",
		"short hit":  "H,0,pmt,0,-22,2\n",
		"bad energy": "H,0,pmt,0,-22,two,0,0,0,0\n",
		"one field":  "B\n",
	}
	for name, dump := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewStepReader(strings.NewReader(dump)).Next()
			var recErr *ErrStepRecord
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, 1, recErr.Line)
		})
	}
}
