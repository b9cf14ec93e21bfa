package optsim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(message, module string) {
	l.infos = append(l.infos, module+": "+message)
}

func (l *recordingLogger) Error(message string) {
	l.errors = append(l.errors, message)
}

func testSetup(t *testing.T, curves CurveSet) *DetectorSetup {
	t.Helper()
	setup, err := NewDetectorSetup(DefaultConfiguration(), curves, nil)
	require.NoError(t, err)
	return setup
}

// syntheticEvents spreads photons of increasing energy over every SAC PMT.
func syntheticEvents(n, photons int) []*StepEvent {
	layout := NewSACLayout(3.0)
	copies := layout.Copies()
	events := make([]*StepEvent, n)
	for i := range events {
		e := &StepEvent{EventID: i, Tracks: []NewTrack{{EventID: i, Process: ProcessCerenkov, Volume: "KvcPV"}}}
		for j := 0; j < photons; j++ {
			c := copies[(i+j)%len(copies)]
			p, _ := layout.Placement(c)
			e.Arrivals = append(e.Arrivals, PhotonStep{
				EventID:  i,
				Detector: DetectorPMT,
				Copy:     c,
				PDG:      OpticalPhotonPDG,
				Energy:   1.6 + 2.8*float64(j)/float64(photons),
				Position: p.Position,
				Time:     float64(j) * 0.01,
			})
		}
		events[i] = e
	}
	return events
}

func detectedFlags(records []*EventRecord) [][]bool {
	out := make([][]bool, len(records))
	for i, r := range records {
		for _, h := range r.PmtHits {
			out[i] = append(out[i], h.Detected)
		}
	}
	return out
}

func TestDetectorSetupNeedsPmtQE(t *testing.T) {
	_, err := NewDetectorSetup(DefaultConfiguration(), CurveSet{CurvePmtWindow: DefaultPmtWindow()}, nil)
	assert.ErrorIs(t, err, ErrNoCurves)
}

func TestDetectorSetupDefaults(t *testing.T) {
	setup := testSetup(t, DefaultCurves())
	assert.Len(t, setup.PmtCurves, 2)
	assert.Empty(t, setup.MppcCurves)
	assert.Equal(t, 13, setup.Channels.SensorID(DetectorPMT, 13))
}

func TestDigitizeEvent(t *testing.T) {
	setup := testSetup(t, CurveSet{CurvePmtQE: triangle(t)})
	d, err := NewDigitizer(setup, &fixedDraws{draws: []float64{0.4, 0.6}}, 0, false)
	require.NoError(t, err)

	primary := &Primary{EventID: 4, PDG: 211, Energy: 0.75, Momentum: r3.Vec{Z: 0.736}}
	record := d.Digitize(&StepEvent{
		EventID: 4,
		Primary: primary,
		Tracks: []NewTrack{
			{Process: ProcessCerenkov, Volume: "KvcPV"},
			{Process: ProcessCerenkov, Volume: "SACPV"},
		},
		Arrivals: []PhotonStep{
			{Detector: DetectorPMT, Copy: 6, PDG: OpticalPhotonPDG, Energy: 2.0, Position: r3.Vec{X: -37.5, Y: 76}},
			{Detector: DetectorPMT, Copy: 6, PDG: 11, Energy: 2.0},
			{Detector: DetectorPMT, Copy: 7, PDG: OpticalPhotonPDG, Energy: 2.0, Position: r3.Vec{X: -12.5, Y: 76}},
		},
	})

	assert.Equal(t, 4, record.EventID)
	assert.Same(t, primary, record.Primary)
	assert.Equal(t, CerenkovCounts{CerenkovAll: 2, CerenkovQuartz: 1}, record.Cerenkov)
	require.Len(t, record.PmtHits, 2)
	assert.True(t, record.PmtHits[0].Detected)
	assert.False(t, record.PmtHits[1].Detected)
	assert.Equal(t, 1, record.NumDetected())
	assert.False(t, record.Error)
}

func TestDigitizeFlagsUnknownSensors(t *testing.T) {
	setup := testSetup(t, DefaultCurves())
	d, err := NewDigitizer(setup, NewRunSource(1), 1, false)
	require.NoError(t, err)

	record := d.Digitize(&StepEvent{EventID: 1, Arrivals: []PhotonStep{
		{Detector: DetectorMPPC, Copy: 0, PDG: OpticalPhotonPDG, Energy: 2.5},
		{Detector: DetectorPMT, Copy: 40, PDG: OpticalPhotonPDG, Energy: 2.5},
		{Detector: DetectorPMT, Copy: 1, PDG: OpticalPhotonPDG, Energy: 2.5, Position: r3.Vec{X: -67.4}},
	}})

	assert.True(t, record.Error)
	assert.Len(t, record.ErrorMessages, 2)
	// the unknown copy is kept in the collection, the unknown detector is not
	require.Len(t, record.PmtHits, 2)
	assert.Equal(t, 40, record.PmtHits[0].Copy)
}

func TestDigitizeMppc(t *testing.T) {
	curves := DefaultCurves()
	curves[CurveMppcQE] = constantCurve(t, CurveMppcQE, 1)
	setup := testSetup(t, curves)
	d, err := NewDigitizer(setup, NewRunSource(3), 3, false)
	require.NoError(t, err)

	record := d.Digitize(&StepEvent{EventID: 0, Arrivals: []PhotonStep{
		{Detector: DetectorMPPC, Copy: 2, PDG: OpticalPhotonPDG, Energy: 2.0},
		{Detector: DetectorMPPC, Copy: 2, PDG: OpticalPhotonPDG, Energy: 3.5},
	}})
	require.Len(t, record.MppcHits, 2)
	assert.True(t, record.MppcHits[0].Detected)
	assert.False(t, record.MppcHits[1].Detected)
	assert.Empty(t, record.PmtHits)
}

func runAll(t *testing.T, config Configuration, events []*StepEvent) ([]*EventRecord, RunSummary) {
	t.Helper()
	sink := &MemorySink{}
	run := NewRun(config, testSetup(t, DefaultCurves()), sink, nil)
	run.BeginOfRun()
	for _, e := range events {
		_, err := run.ProcessEvent(context.Background(), e)
		require.NoError(t, err)
	}
	summary, err := run.EndOfRun()
	require.NoError(t, err)
	return sink.Records, summary
}

func TestRunReproducibleWithSeed(t *testing.T) {
	config := DefaultConfiguration()
	config.Seed = 1234
	events := syntheticEvents(20, 200)

	first, summary := runAll(t, config, events)
	second, _ := runAll(t, config, events)

	if diff := cmp.Diff(detectedFlags(first), detectedFlags(second)); diff != "" {
		t.Errorf("decisions differ between runs (-first +second):\n%s", diff)
	}
	assert.Equal(t, uint64(1234), summary.Seed)
	assert.Equal(t, 20, summary.Events)
	assert.Equal(t, 4000, summary.Photons)
	assert.Greater(t, summary.Detected, 0)
	assert.Less(t, summary.Detected, summary.Photons)

	config.Seed = 4321
	other, _ := runAll(t, config, events)
	assert.NotEqual(t, detectedFlags(first), detectedFlags(other))
}

func TestParallelDecisionsIgnoreEventOrder(t *testing.T) {
	config := DefaultConfiguration()
	config.Seed = 99
	config.Parallel = true
	config.NumWorkers = 4
	events := syntheticEvents(10, 100)

	run := NewRun(config, testSetup(t, DefaultCurves()), nil, nil)
	run.BeginOfRun()

	forward := make(map[int][]bool)
	d, err := run.NewDigitizer()
	require.NoError(t, err)
	for _, e := range events {
		forward[e.EventID] = detectedFlags([]*EventRecord{d.Digitize(e)})[0]
	}

	backward := make(map[int][]bool)
	d2, err := run.NewDigitizer()
	require.NoError(t, err)
	for i := len(events) - 1; i >= 0; i-- {
		backward[events[i].EventID] = detectedFlags([]*EventRecord{d2.Digitize(events[i])})[0]
	}
	assert.Equal(t, forward, backward)
}

func TestRunLogsProgressAndErrors(t *testing.T) {
	logger := &recordingLogger{}
	config := DefaultConfiguration()
	config.Seed = 5
	run := NewRun(config, testSetup(t, DefaultCurves()), &MemorySink{}, logger)
	run.BeginOfRun()

	events := syntheticEvents(250, 1)
	events[7].Arrivals[0].Detector = "pixel"
	for _, e := range events {
		_, err := run.ProcessEvent(context.Background(), e)
		require.NoError(t, err)
	}
	summary, err := run.EndOfRun()
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ErrorEvents)
	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], "event 7")

	progress := 0
	for _, msg := range logger.infos {
		if strings.HasPrefix(msg, "run: Processed") {
			progress++
		}
	}
	assert.Equal(t, 2, progress)
	assert.Contains(t, logger.infos[len(logger.infos)-1], "End of run 0: 250 events (1 with errors)")
}

type failingSink struct{ MemorySink }

func (f *failingSink) WriteEvent(*EventRecord) error { return errors.New("disk full") }
func (f *failingSink) Close() error                  { return fmt.Errorf("close failed") }

func TestRunPropagatesSinkErrors(t *testing.T) {
	run := NewRun(DefaultConfiguration(), testSetup(t, DefaultCurves()), &failingSink{}, nil)
	run.BeginOfRun()
	_, err := run.ProcessEvent(context.Background(), syntheticEvents(1, 1)[0])
	assert.ErrorContains(t, err, "disk full")

	_, err = run.EndOfRun()
	assert.Error(t, err)
}

func TestZeroSeedIsResolved(t *testing.T) {
	run := NewRun(DefaultConfiguration(), testSetup(t, DefaultCurves()), nil, nil)
	run.BeginOfRun()
	assert.NotZero(t, run.Seed())
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &MemorySink{}, &MemorySink{}
	sink := MultiSink{a, b}
	record := &EventRecord{EventID: 1}
	require.NoError(t, sink.WriteEvent(record))
	require.NoError(t, sink.Close())
	assert.Len(t, a.Records, 1)
	assert.Same(t, record, b.Records[0])
	assert.Error(t, a.WriteEvent(record))
}
