package optsim

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// progressEvery is the event interval between progress messages.
const progressEvery = 100

// DetectorSetup is the immutable description shared by every digitizer of a
// run: response curves, sensor layout and channel map.
type DetectorSetup struct {
	RunNumber    int
	QuartzVolume string
	Layout       *Layout
	Channels     ChannelMap
	PmtCurves    []*SpectralResponseCurve
	// MppcCurves is empty when the module has no MPPC readout.
	MppcCurves []*SpectralResponseCurve
}

// NewDetectorSetup picks the PMT curves (QE and window) and the optional
// MPPC curve from curves. Without a channel map from the database the layout
// identity mapping is used for the PMTs.
func NewDetectorSetup(config Configuration, curves CurveSet, channels ChannelMap) (*DetectorSetup, error) {
	qe, ok := curves[CurvePmtQE]
	if !ok {
		return nil, &ErrCurveConfig{Curve: CurvePmtQE, Err: ErrNoCurves}
	}
	pmtCurves := []*SpectralResponseCurve{qe}
	if window, ok := curves[CurvePmtWindow]; ok {
		pmtCurves = append(pmtCurves, window)
	}
	var mppcCurves []*SpectralResponseCurve
	if mppc, ok := curves[CurveMppcQE]; ok {
		mppcCurves = append(mppcCurves, mppc)
	}

	layout := NewSACLayout(config.TeflonThickness)
	if channels == nil {
		channels = ChannelMap{}
	}
	if _, ok := channels[DetectorPMT]; !ok {
		channels[DetectorPMT] = layout.IdentityMapping()
	}

	return &DetectorSetup{
		RunNumber:    config.RunNumber,
		QuartzVolume: config.QuartzVolume,
		Layout:       layout,
		Channels:     channels,
		PmtCurves:    pmtCurves,
		MppcCurves:   mppcCurves,
	}, nil
}

// LoadDetectorSetup collects the response curves and channel map: built-in
// tables, then the calibration database unless no_db, then curve files.
func LoadDetectorSetup(config Configuration, logger Logger) (*DetectorSetup, error) {
	logger = loggerOrNop(logger)
	curves := DefaultCurves()
	var channels ChannelMap

	if !config.NoDB {
		dbConn, err := ConnectToDatabase(config.DBDriver, config.User, config.Passwd, config.Host, config.DBName)
		if err != nil {
			return nil, fmt.Errorf("Error connection to database: %w", err)
		}
		defer dbConn.Close()

		calibration, err := LoadCalibration(dbConn, config.RunNumber, config.Verbosity, logger)
		if err != nil {
			return nil, err
		}
		curves.Override(calibration.Curves)
		channels = calibration.Channels
	}

	if err := curves.LoadCurveFiles(config, logger); err != nil {
		return nil, err
	}
	return NewDetectorSetup(config, curves, channels)
}

// Digitizer turns step events into event records. It is owned by a single
// worker.
type Digitizer struct {
	setup    *DetectorSetup
	pmt      *SensitiveDetector
	mppc     *SensitiveDetector
	counter  *CerenkovCounter
	seed     uint64
	perEvent bool
}

// NewDigitizer builds a digitizer drawing from src. When perEvent is set the
// source is replaced at every event by NewEventSource(seed, eventID).
func NewDigitizer(setup *DetectorSetup, src UniformSource, seed uint64, perEvent bool) (*Digitizer, error) {
	pmtModel, err := NewPhotonDetectionModel(src, setup.PmtCurves...)
	if err != nil {
		return nil, err
	}
	d := &Digitizer{
		setup:    setup,
		pmt:      NewSensitiveDetector(DetectorPMT, pmtModel, setup.Layout, setup.Channels[DetectorPMT]),
		counter:  NewCerenkovCounter(setup.QuartzVolume),
		seed:     seed,
		perEvent: perEvent,
	}
	if len(setup.MppcCurves) > 0 {
		mppcModel, err := NewPhotonDetectionModel(src, setup.MppcCurves...)
		if err != nil {
			return nil, err
		}
		d.mppc = NewSensitiveDetector(DetectorMPPC, mppcModel, nil, setup.Channels[DetectorMPPC])
	}
	return d, nil
}

func (d *Digitizer) detector(name string) *SensitiveDetector {
	switch name {
	case DetectorPMT:
		return d.pmt
	case DetectorMPPC:
		return d.mppc
	}
	return nil
}

// Digitize processes every record of one event. Data errors such as photons
// on unknown sensors mark the record as errored; the remaining photons are
// still digitized.
func (d *Digitizer) Digitize(event *StepEvent) *EventRecord {
	if d.perEvent {
		src := NewEventSource(d.seed, event.EventID)
		d.pmt.SetSource(src)
		if d.mppc != nil {
			d.mppc.SetSource(src)
		}
	}

	record := &EventRecord{
		RunNumber: d.setup.RunNumber,
		EventID:   event.EventID,
		Primary:   event.Primary,
	}

	d.counter.PrepareNewEvent()
	d.pmt.Initialize(event.EventID)
	if d.mppc != nil {
		d.mppc.Initialize(event.EventID)
	}

	for _, track := range event.Tracks {
		d.counter.ClassifyNewTrack(track)
	}
	for _, step := range event.Arrivals {
		sd := d.detector(step.Detector)
		if sd == nil {
			record.Error = true
			record.ErrorMessages = append(record.ErrorMessages,
				fmt.Errorf("%w: %q", ErrUnknownDetector, step.Detector).Error())
			continue
		}
		if _, err := sd.ProcessHits(step); err != nil {
			record.Error = true
			record.ErrorMessages = append(record.ErrorMessages, err.Error())
		}
	}

	record.Cerenkov = d.counter.Counts()
	record.PmtHits = d.pmt.EndOfEvent()
	if d.mppc != nil {
		record.MppcHits = d.mppc.EndOfEvent()
	}
	return record
}

// RunSummary is logged at end of run and published to the run topic.
type RunSummary struct {
	RunNumber   int     `json:"run_number"`
	Seed        uint64  `json:"seed"`
	Events      int     `json:"events"`
	ErrorEvents int     `json:"error_events"`
	Photons     int     `json:"photons"`
	Detected    int     `json:"detected"`
	ElapsedSec  float64 `json:"elapsed_sec"`
	Output      string  `json:"output,omitempty"`
}

// Run drives a run: it resolves the seed, feeds records to the sink in event
// order and keeps the run totals.
type Run struct {
	config  Configuration
	setup   *DetectorSetup
	sink    HitSink
	logger  Logger
	seed    uint64
	start   time.Time
	summary RunSummary
	serial  *Digitizer
}

func NewRun(config Configuration, setup *DetectorSetup, sink HitSink, logger Logger) *Run {
	return &Run{
		config: config,
		setup:  setup,
		sink:   sink,
		logger: loggerOrNop(logger),
	}
}

// BeginOfRun resolves the seed. A zero seed is replaced by a wall clock seed,
// which is logged so the run can be repeated.
func (r *Run) BeginOfRun() {
	r.seed = ResolveSeed(r.config.Seed)
	r.start = time.Now()
	r.summary = RunSummary{RunNumber: r.setup.RunNumber, Seed: r.seed, Output: r.config.FileOut}
	r.logger.Info(fmt.Sprintf("Begin of run %d, seed %d", r.setup.RunNumber, r.seed), "run")
}

func (r *Run) Seed() uint64 {
	return r.seed
}

// NewDigitizer returns a digitizer for one worker. Sequential runs share the
// single run stream, parallel runs reseed per event.
func (r *Run) NewDigitizer() (*Digitizer, error) {
	if r.config.Parallel {
		return NewDigitizer(r.setup, NewEventSource(r.seed, 0), r.seed, true)
	}
	if r.serial == nil {
		d, err := NewDigitizer(r.setup, NewRunSource(r.seed), r.seed, false)
		if err != nil {
			return nil, err
		}
		r.serial = d
	}
	return r.serial, nil
}

// ProcessEvent digitizes and records one event on the calling goroutine.
func (r *Run) ProcessEvent(ctx context.Context, event *StepEvent) (*EventRecord, error) {
	d, err := r.NewDigitizer()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	record := d.Digitize(event)
	return record, r.Record(ctx, record, time.Since(start))
}

// Record hands a digitized event to the sink and updates the run totals.
// Records must arrive in event order.
func (r *Run) Record(ctx context.Context, record *EventRecord, elapsed time.Duration) error {
	measureEvent(ctx, record, elapsed)

	r.summary.Events++
	r.summary.Photons += record.NumPhotons()
	r.summary.Detected += record.NumDetected()
	if record.Error {
		r.summary.ErrorEvents++
		for _, msg := range record.ErrorMessages {
			r.logger.Error(fmt.Sprintf("event %d: %s", record.EventID, msg))
		}
	}
	if r.summary.Events%progressEvery == 0 {
		r.logger.Info(fmt.Sprintf("Processed %s events", humanize.Comma(int64(r.summary.Events))), "run")
	}

	if r.sink == nil {
		return nil
	}
	if err := r.sink.WriteEvent(record); err != nil {
		return fmt.Errorf("writing event %d: %w", record.EventID, err)
	}
	return nil
}

// EndOfRun closes the sink and logs the run summary.
func (r *Run) EndOfRun() (RunSummary, error) {
	var err error
	if r.sink != nil {
		err = r.sink.Close()
	}
	elapsed := time.Since(r.start)
	r.summary.ElapsedSec = elapsed.Seconds()

	fraction := 0.0
	if r.summary.Photons > 0 {
		fraction = float64(r.summary.Detected) / float64(r.summary.Photons)
	}
	r.logger.Info(fmt.Sprintf("End of run %d: %s events (%d with errors), %s photons, %s detected (%.2f%%) in %s",
		r.summary.RunNumber,
		humanize.Comma(int64(r.summary.Events)), r.summary.ErrorEvents,
		humanize.Comma(int64(r.summary.Photons)), humanize.Comma(int64(r.summary.Detected)),
		100*fraction, elapsed.Round(time.Millisecond)), "run")
	return r.summary, err
}
