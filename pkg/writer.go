package optsim

import (
	"errors"
	"fmt"
	"slices"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	"golang.org/x/exp/maps"
)

// Writer stores digitized events as HDF5 tables:
//
//	Run/runInfo, Run/events
//	Beam/beam
//	Hits/pmt, Hits/mppc
//	Sensors/DataPMT, Sensors/DataMPPC, Sensors/curves
type Writer struct {
	File            *hdf5.File
	Filename        string
	RunGroup        *hdf5.Group
	BeamGroup       *hdf5.Group
	HitsGroup       *hdf5.Group
	SensorsGroup    *hdf5.Group
	RunInfoTable    *table
	EventTable      *table
	BeamTable       *table
	PmtHitsTable    *table
	MppcHitsTable   *table
	PmtMappingTable *table
	MppcMapping     *table
	CurvesTable     *table
	EvtCounter      int
	logger          Logger
}

// NewWriter creates the file and writes the run level tables: run info,
// channel maps and the response curves used for digitization.
func NewWriter(filename string, compressionLevel int, setup *DetectorSetup, seed uint64, logger Logger) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	w := &Writer{Filename: filename, logger: loggerOrNop(logger)}
	w.logger.Info(fmt.Sprintf("Creating file %s", filename), "hdf5writer")

	var err error
	if w.File, err = openFile(filename); err != nil {
		return nil, err
	}
	if err := w.createLayout(compressionLevel); err != nil {
		return nil, errors.Join(err, w.Close())
	}
	if err := w.writeRunTables(setup, seed); err != nil {
		return nil, errors.Join(err, w.Close())
	}
	return w, nil
}

func (w *Writer) createLayout(compressionLevel int) error {
	var err error
	groups := []struct {
		dst  **hdf5.Group
		name string
	}{
		{&w.RunGroup, "Run"},
		{&w.BeamGroup, "Beam"},
		{&w.HitsGroup, "Hits"},
		{&w.SensorsGroup, "Sensors"},
	}
	for _, g := range groups {
		if *g.dst, err = createGroup(w.File, g.name); err != nil {
			return err
		}
	}

	tables := []struct {
		dst      **table
		group    *hdf5.Group
		name     string
		datatype interface{}
	}{
		{&w.RunInfoTable, w.RunGroup, "runInfo", RunInfoHDF5{}},
		{&w.EventTable, w.RunGroup, "events", EventDataHDF5{}},
		{&w.BeamTable, w.BeamGroup, "beam", BeamHDF5{}},
		{&w.PmtHitsTable, w.HitsGroup, DetectorPMT, HitHDF5{}},
		{&w.MppcHitsTable, w.HitsGroup, DetectorMPPC, HitHDF5{}},
		{&w.PmtMappingTable, w.SensorsGroup, "DataPMT", SensorMappingHDF5{}},
		{&w.MppcMapping, w.SensorsGroup, "DataMPPC", SensorMappingHDF5{}},
		{&w.CurvesTable, w.SensorsGroup, "curves", CurvePointHDF5{}},
	}
	for _, t := range tables {
		if *t.dst, err = createTable(t.group, t.name, t.datatype, compressionLevel); err != nil {
			return err
		}
	}
	return nil
}

func sortSensorsBySensorID(mapping SensorMapping) []SensorMappingHDF5 {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	sorted := make([]SensorMappingHDF5, 0, len(mapping.ToSensorID))
	for _, sensorID := range slices.Sorted(maps.Keys(mapping.ToCopy)) {
		sorted = append(sorted, SensorMappingHDF5{
			channel:  int32(mapping.ToCopy[sensorID]),
			sensorID: int32(sensorID),
		})
	}
	return sorted
}

func curvePoints(curves []*SpectralResponseCurve) []CurvePointHDF5 {
	var rows []CurvePointHDF5
	for _, c := range curves {
		for _, p := range c.Points() {
			rows = append(rows, CurvePointHDF5{curve: c.Name(), energy: p.Energy, value: p.Value})
		}
	}
	return rows
}

func (w *Writer) writeRunTables(setup *DetectorSetup, seed uint64) error {
	if err := writeEntryToTable(w.RunInfoTable, RunInfoHDF5{run_number: int32(setup.RunNumber), seed: seed}); err != nil {
		return err
	}
	pmtSorted := sortSensorsBySensorID(setup.Channels[DetectorPMT])
	if err := writeArrayToTable(w.PmtMappingTable, &pmtSorted); err != nil {
		return err
	}
	if mppc, ok := setup.Channels[DetectorMPPC]; ok {
		mppcSorted := sortSensorsBySensorID(mppc)
		if err := writeArrayToTable(w.MppcMapping, &mppcSorted); err != nil {
			return err
		}
	}
	points := curvePoints(append(slices.Clone(setup.PmtCurves), setup.MppcCurves...))
	return writeArrayToTable(w.CurvesTable, &points)
}

func boolToInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

func hitRows(hits []DetectedHit) []HitHDF5 {
	rows := make([]HitHDF5, len(hits))
	for i, h := range hits {
		rows[i] = HitHDF5{
			evt_number:  int32(h.EventID),
			copy_no:     int32(h.Copy),
			sensor_id:   int32(h.SensorID),
			particle_id: int32(h.PDG),
			energy:      h.Energy,
			wave_length: h.Wavelength,
			time:        h.Time,
			pos_x:       h.World.X,
			pos_y:       h.World.Y,
			pos_z:       h.World.Z,
			local_x:     h.Local.X,
			local_y:     h.Local.Y,
			local_z:     h.Local.Z,
			detect_flag: boolToInt8(h.Detected),
		}
	}
	return rows
}

// WriteEvent appends one event to every table.
func (w *Writer) WriteEvent(record *EventRecord) error {
	err := writeEntryToTable(w.EventTable, EventDataHDF5{
		evt_number:      int32(record.EventID),
		cerenkov_all:    int32(record.Cerenkov.CerenkovAll),
		cerenkov_quartz: int32(record.Cerenkov.CerenkovQuartz),
		scintillation:   int32(record.Cerenkov.Scintillation),
		nhit_pmt:        int32(len(record.PmtHits)),
		nhit_mppc:       int32(len(record.MppcHits)),
		ndetected:       int32(record.NumDetected()),
		has_error:       boolToInt8(record.Error),
	})
	if err != nil {
		return err
	}

	if p := record.Primary; p != nil {
		err := writeEntryToTable(w.BeamTable, BeamHDF5{
			evt_number: int32(record.EventID),
			pdg:        int32(p.PDG),
			energy:     p.Energy,
			mom_x:      p.Momentum.X,
			mom_y:      p.Momentum.Y,
			mom_z:      p.Momentum.Z,
			pos_x:      p.Position.X,
			pos_y:      p.Position.Y,
			pos_z:      p.Position.Z,
		})
		if err != nil {
			return err
		}
	}

	pmtRows := hitRows(record.PmtHits)
	if err := writeArrayToTable(w.PmtHitsTable, &pmtRows); err != nil {
		return err
	}
	mppcRows := hitRows(record.MppcHits)
	if err := writeArrayToTable(w.MppcHitsTable, &mppcRows); err != nil {
		return err
	}

	w.EvtCounter++
	return nil
}

// Close closes tables, groups and file, in that order, and joins the errors.
func (w *Writer) Close() error {
	w.logger.Info(fmt.Sprintf("Closing file %s after %d events", w.Filename, w.EvtCounter), "hdf5writer")
	var errs []error

	tables := []*table{
		w.RunInfoTable, w.EventTable, w.BeamTable, w.PmtHitsTable, w.MppcHitsTable,
		w.PmtMappingTable, w.MppcMapping, w.CurvesTable,
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if err := t.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing table %s: %w", t.name, err))
		}
	}
	for _, g := range []*hdf5.Group{w.RunGroup, w.BeamGroup, w.HitsGroup, w.SensorsGroup} {
		if g == nil {
			continue
		}
		if err := g.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing group: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}
	return errors.Join(errs...)
}
