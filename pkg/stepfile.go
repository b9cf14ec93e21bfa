package optsim

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// Record kinds of the step dump.
const (
	recordBeam  = "B"
	recordTrack = "T"
	recordHit   = "H"
)

// PhotonStep is an optical photon entering a sensitive volume.
type PhotonStep struct {
	EventID  int
	Detector string
	Copy     int
	PDG      int
	Energy   float64 // eV
	Position r3.Vec  // mm, world frame
	Time     float64 // ns
}

// StepEvent groups the dump records of one event.
type StepEvent struct {
	EventID  int
	Primary  *Primary
	Tracks   []NewTrack
	Arrivals []PhotonStep
}

// StepReader reads a step dump one event at a time. Records of an event must
// be contiguous.
type StepReader struct {
	csv     *csv.Reader
	pending []string
	line    int
	done    bool
}

func NewStepReader(r io.Reader) *StepReader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	return &StepReader{csv: reader}
}

func (s *StepReader) read() ([]string, error) {
	if s.pending != nil {
		record := s.pending
		s.pending = nil
		return record, nil
	}
	record, err := s.csv.Read()
	if err != nil {
		return nil, err
	}
	s.line, _ = s.csv.FieldPos(0)
	return record, nil
}

// Next returns the next event, or io.EOF when the dump is finished.
func (s *StepReader) Next() (*StepEvent, error) {
	if s.done {
		return nil, io.EOF
	}
	var event *StepEvent
	for {
		record, err := s.read()
		if errors.Is(err, io.EOF) {
			s.done = true
			if event == nil {
				return nil, io.EOF
			}
			return event, nil
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			return nil, &ErrStepRecord{Line: s.line, Err: fmt.Errorf("%d fields", len(record))}
		}
		evt, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, &ErrStepRecord{Line: s.line, Err: err}
		}
		if event == nil {
			event = &StepEvent{EventID: evt}
		} else if evt != event.EventID {
			s.pending = record
			return event, nil
		}
		if err := event.add(record); err != nil {
			return nil, &ErrStepRecord{Line: s.line, Err: err}
		}
	}
}

func (e *StepEvent) add(record []string) error {
	p := fieldParser{record: record}
	switch record[0] {
	case recordBeam:
		if err := p.want(10); err != nil {
			return err
		}
		e.Primary = &Primary{
			EventID:  e.EventID,
			PDG:      p.atoi(2),
			Energy:   p.parseFloat(3),
			Momentum: r3.Vec{X: p.parseFloat(4), Y: p.parseFloat(5), Z: p.parseFloat(6)},
			Position: r3.Vec{X: p.parseFloat(7), Y: p.parseFloat(8), Z: p.parseFloat(9)},
		}
	case recordTrack:
		if err := p.want(4); err != nil {
			return err
		}
		e.Tracks = append(e.Tracks, NewTrack{EventID: e.EventID, Process: record[2], Volume: record[3]})
	case recordHit:
		if err := p.want(10); err != nil {
			return err
		}
		e.Arrivals = append(e.Arrivals, PhotonStep{
			EventID:  e.EventID,
			Detector: record[2],
			Copy:     p.atoi(3),
			PDG:      p.atoi(4),
			Energy:   p.parseFloat(5),
			Position: r3.Vec{X: p.parseFloat(6), Y: p.parseFloat(7), Z: p.parseFloat(8)},
			Time:     p.parseFloat(9),
		})
	default:
		return fmt.Errorf("unknown record kind %q", record[0])
	}
	return p.err
}

// fieldParser keeps the first conversion error.
type fieldParser struct {
	record []string
	err    error
}

func (p *fieldParser) want(n int) error {
	if len(p.record) != n {
		return fmt.Errorf("%s record has %d fields, want %d", p.record[0], len(p.record), n)
	}
	return nil
}

func (p *fieldParser) atoi(i int) int {
	v, err := strconv.Atoi(p.record[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

func (p *fieldParser) parseFloat(i int) float64 {
	v, err := strconv.ParseFloat(p.record[i], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

// StepWriter writes step dump records.
type StepWriter struct {
	csv *csv.Writer
}

func NewStepWriter(w io.Writer) *StepWriter {
	return &StepWriter{csv: csv.NewWriter(w)}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (w *StepWriter) WritePrimary(p Primary) error {
	return w.csv.Write([]string{
		recordBeam, strconv.Itoa(p.EventID), strconv.Itoa(p.PDG), formatFloat(p.Energy),
		formatFloat(p.Momentum.X), formatFloat(p.Momentum.Y), formatFloat(p.Momentum.Z),
		formatFloat(p.Position.X), formatFloat(p.Position.Y), formatFloat(p.Position.Z),
	})
}

func (w *StepWriter) WriteTrack(t NewTrack) error {
	return w.csv.Write([]string{recordTrack, strconv.Itoa(t.EventID), t.Process, t.Volume})
}

func (w *StepWriter) WriteArrival(s PhotonStep) error {
	return w.csv.Write([]string{
		recordHit, strconv.Itoa(s.EventID), s.Detector, strconv.Itoa(s.Copy), strconv.Itoa(s.PDG),
		formatFloat(s.Energy), formatFloat(s.Position.X), formatFloat(s.Position.Y), formatFloat(s.Position.Z),
		formatFloat(s.Time),
	})
}

// WriteEvent writes all records of an event.
func (w *StepWriter) WriteEvent(e *StepEvent) error {
	if e.Primary != nil {
		if err := w.WritePrimary(*e.Primary); err != nil {
			return err
		}
	}
	for _, t := range e.Tracks {
		if err := w.WriteTrack(t); err != nil {
			return err
		}
	}
	for _, s := range e.Arrivals {
		if err := w.WriteArrival(s); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered records to the underlying writer.
func (w *StepWriter) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
