package main

import (
	"fmt"
	"io"

	optsim "github.com/next-exp/opticalsim_go/pkg"
)

// FileReader hands out the events of a step dump, honoring skip and
// max_events. max_events counts the events returned after the skipped ones.
type FileReader struct {
	Reader    *optsim.StepReader
	EvtCount  int
	Skip      int
	MaxEvents int
	Verbosity int
	logger    optsim.Logger
}

func NewFileReader(r io.Reader, config optsim.Configuration, logger optsim.Logger) *FileReader {
	return &FileReader{
		Reader:    optsim.NewStepReader(r),
		EvtCount:  -1,
		Skip:      config.Skip,
		MaxEvents: config.MaxEvents,
		Verbosity: config.Verbosity,
		logger:    logger,
	}
}

func (f *FileReader) getNextEvent() (*optsim.StepEvent, error) {
	for {
		event, err := f.Reader.Next()
		if err != nil {
			return nil, err
		}
		f.EvtCount++
		if f.EvtCount-f.Skip >= f.MaxEvents {
			if f.Verbosity > 0 {
				f.logger.Info("Max events reached", "fileReader")
			}
			return nil, io.EOF
		}
		if f.EvtCount < f.Skip {
			if f.Verbosity > 1 {
				f.logger.Info(fmt.Sprintf("Skipping event %d with ID %d", f.EvtCount, event.EventID), "fileReader")
			}
			continue
		}
		if f.Verbosity > 1 {
			f.logger.Info(fmt.Sprintf("Reading event %d with ID %d", f.EvtCount, event.EventID), "fileReader")
		}
		return event, nil
	}
}
