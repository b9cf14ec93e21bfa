package main

import (
	"context"
	"fmt"
	"io"
	"time"

	optsim "github.com/next-exp/opticalsim_go/pkg"
	"golang.org/x/sync/errgroup"
)

type job struct {
	seq   int
	event *optsim.StepEvent
}

type result struct {
	seq     int
	record  *optsim.EventRecord
	elapsed time.Duration
}

// recoveredRecord is the errored record stored in place of an event whose
// digitization panicked.
func recoveredRecord(runNumber int, event *optsim.StepEvent, r any) *optsim.EventRecord {
	return &optsim.EventRecord{
		RunNumber:     runNumber,
		EventID:       event.EventID,
		Primary:       event.Primary,
		Error:         true,
		ErrorMessages: []string{fmt.Sprintf("digitizer recovered from panic on event %d: %v", event.EventID, r)},
	}
}

func digitize(d *optsim.Digitizer, runNumber int, event *optsim.StepEvent) (record *optsim.EventRecord, elapsed time.Duration) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			record = recoveredRecord(runNumber, event, r)
			elapsed = time.Since(start)
		}
	}()
	record = d.Digitize(event)
	return record, time.Since(start)
}

func worker(ctx context.Context, id int, run *optsim.Run, runNumber int, jobs <-chan job, results chan<- result) error {
	d, err := run.NewDigitizer()
	if err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}
	for j := range jobs {
		if VerbosityLevel > 2 {
			logger.Info(fmt.Sprintf("Worker %d processing event %d", id, j.event.EventID), "workers")
		}
		record, elapsed := digitize(d, runNumber, j.event)
		select {
		case results <- result{seq: j.seq, record: record, elapsed: elapsed}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func sendEventsToWorkers(ctx context.Context, fileReader *FileReader, jobs chan<- job) error {
	defer close(jobs)
	for seq := 0; ; seq++ {
		event, err := fileReader.getNextEvent()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading event: %w", err)
		}
		select {
		case jobs <- job{seq: seq, event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// processWorkerResults hands results to the run in reading order, holding
// back the ones that finish early.
func processWorkerResults(ctx context.Context, run *optsim.Run, results <-chan result) error {
	pending := make(map[int]result)
	next := 0
	for res := range results {
		pending[res.seq] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := run.Record(ctx, r.record, r.elapsed); err != nil {
				return err
			}
			next++
		}
	}
	if len(pending) > 0 {
		return fmt.Errorf("%d events lost between workers and writer", len(pending))
	}
	return nil
}

// processParallel digitizes with numWorkers workers. Each worker owns its
// digitizer; records reach the sinks in reading order.
func processParallel(ctx context.Context, run *optsim.Run, runNumber int, fileReader *FileReader, numWorkers int) error {
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job, numWorkers)
	results := make(chan result, numWorkers)

	g.Go(func() error {
		return sendEventsToWorkers(ctx, fileReader, jobs)
	})
	g.Go(func() error {
		defer close(results)
		var workers errgroup.Group
		for id := range numWorkers {
			workers.Go(func() error {
				return worker(ctx, id, run, runNumber, jobs, results)
			})
		}
		return workers.Wait()
	})
	g.Go(func() error {
		return processWorkerResults(ctx, run, results)
	})
	return g.Wait()
}

// processSequential digitizes on the calling goroutine with the run stream.
func processSequential(ctx context.Context, run *optsim.Run, runNumber int, fileReader *FileReader) error {
	d, err := run.NewDigitizer()
	if err != nil {
		return err
	}
	for {
		event, err := fileReader.getNextEvent()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading event: %w", err)
		}
		record, elapsed := digitize(d, runNumber, event)
		if err := run.Record(ctx, record, elapsed); err != nil {
			return err
		}
	}
}
