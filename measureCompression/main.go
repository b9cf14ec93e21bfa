package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/next-exp/opticalsim_go/internal/logging"
	optsim "github.com/next-exp/opticalsim_go/pkg"
)

var logger = logging.New(os.Stdout, os.Stderr)

type measurement struct {
	Level    int
	Duration time.Duration
	Size     int64
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	repeat := flag.Int("repeat", 3, "Writes per compression level")
	flag.Parse()

	config, err := optsim.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	config.Seed = optsim.ResolveSeed(config.Seed)

	setup, err := optsim.LoadDetectorSetup(config, logger)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	start := time.Now()
	records, err := digitizeFile(config, setup)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Total events processed: %d", len(records)), "main")

	levels := make([]int, 10)
	for i := range levels {
		levels[i] = i
	}
	results, err := measure(records, setup, config.Seed, config.FileOut, levels, *repeat)
	if err != nil {
		logger.Error(err.Error())
	}
	for _, m := range results {
		logger.Info(fmt.Sprintf("(hdf5, comp %d) Time: %d ms, size %s", m.Level, m.Duration.Milliseconds(), humanize.Bytes(uint64(m.Size))), "main")
	}
	logger.Info(fmt.Sprintf("Total time: %d ms", time.Since(start).Milliseconds()), "main")
}

// digitizeFile digitizes up to max_events events of the input dump in memory.
func digitizeFile(config optsim.Configuration, setup *optsim.DetectorSetup) ([]*optsim.EventRecord, error) {
	file, err := os.Open(config.FileIn)
	if err != nil {
		return nil, &optsim.ErrOpenFile{Filename: config.FileIn, Err: err}
	}
	defer file.Close()

	sink := &optsim.MemorySink{}
	run := optsim.NewRun(config, setup, sink, logger)
	run.BeginOfRun()

	reader := optsim.NewStepReader(file)
	for len(sink.Records) < config.MaxEvents {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if _, err := run.ProcessEvent(context.Background(), event); err != nil {
			return nil, err
		}
	}
	if _, err := run.EndOfRun(); err != nil {
		return nil, err
	}
	return sink.Records, nil
}

// measure writes records repeat times at every level and keeps the fastest
// write of each level.
func measure(records []*optsim.EventRecord, setup *optsim.DetectorSetup, seed uint64, filename string, levels []int, repeat int) ([]measurement, error) {
	var results []measurement
	for _, level := range levels {
		best := measurement{Level: level}
		for i := range max(repeat, 1) {
			start := time.Now()
			if err := writeAll(records, setup, seed, filename, level); err != nil {
				return results, fmt.Errorf("compression level %d: %w", level, err)
			}
			duration := time.Since(start)
			if i == 0 || duration < best.Duration {
				best.Duration = duration
			}
		}
		info, err := os.Stat(filename)
		if err != nil {
			return results, fmt.Errorf("Error getting file info: %w", err)
		}
		best.Size = info.Size()
		results = append(results, best)
	}
	return results, nil
}

func writeAll(records []*optsim.EventRecord, setup *optsim.DetectorSetup, seed uint64, filename string, level int) error {
	writer, err := optsim.NewWriter(filename, level, setup, seed, nil)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.WriteEvent(record); err != nil {
			writer.Close()
			return err
		}
	}
	return writer.Close()
}
