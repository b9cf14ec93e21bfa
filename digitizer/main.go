package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/next-exp/opticalsim_go/internal/logging"
	optsim "github.com/next-exp/opticalsim_go/pkg"
	_ "gocloud.dev/pubsub/mempubsub"
)

var configuration optsim.Configuration

var (
	logger         logging.Logger
	VerbosityLevel int
)

func init() {
	logger = logging.New(os.Stdout, os.Stderr)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = optsim.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if err := run(context.Background(), configuration); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, config optsim.Configuration) error {
	setup, err := optsim.LoadDetectorSetup(config, logger)
	if err != nil {
		return err
	}

	if config.Seed == 0 {
		config.Seed = optsim.ResolveSeed(0)
		logger.Info(fmt.Sprintf("No seed configured, using %d", config.Seed), "main")
	}

	file, err := os.Open(config.FileIn)
	if err != nil {
		return fmt.Errorf("Error opening file: %w", err)
	}
	defer file.Close()

	sink, err := openSinks(config, setup)
	if err != nil {
		return err
	}

	r := optsim.NewRun(config, setup, sink, logger)
	r.BeginOfRun()

	fileReader := NewFileReader(file, config, logger)
	if config.Parallel {
		err = processParallel(ctx, r, config.RunNumber, fileReader, config.EffectiveWorkers())
	} else {
		err = processSequential(ctx, r, config.RunNumber, fileReader)
	}

	summary, closeErr := r.EndOfRun()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("closing outputs: %w", closeErr)
	}

	if config.NotifyURL != "" {
		if err := notify(ctx, config.NotifyURL, summary); err != nil {
			logger.Error(err.Error())
		}
	}
	return nil
}

func openSinks(config optsim.Configuration, setup *optsim.DetectorSetup) (optsim.HitSink, error) {
	var sinks optsim.MultiSink
	if config.WriteData {
		writer, err := optsim.NewWriter(config.FileOut, config.CompressionLevel, setup, config.Seed, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, writer)
	}
	if config.HitMapOut != "" {
		hitMap, err := optsim.NewHitMap(config.HitMapOut, setup.Layout)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, hitMap)
	}
	return sinks, nil
}

func notify(ctx context.Context, url string, summary optsim.RunSummary) error {
	notifier, err := optsim.OpenRunNotifier(ctx, url)
	if err != nil {
		return err
	}
	defer notifier.Close(ctx)
	if err := notifier.Publish(ctx, summary); err != nil {
		return err
	}
	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Run %d summary published to %s", summary.RunNumber, url), "main")
	}
	return nil
}
