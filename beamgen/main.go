package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/next-exp/opticalsim_go/internal/logging"
	optsim "github.com/next-exp/opticalsim_go/pkg"
)

var logger = logging.New(os.Stdout, os.Stderr)

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	nEvents := flag.Int("n", 1000, "Number of primaries to generate")
	output := flag.String("o", "beam.csv", "Output step dump with the primaries")
	flag.Parse()

	config, err := optsim.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if config.Verbosity > 0 {
		printConfiguration(config)
	}

	file, err := os.Create(*output)
	if err != nil {
		logger.Error(fmt.Errorf("Error creating file: %w", err).Error())
		os.Exit(1)
	}
	buffered := bufio.NewWriter(file)

	written, err := generate(config, *nEvents, buffered)
	if err == nil {
		err = buffered.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Wrote %s primaries to %s", humanize.Comma(int64(written)), *output), "beamgen")
}

func printConfiguration(config optsim.Configuration) {
	logger.Info(fmt.Sprintf("Particle: %s", config.Particle), "config")
	logger.Info(fmt.Sprintf("Momentum: %g GeV/c", config.Momentum), "config")
	logger.Info(fmt.Sprintf("Momentum spread (FWHM): %g", config.MomentumSpread), "config")
	logger.Info(fmt.Sprintf("Gel size z: %g mm", config.GelSizeZ), "config")
	logger.Info(fmt.Sprintf("Teflon thickness: %g mm", config.TeflonThickness), "config")
	logger.Info(fmt.Sprintf("Black sheet thickness: %g mm", config.BlackSheetThick), "config")
	logger.Info(fmt.Sprintf("Beam profile: %s", config.BeamProfileFile), "config")
	logger.Info(fmt.Sprintf("Seed: %d", config.Seed), "config")
}

// generate writes n primaries as B records and returns how many were
// written. An exhausted beam profile stops generation with an error.
func generate(config optsim.Configuration, n int, w io.Writer) (int, error) {
	var profile *optsim.BeamProfile
	if config.BeamProfileFile != "" {
		var err error
		profile, err = optsim.LoadBeamProfile(config.BeamProfileFile)
		if err != nil {
			return 0, err
		}
		if profile.Len() < n {
			logger.Info(fmt.Sprintf("Beam profile has %d entries for %d events", profile.Len(), n), "beamgen")
		}
	}

	seed := optsim.ResolveSeed(config.Seed)
	if config.Seed == 0 {
		logger.Info(fmt.Sprintf("No seed configured, using %d", seed), "beamgen")
	}
	gen, err := optsim.NewBeamGenerator(config, optsim.NewBeamSource(seed), profile)
	if err != nil {
		return 0, err
	}

	writer := optsim.NewStepWriter(w)
	written := 0
	for range n {
		primary, err := gen.Generate()
		if err != nil {
			return written, err
		}
		if err := writer.WritePrimary(primary); err != nil {
			return written, err
		}
		written++
	}
	return written, writer.Flush()
}
