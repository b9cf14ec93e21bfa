package main

import (
	"fmt"

	"github.com/next-exp/opticalsim_go/internal/logging"
	optsim "github.com/next-exp/opticalsim_go/pkg"
)

func printConfiguration(config optsim.Configuration, logger logging.Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Hit map out: %s", config.HitMapOut), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Seed: %d", config.Seed), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("PMT QE file: %s", config.PmtQEFile), "config")
	logger.Info(fmt.Sprintf("PMT window file: %s", config.PmtWindowFile), "config")
	logger.Info(fmt.Sprintf("MPPC QE file: %s", config.MppcQEFile), "config")
	logger.Info(fmt.Sprintf("Teflon thickness: %g mm", config.TeflonThickness), "config")
	logger.Info(fmt.Sprintf("Quartz volume: %s", config.QuartzVolume), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
	logger.Info(fmt.Sprintf("Notify URL: %s", config.NotifyURL), "config")
}
