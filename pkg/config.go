package optsim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Configuration struct {
	MaxEvents        int     `json:"max_events" yaml:"max_events"`
	Skip             int     `json:"skip" yaml:"skip"`
	Verbosity        int     `json:"verbosity" yaml:"verbosity"`
	FileIn           string  `json:"file_in" yaml:"file_in"`
	FileOut          string  `json:"file_out" yaml:"file_out"`
	HitMapOut        string  `json:"hitmap_out" yaml:"hitmap_out"`
	RunNumber        int     `json:"run_number" yaml:"run_number"`
	Seed             uint64  `json:"seed" yaml:"seed"`
	Parallel         bool    `json:"parallel" yaml:"parallel"`
	NumWorkers       int     `json:"num_workers" yaml:"num_workers"`
	WriteData        bool    `json:"write_data" yaml:"write_data"`
	CompressionLevel int     `json:"compression_level" yaml:"compression_level"`
	NoDB             bool    `json:"no_db" yaml:"no_db"`
	DBDriver         string  `json:"db_driver" yaml:"db_driver"`
	Host             string  `json:"host" yaml:"host"`
	User             string  `json:"user" yaml:"user"`
	Passwd           string  `json:"pass" yaml:"pass"`
	DBName           string  `json:"dbname" yaml:"dbname"`
	PmtQEFile        string  `json:"pmt_qe_file" yaml:"pmt_qe_file"`
	PmtWindowFile    string  `json:"pmt_window_file" yaml:"pmt_window_file"`
	MppcQEFile       string  `json:"mppc_qe_file" yaml:"mppc_qe_file"`
	Particle         string  `json:"particle" yaml:"particle"`
	Momentum         float64 `json:"momentum" yaml:"momentum"`
	MomentumSpread   float64 `json:"momentum_spread" yaml:"momentum_spread"`
	GelSizeZ         float64 `json:"gel_size_z" yaml:"gel_size_z"`
	TeflonThickness  float64 `json:"teflon_thickness" yaml:"teflon_thickness"`
	BlackSheetThick  float64 `json:"blacksheet_thickness" yaml:"blacksheet_thickness"`
	BeamProfileFile  string  `json:"beam_profile_file" yaml:"beam_profile_file"`
	QuartzVolume     string  `json:"quartz_volume" yaml:"quartz_volume"`
	NotifyURL        string  `json:"notify_url" yaml:"notify_url"`
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// DefaultConfiguration returns the values used for any key missing from the
// configuration file.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxEvents:        1000000000,
		Skip:             0,
		Verbosity:        0,
		FileOut:          "kvc_hits.h5",
		RunNumber:        0,
		Seed:             0,
		Parallel:         false,
		NumWorkers:       1,
		WriteData:        true,
		CompressionLevel: 4,
		NoDB:             true,
		DBDriver:         DriverMySQL,
		Host:             "localhost",
		User:             "kvcreader",
		Passwd:           "readonly",
		DBName:           "KVC",
		Particle:         "pi+",
		Momentum:         0.735,
		MomentumSpread:   0.02,
		GelSizeZ:         33.0,
		TeflonThickness:  3.0,
		BlackSheetThick:  0.2,
		QuartzVolume:     "KvcPV",
	}
}

// LoadConfiguration reads a JSON or YAML configuration file on top of
// DefaultConfiguration. The format is chosen from the file extension.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("parsing configuration %s: %w", filename, err)
	}
	return config, config.Validate()
}

func (c Configuration) Validate() error {
	switch {
	case c.MaxEvents < 0:
		return fmt.Errorf("max_events must not be negative, got %d", c.MaxEvents)
	case c.Skip < 0:
		return fmt.Errorf("skip must not be negative, got %d", c.Skip)
	case c.NumWorkers < 1:
		return fmt.Errorf("num_workers must be at least 1, got %d", c.NumWorkers)
	case c.CompressionLevel < 0 || c.CompressionLevel > 9:
		return fmt.Errorf("compression_level must be in [0, 9], got %d", c.CompressionLevel)
	case c.Momentum <= 0:
		return fmt.Errorf("momentum must be positive, got %g", c.Momentum)
	case c.MomentumSpread < 0:
		return fmt.Errorf("momentum_spread must not be negative, got %g", c.MomentumSpread)
	}
	if !c.NoDB && c.DBDriver != DriverMySQL && c.DBDriver != DriverSQLite {
		return fmt.Errorf("unknown db_driver %q", c.DBDriver)
	}
	return nil
}

// EffectiveWorkers is the number of digitization workers the run uses.
// Sequential runs always use one so that the run stream is consumed in order.
func (c Configuration) EffectiveWorkers() int {
	if !c.Parallel {
		return 1
	}
	return c.NumWorkers
}
