package optsim

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigurationJSONKeepsDefaults(t *testing.T) {
	path := writeTemp(t, "run.json", `{"file_in": "steps.csv", "seed": 42, "momentum": 1.2}`)

	config, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, "steps.csv", config.FileIn)
	assert.Equal(t, uint64(42), config.Seed)
	assert.Equal(t, 1.2, config.Momentum)
	assert.Equal(t, "pi+", config.Particle)
	assert.Equal(t, 4, config.CompressionLevel)
	assert.Equal(t, "KvcPV", config.QuartzVolume)
}

func TestLoadConfigurationYAML(t *testing.T) {
	path := writeTemp(t, "run.yaml", `
file_in: steps.csv
parallel: true
num_workers: 4
no_db: false
db_driver: sqlite3
dbname: calib.sqlite
`)

	config, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.True(t, config.Parallel)
	assert.Equal(t, 4, config.EffectiveWorkers())
	assert.Equal(t, DriverSQLite, config.DBDriver)
	assert.Equal(t, "calib.sqlite", config.DBName)
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.json"))

	var openErr *ErrOpenFile
	require.True(t, errors.As(err, &openErr))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Configuration)
	}{
		{"negative skip", func(c *Configuration) { c.Skip = -1 }},
		{"no workers", func(c *Configuration) { c.NumWorkers = 0 }},
		{"compression", func(c *Configuration) { c.CompressionLevel = 10 }},
		{"momentum", func(c *Configuration) { c.Momentum = 0 }},
		{"driver", func(c *Configuration) { c.NoDB = false; c.DBDriver = "postgres" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfiguration()
			tc.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
	assert.NoError(t, DefaultConfiguration().Validate())
}

func TestSequentialRunsUseOneWorker(t *testing.T) {
	config := DefaultConfiguration()
	config.NumWorkers = 8
	assert.Equal(t, 1, config.EffectiveWorkers())
}
