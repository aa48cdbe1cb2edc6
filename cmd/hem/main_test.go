package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestValidateCmd_AcceptsWellFormedConfig(t *testing.T) {
	// validate builds the dwelling, which loads every external-conditions
	// series file; one constant series serves all of them.
	series := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(series, []byte("0\n"), 0o644))

	cfgFile = writeTestConfig(t, `
simulation_time:
  start_day: 0
  end_day: 1
  timestep_h: 1
external_conditions:
  latitude: 51.5
  longitude: -0.1
  air_temp_series_file: `+series+`
  wind_speed_series_file: `+series+`
  diffuse_horizontal_series_file: `+series+`
  direct_series_file: `+series+`
  ground_reflectivity_series_file: `+series+`
  direct_is_normal: true
zone:
  - name: living
`)
	defer func() { cfgFile = "" }()

	cmd := validateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.RunE(cmd, nil))
}

func TestValidateCmd_RejectsInvalidConfig(t *testing.T) {
	cfgFile = writeTestConfig(t, `
simulation_time:
  start_day: 0
  end_day: 1
  timestep_h: 0
zone:
  - name: living
`)
	defer func() { cfgFile = "" }()

	cmd := validateCmd()
	assert.Error(t, cmd.RunE(cmd, nil))
}

func TestSchemaCmd_PrintsConfigLayoutAsJSON(t *testing.T) {
	cmd := schemaCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.RunE(cmd, nil))
}
