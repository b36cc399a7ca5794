package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	configFile, preset = "", ""
	cmd := &cobra.Command{Use: "test"}
	addModelFlags(cmd)
	return cmd
}

func TestBuildConfig_FlagsOverrideOnlyWhenSet(t *testing.T) {
	cmd := newTestCommand(t)
	require.NoError(t, cmd.Flags().Set("dt", "1e-7"))
	require.NoError(t, cmd.Flags().Set("max-size", "12"))

	cfg, err := buildConfig(cmd, "cluster")
	require.NoError(t, err)
	assert.Equal(t, "cluster", cfg.Model)
	assert.Equal(t, 1e-7, cfg.Dt)
	assert.Equal(t, 12, cfg.Cluster.MaxSize)
	// untouched flags keep the defaults rather than the zero flag values
	assert.Greater(t, cfg.Duration, 0.0)
	assert.Greater(t, cfg.Temperature, 0.0)
}

func TestBuildConfig_Preset(t *testing.T) {
	cmd := newTestCommand(t)
	require.NoError(t, cmd.Flags().Set("preset", "small"))

	cfg, err := buildConfig(cmd, "cluster")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Cluster.MaxSize)
}

func TestBuildConfig_Errors(t *testing.T) {
	cmd := newTestCommand(t)
	require.NoError(t, cmd.Flags().Set("preset", "nope"))
	_, err := buildConfig(cmd, "cluster")
	assert.Error(t, err)

	cmd = newTestCommand(t)
	require.NoError(t, cmd.Flags().Set("config", "/does/not/exist.yaml"))
	_, err = buildConfig(cmd, "cluster")
	assert.Error(t, err)

	cmd = newTestCommand(t)
	require.NoError(t, cmd.Flags().Set("dt", "-1"))
	_, err = buildConfig(cmd, "cluster")
	assert.Error(t, err)
}

func TestParseValues(t *testing.T) {
	vals, err := parseValues([]string{"5", "10:20:3"})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 10, 15, 20}, vals)

	_, err = parseValues([]string{"abc"})
	assert.Error(t, err)
	_, err = parseValues([]string{"1:2:x"})
	assert.Error(t, err)
}

func TestPlotColumnsFor(t *testing.T) {
	labels := []string{"C_-2", "C_-1", "C_1", "C_2"}

	cols, err := plotColumnsFor(labels, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, cols)

	cols, err = plotColumnsFor(labels, []string{"C_2"})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, cols)

	_, err = plotColumnsFor(labels, []string{"C_9"})
	assert.Error(t, err)

	cols, err = plotColumnsFor([]string{"x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, cols)
}
