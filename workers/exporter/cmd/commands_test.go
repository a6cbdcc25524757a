package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firds/shared/config"
)

func TestFlagOverrides(t *testing.T) {
	opts := &runOptions{}
	runCmd, _, err := newRootCommand(opts).Find([]string{"run"})
	require.NoError(t, err)

	require.NoError(t, runCmd.ParseFlags([]string{
		"--from", "2022-03-01",
		"--to", "2022-03-02",
		"--rows", "25",
		"--file-type", "FULINS",
		"--workspace", "/tmp/firds",
		"--skip-upload",
	}))

	apply, err := flagOverrides(runCmd, opts, "cli")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	apply(cfg)

	assert.Equal(t, time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), cfg.Source.From)
	assert.Equal(t, time.Date(2022, 3, 2, 0, 0, 0, 0, time.UTC), cfg.Source.To)
	assert.Equal(t, 25, cfg.Source.Rows)
	assert.Equal(t, 0, cfg.Source.Start, "unset flags keep the configured value")
	assert.Equal(t, "FULINS", cfg.Source.FileType)
	assert.Equal(t, "/tmp/firds", cfg.Workspace.Dir)
	assert.False(t, cfg.Sink.Upload)
	assert.Equal(t, "cli", cfg.Adapters.Runtime)
}

func TestFlagOverrides_NothingSet(t *testing.T) {
	opts := &runOptions{}
	rootCmd := newRootCommand(opts)
	require.NoError(t, rootCmd.ParseFlags(nil))

	apply, err := flagOverrides(rootCmd, opts, "")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Source.Rows = 7
	apply(cfg)

	assert.Equal(t, 7, cfg.Source.Rows)
	assert.True(t, cfg.Sink.Upload)
	assert.Empty(t, cfg.Adapters.Runtime)
}

func TestFlagOverrides_InvalidDate(t *testing.T) {
	opts := &runOptions{}
	rootCmd := newRootCommand(opts)
	require.NoError(t, rootCmd.ParseFlags([]string{"--from", "17/01/2021"}))

	_, err := flagOverrides(rootCmd, opts, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --from")
}

func TestRootCommand_Subcommands(t *testing.T) {
	rootCmd := newRootCommand(&runOptions{})

	for _, name := range []string{"run", "lambda"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
	assert.NotNil(t, rootCmd.Flags().Lookup("skip-upload"))
}
