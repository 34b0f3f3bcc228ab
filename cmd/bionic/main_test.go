package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestVerboseFlagEnablesDebugLogging(t *testing.T) {
	require.Equal(t, zerolog.WarnLevel, log.GetLevel())

	rootCmd.SetArgs([]string{"--verbose", "version"})
	defer func() {
		verbose = false
		rootCmd.SetArgs(nil)
		log = newLogger()
	}()
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, zerolog.DebugLevel, log.GetLevel())
}
