package main

import (
	"testing"
	"time"

	"github.com/agalue/goma/device"
	"github.com/stretchr/testify/require"
)

func TestParsePositionalRequiresRole(t *testing.T) {
	_, err := parsePositional(nil)
	require.Error(t, err)
}

func TestParsePositionalFileRoleBackendWave(t *testing.T) {
	opts, err := parsePositional([]string{"out.wav", "capture", "null", "white"})
	require.NoError(t, err)
	require.Equal(t, "out.wav", opts.file)
	require.Equal(t, device.Capture, opts.role)
	require.Equal(t, "null", opts.backend)
	require.Equal(t, "white", opts.wave)
}

func TestParsePositionalDefaultsWithRoleOnly(t *testing.T) {
	opts, err := parsePositional([]string{"playback"})
	require.NoError(t, err)
	require.Equal(t, "", opts.file)
	require.Equal(t, device.Playback, opts.role)
	require.Equal(t, "", opts.backend)
	require.Equal(t, "sine", opts.wave)
}

func TestRunPlaybackOnNullBackendSucceeds(t *testing.T) {
	start := time.Now()
	code := run([]string{"-duration=20ms", "-period-frames=64", "playback", "null", "sine"})
	require.Equal(t, 0, code)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestRunMissingRoleFails(t *testing.T) {
	code := run([]string{})
	require.NotEqual(t, 0, code)
}
