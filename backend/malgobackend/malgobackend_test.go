package malgobackend

import (
	"testing"

	"github.com/agalue/goma/device"
	"github.com/agalue/goma/sampleformat"
	"github.com/gen2brain/malgo"
	"github.com/stretchr/testify/require"
)

// These cover the pure mapping helpers only. Exercising OpenDevice/Start
// needs a real host audio API, which this module's test environment can't
// assume is present; the device/async and device lifecycle tests already
// cover the repacking and state-machine logic OpenDevice's caller relies on.

func TestFormatMappingRoundTrips(t *testing.T) {
	for _, f := range []sampleformat.Format{sampleformat.U8, sampleformat.S16, sampleformat.S24, sampleformat.S32, sampleformat.F32} {
		require.Equal(t, f, fromMalgoFormat(toMalgoFormat(f)), f.String())
	}
}

func TestDeviceTypeMapping(t *testing.T) {
	require.Equal(t, malgo.Playback, toMalgoDeviceType(device.Playback))
	require.Equal(t, malgo.Capture, toMalgoDeviceType(device.Capture))
	require.Equal(t, malgo.Duplex, toMalgoDeviceType(device.Duplex))
	require.Equal(t, malgo.Loopback, toMalgoDeviceType(device.Loopback))
}
