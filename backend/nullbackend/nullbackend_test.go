package nullbackend

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/agalue/goma/channels"
	"github.com/agalue/goma/device"
	"github.com/agalue/goma/sampleformat"
	"github.com/stretchr/testify/require"
)

func TestNullBackendDrivesPeriodicCallbacks(t *testing.T) {
	var calls atomic.Int64
	cfg := device.Config{
		Role: device.Playback,
		Playback: device.FormatDescriptor{
			Format: sampleformat.F32, Channels: 1, SampleRate: 48000, ChannelMap: channels.MonoMap(),
		},
		PeriodSizeInFrames: 128,
	}

	d, err := device.New(New(), cfg, func(output, input []float32, frameCount int) {
		calls.Add(1)
	}, nil)
	require.NoError(t, err)

	require.NoError(t, d.Start())
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 2*time.Millisecond)
	require.NoError(t, d.Stop())

	n := calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, n, calls.Load(), "no further callbacks should fire after Stop")

	require.NoError(t, d.Uninit())
}
