package device

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/agalue/goma/channels"
	"github.com/agalue/goma/sampleformat"
	"github.com/stretchr/testify/require"
)

type fakeBackendDevice struct {
	started bool
	cfg     Config
}

func (f *fakeBackendDevice) Start() error { f.started = true; return nil }
func (f *fakeBackendDevice) Stop() error  { f.started = false; return nil }
func (f *fakeBackendDevice) Uninit() error { return nil }
func (f *fakeBackendDevice) ObtainedPlayback() FormatDescriptor { return f.cfg.Playback }
func (f *fakeBackendDevice) ObtainedCapture() FormatDescriptor  { return f.cfg.Capture }

// fakeBackend captures the raw callback so tests can drive it directly,
// standing in for a real transport's worker thread.
type fakeBackend struct {
	raw RawCallback
	dev *fakeBackendDevice
}

func (f *fakeBackend) Name() string { return "fake" }
func (f *fakeBackend) OpenDevice(cfg Config, raw RawCallback) (BackendDevice, error) {
	f.raw = raw
	f.dev = &fakeBackendDevice{cfg: cfg}
	return f.dev, nil
}

func monoDescriptor(rate int) FormatDescriptor {
	return FormatDescriptor{Format: sampleformat.F32, Channels: 1, SampleRate: rate, ChannelMap: channels.MonoMap()}
}

func newTestDevice(t *testing.T, role Role, userCallback DataCallback) (*Device, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	cfg := Config{Role: role, PeriodSizeInFrames: 4, PeriodCount: 3}
	switch role {
	case Playback, Loopback:
		cfg.Playback = monoDescriptor(8000)
	case Capture:
		cfg.Capture = monoDescriptor(8000)
	case Duplex:
		cfg.Playback = monoDescriptor(8000)
		cfg.Capture = monoDescriptor(8000)
	}
	d, err := New(fb, cfg, userCallback, nil)
	require.NoError(t, err)
	return d, fb
}

func TestLifecycleStateMachine(t *testing.T) {
	d, _ := newTestDevice(t, Playback, func(output, input []float32, frameCount int) {})
	require.Equal(t, StateStopped, d.State())

	// Stop on an already-stopped device is a reentrant no-op per spec §4.5.
	require.NoError(t, d.Stop())
	require.NoError(t, d.Start())
	require.Equal(t, StateStarted, d.State())
	// Start on an already-started device is likewise a reentrant no-op.
	require.NoError(t, d.Start())
	require.Equal(t, StateStarted, d.State())
	require.ErrorIs(t, d.Uninit(), ErrInvalidOperation)

	require.NoError(t, d.Stop())
	require.Equal(t, StateStopped, d.State())
	require.NoError(t, d.Uninit())
	require.Equal(t, StateUninitialized, d.State())
	require.ErrorIs(t, d.Stop(), ErrInvalidOperation)
	require.ErrorIs(t, d.Start(), ErrInvalidOperation)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	fb := &fakeBackend{}
	_, err := New(fb, Config{Role: Playback, PeriodSizeInFrames: 4}, func(o, i []float32, n int) {}, nil)
	require.ErrorIs(t, err, ErrInvalidArgs) // zero playback descriptor

	_, err = New(nil, Config{}, func(o, i []float32, n int) {}, nil)
	require.ErrorIs(t, err, ErrInvalidArgs)
}

func TestAsyncPlaybackRepacksArbitraryChunksIntoFixedPeriods(t *testing.T) {
	period := 0
	callCount := 0
	callback := func(output, input []float32, frameCount int) {
		callCount++
		period++
		for i := range output {
			output[i] = float32(period)
		}
	}
	d, fb := newTestDevice(t, Playback, callback)
	require.NoError(t, d.Start())

	out := make([]byte, 6*4) // backend asks for 6 frames, not a multiple of the period (4)
	fb.raw(out, nil, 6)

	require.Equal(t, 2, callCount)
	got := decodeF32(out)
	require.Equal(t, []float32{1, 1, 1, 1, 2, 2}, got)
}

func TestAsyncCaptureInvokesCallbackOncePerFullPeriod(t *testing.T) {
	var captured [][]float32
	callback := func(output, input []float32, frameCount int) {
		cp := make([]float32, len(input))
		copy(cp, input)
		captured = append(captured, cp)
	}
	d, fb := newTestDevice(t, Capture, callback)
	require.NoError(t, d.Start())

	in := make([]float32, 6)
	for i := range in {
		in[i] = float32(i + 1)
	}
	fb.raw(nil, encodeF32(in), 6)

	require.Len(t, captured, 1)
	require.Equal(t, []float32{1, 2, 3, 4}, captured[0])
}

func decodeF32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

func encodeF32(f []float32) []byte {
	b := make([]byte, len(f)*4)
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}
