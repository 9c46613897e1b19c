// Package malgobackend implements device.Backend on top of malgo
// (github.com/gen2brain/malgo), the real cgo binding to the reference
// library this engine's spec was modeled on. It is the concrete backend
// most users of this module reach for; nullbackend exists alongside it for
// hardware-free tests and headless tooling.
package malgobackend

import (
	"fmt"

	"github.com/agalue/goma/device"
	"github.com/agalue/goma/sampleformat"
	"github.com/gen2brain/malgo"
)

// Backend wraps a single malgo.AllocatedContext, shared across every
// device it opens, matching the reference library's one-context-many-
// devices ownership model.
type Backend struct {
	ctx *malgo.AllocatedContext
}

// New initializes a malgo context using the host's default backend
// priority order. logf, if non-nil, receives the context's internal log
// messages (the same hookup the retrieval pack's voice-assistant example
// uses log.Printf for).
func New(logf func(format string, args ...any)) (*Backend, error) {
	var logCallback malgo.LogProc
	if logf != nil {
		logCallback = func(message string) { logf("malgo: %s", message) }
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, logCallback)
	if err != nil {
		return nil, fmt.Errorf("malgobackend: init context: %w", err)
	}
	return &Backend{ctx: ctx}, nil
}

func (b *Backend) Name() string { return "malgo" }

// Close releases the underlying context. Call it only after every device
// opened on this backend has been Uninit'd.
func (b *Backend) Close() {
	if b.ctx != nil {
		_ = b.ctx.Uninit()
		b.ctx.Free()
		b.ctx = nil
	}
}

func toMalgoFormat(f sampleformat.Format) malgo.FormatType {
	switch f {
	case sampleformat.U8:
		return malgo.FormatU8
	case sampleformat.S16:
		return malgo.FormatS16
	case sampleformat.S24:
		return malgo.FormatS24
	case sampleformat.S32:
		return malgo.FormatS32
	default:
		return malgo.FormatF32
	}
}

func fromMalgoFormat(f malgo.FormatType) sampleformat.Format {
	switch f {
	case malgo.FormatU8:
		return sampleformat.U8
	case malgo.FormatS16:
		return sampleformat.S16
	case malgo.FormatS24:
		return sampleformat.S24
	case malgo.FormatS32:
		return sampleformat.S32
	default:
		return sampleformat.F32
	}
}

func toMalgoDeviceType(r device.Role) malgo.DeviceType {
	switch r {
	case device.Capture:
		return malgo.Capture
	case device.Duplex:
		return malgo.Duplex
	case device.Loopback:
		return malgo.Loopback
	default:
		return malgo.Playback
	}
}

// OpenDevice configures and initializes a malgo device for cfg, adapting
// malgo's byte-oriented, uint32-framecount callback into device.RawCallback.
func (b *Backend) OpenDevice(cfg device.Config, raw device.RawCallback) (device.BackendDevice, error) {
	deviceConfig := malgo.DefaultDeviceConfig(toMalgoDeviceType(cfg.Role))

	if cfg.Role == device.Playback || cfg.Role == device.Duplex || cfg.Role == device.Loopback {
		deviceConfig.Playback.Format = toMalgoFormat(cfg.Playback.Format)
		deviceConfig.Playback.Channels = uint32(cfg.Playback.Channels)
		deviceConfig.SampleRate = uint32(cfg.Playback.SampleRate)
	}
	if cfg.Role == device.Capture || cfg.Role == device.Duplex {
		deviceConfig.Capture.Format = toMalgoFormat(cfg.Capture.Format)
		deviceConfig.Capture.Channels = uint32(cfg.Capture.Channels)
		if cfg.Role == device.Capture {
			deviceConfig.SampleRate = uint32(cfg.Capture.SampleRate)
		}
	}
	deviceConfig.PeriodSizeInFrames = uint32(cfg.PeriodSizeInFrames)
	if cfg.PeriodCount > 0 {
		deviceConfig.Periods = uint32(cfg.PeriodCount)
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			raw(pOutput, pInput, int(frameCount))
		},
	}

	dev, err := malgo.InitDevice(b.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("malgobackend: init device: %w", err)
	}

	return &malgoDevice{dev: dev, cfg: cfg}, nil
}

type malgoDevice struct {
	dev *malgo.Device
	cfg device.Config
}

func (d *malgoDevice) Start() error { return d.dev.Start() }
func (d *malgoDevice) Stop() error  { return d.dev.Stop() }
func (d *malgoDevice) Uninit() error {
	d.dev.Uninit()
	return nil
}

// ObtainedPlayback and ObtainedCapture report what the backend actually
// negotiated. malgo exposes the obtained config on the device itself once
// initialized; channel maps aren't part of that surface, so the requested
// map is carried through unchanged.
func (d *malgoDevice) ObtainedPlayback() device.FormatDescriptor {
	fd := d.cfg.Playback
	if pc := d.dev.PlaybackChannels(); pc > 0 {
		fd.Channels = int(pc)
	}
	if sr := d.dev.SampleRate(); sr > 0 {
		fd.SampleRate = int(sr)
	}
	return fd
}

func (d *malgoDevice) ObtainedCapture() device.FormatDescriptor {
	fd := d.cfg.Capture
	if cc := d.dev.CaptureChannels(); cc > 0 {
		fd.Channels = int(cc)
	}
	if sr := d.dev.SampleRate(); sr > 0 {
		fd.SampleRate = int(sr)
	}
	return fd
}
