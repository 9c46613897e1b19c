// Package nullbackend implements a hardware-free device.Backend: a
// software timer drives the callback at the configured period rate, so
// tests and headless tooling can exercise the full device/mixer pipeline
// without real audio hardware. It mirrors the shape of the reference
// library's "null" backend, used for the same purpose.
package nullbackend

import (
	"sync"
	"time"

	"github.com/agalue/goma/device"
)

// Backend is a device.Backend that synthesizes silence (playback) or
// silence-filled buffers (capture) on a software ticker instead of talking
// to real hardware.
type Backend struct{}

// New creates a null backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "null" }

func (b *Backend) OpenDevice(cfg device.Config, raw device.RawCallback) (device.BackendDevice, error) {
	interval := periodInterval(cfg)
	return &nullDevice{cfg: cfg, raw: raw, interval: interval}, nil
}

// periodInterval derives the wall-clock duration one period should occupy
// from the configured sample rate, so the null backend paces callbacks
// realistically instead of spinning as fast as possible.
func periodInterval(cfg device.Config) time.Duration {
	rate := cfg.Playback.SampleRate
	if rate == 0 {
		rate = cfg.Capture.SampleRate
	}
	if rate == 0 {
		rate = 48000
	}
	return time.Second * time.Duration(cfg.PeriodSizeInFrames) / time.Duration(rate)
}

type nullDevice struct {
	cfg      device.Config
	raw      device.RawCallback
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func (d *nullDevice) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.running = true
	go d.loop(d.stop, d.done)
	return nil
}

func (d *nullDevice) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	playbackBPF := d.cfg.Playback.Channels * 4
	captureBPF := d.cfg.Capture.Channels * 4
	frames := d.cfg.PeriodSizeInFrames

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			var out, in []byte
			if playbackBPF > 0 {
				out = make([]byte, frames*playbackBPF)
			}
			if captureBPF > 0 {
				in = make([]byte, frames*captureBPF) // silence: capturing nothing
			}
			d.raw(out, in, frames)
		}
	}
}

func (d *nullDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	close(d.stop)
	<-d.done
	d.running = false
	return nil
}

func (d *nullDevice) Uninit() error { return nil }

func (d *nullDevice) ObtainedPlayback() device.FormatDescriptor { return d.cfg.Playback }
func (d *nullDevice) ObtainedCapture() device.FormatDescriptor  { return d.cfg.Capture }
