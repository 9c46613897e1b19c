// Package device implements the device lifecycle and backend vtable from
// spec §4.5/§4.6: a role (playback/capture/duplex/loopback), a state
// machine enforcing the legal transition graph, and an async helper that
// repacks whatever chunk size a backend delivers into the fixed frame
// count a user callback expects.
package device

import (
	"errors"
	"sync"

	"github.com/agalue/goma/channels"
	"github.com/agalue/goma/sampleformat"
)

// Role is the device's direction.
type Role int

const (
	Playback Role = iota
	Capture
	Duplex
	Loopback
)

func (r Role) String() string {
	switch r {
	case Playback:
		return "playback"
	case Capture:
		return "capture"
	case Duplex:
		return "duplex"
	case Loopback:
		return "loopback"
	default:
		return "unknown"
	}
}

// State is a point in the device lifecycle's state machine:
// stopped <-> starting -> started -> stopping -> stopped.
type State int

const (
	StateUninitialized State = iota
	StateStopped
	StateStarting
	StateStarted
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateStarted:
		return "started"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Notification identifies an out-of-band device event delivered to a
// device's optional notification callback.
type Notification int

const (
	NotificationRerouted Notification = iota
	NotificationStopped
	NotificationInterruptionBegan
	NotificationInterruptionEnded
)

// ErrInvalidOperation is returned for a lifecycle call that isn't legal in
// the device's current state (e.g. Start on an already-started device).
var ErrInvalidOperation = errors.New("device: invalid operation")

// ErrInvalidArgs is returned for a zero/unknown descriptor or backend.
var ErrInvalidArgs = errors.New("device: invalid arguments")

// FormatDescriptor is the (format, channels, sample_rate, channel_map)
// tuple describing one direction of a device's data.
type FormatDescriptor struct {
	Format     sampleformat.Format
	Channels   int
	SampleRate int
	ChannelMap channels.Map
}

func (d FormatDescriptor) valid() bool {
	return d.Format.Valid() && d.Channels > 0 && d.SampleRate > 0 && d.ChannelMap.Valid(d.Channels)
}

// Config describes a device to open: its role, the requested format for
// each direction it uses, and the requested period shape.
type Config struct {
	Role               Role
	Playback           FormatDescriptor // used when Role is Playback, Duplex, or Loopback
	Capture            FormatDescriptor // used when Role is Capture or Duplex
	PeriodSizeInFrames int
	PeriodCount        int
}

// DataCallback is the user's real-time audio callback. output and input
// are interleaved float32 frames sized frameCount*channels for whichever
// directions the device's role uses; the other is nil.
type DataCallback func(output, input []float32, frameCount int)

// NotificationCallback receives out-of-band device events.
type NotificationCallback func(Notification)

// BackendDevice is the handle a Backend hands back for one opened device.
// It delivers audio via rawCallback, whose frame count is whatever the
// backend's own transport chunks in (not necessarily
// Config.PeriodSizeInFrames); Device's async helper repacks it.
type BackendDevice interface {
	Start() error
	Stop() error
	Uninit() error
	ObtainedPlayback() FormatDescriptor
	ObtainedCapture() FormatDescriptor
}

// RawCallback is the backend-facing callback shape: whatever chunk size
// the transport delivers, in bytes of the obtained format.
type RawCallback func(output, input []byte, frameCount int)

// Backend is the vtable contract a concrete transport (the null backend,
// the malgo backend, ...) implements to open devices (spec §4.5).
type Backend interface {
	Name() string
	OpenDevice(cfg Config, raw RawCallback) (BackendDevice, error)
}

// Device owns a backend handle, its negotiated format descriptors, and the
// lifecycle state machine. The worker thread (here, the backend's own
// callback goroutine) lives for the device's lifetime once Start succeeds.
type Device struct {
	mu           sync.Mutex
	backend      Backend
	backendDev   BackendDevice
	cfg          Config
	state        State
	notify       NotificationCallback
	userCallback DataCallback

	playbackAsync *asyncHelper
	captureAsync  *asyncHelper
}

// New opens a device on backend per cfg. The returned Device starts in
// StateStopped: opening a device handle is the Go-level equivalent of the
// reference library's ma_device_init, which leaves the device stopped
// until Start is called explicitly.
func New(backend Backend, cfg Config, userCallback DataCallback, notify NotificationCallback) (*Device, error) {
	if backend == nil || userCallback == nil {
		return nil, ErrInvalidArgs
	}
	switch cfg.Role {
	case Playback, Loopback:
		if !cfg.Playback.valid() {
			return nil, ErrInvalidArgs
		}
	case Capture:
		if !cfg.Capture.valid() {
			return nil, ErrInvalidArgs
		}
	case Duplex:
		if !cfg.Playback.valid() || !cfg.Capture.valid() {
			return nil, ErrInvalidArgs
		}
	default:
		return nil, ErrInvalidArgs
	}
	if cfg.PeriodSizeInFrames <= 0 {
		return nil, ErrInvalidArgs
	}

	d := &Device{
		backend:      backend,
		cfg:          cfg,
		state:        StateUninitialized,
		notify:       notify,
		userCallback: userCallback,
	}

	if cfg.Role == Playback || cfg.Role == Loopback || cfg.Role == Duplex {
		d.playbackAsync = newAsyncHelper(cfg.Playback.Channels, cfg.PeriodSizeInFrames)
	}
	if cfg.Role == Capture || cfg.Role == Duplex {
		d.captureAsync = newAsyncHelper(cfg.Capture.Channels, cfg.PeriodSizeInFrames)
	}

	backendDev, err := backend.OpenDevice(cfg, d.rawCallback)
	if err != nil {
		return nil, err
	}
	d.backendDev = backendDev
	d.state = StateStopped
	return d, nil
}

// State returns the device's current lifecycle state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start transitions the device from stopped to started, starting the
// backend transport. Per spec §4.5, a reentrant call while already started
// returns nil without effect; it fails with ErrInvalidOperation only for a
// genuinely illegal transition (starting while stopping, or after Uninit).
func (d *Device) Start() error {
	d.mu.Lock()
	switch d.state {
	case StateStarted:
		d.mu.Unlock()
		return nil
	case StateStopped:
		d.state = StateStarting
		d.mu.Unlock()
	default:
		d.mu.Unlock()
		return ErrInvalidOperation
	}

	if err := d.backendDev.Start(); err != nil {
		d.mu.Lock()
		d.state = StateStopped
		d.mu.Unlock()
		return err
	}

	d.mu.Lock()
	d.state = StateStarted
	d.mu.Unlock()
	return nil
}

// Stop transitions the device from started back to stopped, stopping the
// backend transport. Per spec §4.5, a reentrant call while already stopped
// returns nil without effect; it fails with ErrInvalidOperation only for a
// genuinely illegal transition (stopping while starting, or after Uninit).
func (d *Device) Stop() error {
	d.mu.Lock()
	switch d.state {
	case StateStopped:
		d.mu.Unlock()
		return nil
	case StateStarted:
		d.state = StateStopping
		d.mu.Unlock()
	default:
		d.mu.Unlock()
		return ErrInvalidOperation
	}

	err := d.backendDev.Stop()

	d.mu.Lock()
	d.state = StateStopped
	d.mu.Unlock()

	if d.notify != nil {
		d.notify(NotificationStopped)
	}
	return err
}

// Uninit releases the device's backend handle. It fails with
// ErrInvalidOperation unless the device is currently stopped.
func (d *Device) Uninit() error {
	d.mu.Lock()
	if d.state != StateStopped {
		d.mu.Unlock()
		return ErrInvalidOperation
	}
	d.state = StateUninitialized
	d.mu.Unlock()
	return d.backendDev.Uninit()
}

// ObtainedPlayback and ObtainedCapture return the format descriptors the
// backend actually negotiated, which may differ from what was requested.
func (d *Device) ObtainedPlayback() FormatDescriptor { return d.backendDev.ObtainedPlayback() }
func (d *Device) ObtainedCapture() FormatDescriptor  { return d.backendDev.ObtainedCapture() }

// rawCallback is the entry point the backend invokes with whatever chunk
// size its transport delivers; it routes through the async helper(s) so
// the user callback always sees exactly cfg.PeriodSizeInFrames frames.
func (d *Device) rawCallback(output, input []byte, frameCount int) {
	switch d.cfg.Role {
	case Playback, Loopback:
		d.playbackAsync.fillPlayback(output, frameCount, d.userCallback)
	case Capture:
		d.captureAsync.pushCapture(input, frameCount, d.userCallback)
	case Duplex:
		// Duplex fuses both directions into one user callback per spec
		// §3: capture is buffered first, then handed to the user callback
		// alongside a freshly pulled playback buffer of the same size.
		d.captureAsync.pushCaptureDuplex(input, frameCount, d.playbackAsync, output, d.userCallback)
	}
}
