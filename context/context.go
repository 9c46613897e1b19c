// Package context implements the root object every device is created
// through: backend probing in priority order, device enumeration, and the
// per-context logger (spec §4.5/§6). It owns the backend connections a
// process holds; devices may not outlive the Context that created them.
package context

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/agalue/goma/backend/nullbackend"
	"github.com/agalue/goma/device"
)

// ErrNoBackend is returned when every backend in priority order fails to
// initialize.
var ErrNoBackend = errors.New("context: no backend available")

// Logger wraps a *log.Logger so a Context can redirect or silence its own
// status lines without every caller threading a logger through.
type Logger struct {
	*log.Logger
	verbose bool
}

// NewLogger returns a Logger writing to w; verbose gates the chattier status
// lines (backend probing, device enumeration) the way Config.Verbose gates
// the teacher's own log.Printf calls.
func NewLogger(w *log.Logger, verbose bool) *Logger {
	if w == nil {
		w = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Logger{Logger: w, verbose: verbose}
}

func (l *Logger) status(format string, args ...any) {
	if l == nil {
		return
	}
	l.Printf(format, args...)
}

func (l *Logger) verboseStatus(format string, args ...any) {
	if l == nil || !l.verbose {
		return
	}
	l.Printf(format, args...)
}

// BackendFactory constructs a device.Backend, returning an error if the
// backend couldn't be probed (e.g. malgo finding no host audio API).
type BackendFactory func() (device.Backend, error)

// DeviceInfo describes one enumerated playback or capture endpoint.
type DeviceInfo struct {
	Name      string
	IsDefault bool
}

// Enumerator is implemented by backends that can list their devices.
// Backends that can't (the null backend has exactly one implicit device)
// simply aren't asserted to this interface.
type Enumerator interface {
	EnumeratePlayback() ([]DeviceInfo, error)
	EnumerateCapture() ([]DeviceInfo, error)
}

// Config selects which backends to try, in priority order, and how the
// context logs.
type Config struct {
	// Backends lists factories to probe in order; the first one that
	// initializes successfully becomes the context's active backend. A nil
	// Backends falls back to a single null-backend factory so a Context is
	// always constructible even with no real audio transport registered.
	Backends []BackendFactory
	Verbose  bool
	Logger   *log.Logger
}

// Context is the root object devices are opened through. It holds exactly
// one active backend, chosen by probing Config.Backends in order.
type Context struct {
	backend device.Backend
	log     *Logger
}

// Init probes cfg.Backends in priority order and returns a Context bound to
// the first one that initializes successfully. A nil/empty cfg.Backends
// falls back to a single null-backend factory (see Config.Backends), so
// Init only returns ErrNoBackend when every explicitly supplied backend
// fails (spec §4.5 failure semantics).
func Init(cfg Config) (*Context, error) {
	l := NewLogger(cfg.Logger, cfg.Verbose)
	factories := cfg.Backends
	if len(factories) == 0 {
		factories = []BackendFactory{func() (device.Backend, error) { return nullbackend.New(), nil }}
	}

	var lastErr error
	for _, factory := range factories {
		b, err := factory()
		if err != nil {
			l.verboseStatus("⚠️  backend probe failed: %v", err)
			lastErr = err
			continue
		}
		l.status("🔌 context initialized on backend %q", b.Name())
		return &Context{backend: b, log: l}, nil
	}
	return nil, fmt.Errorf("%w: last error: %v", ErrNoBackend, lastErr)
}

// Backend returns the context's active backend, for device.New.
func (c *Context) Backend() device.Backend { return c.backend }

// Uninit releases any resources the active backend holds (for backends,
// like malgobackend, whose factory returned a closable handle). Backends
// without a Close method are no-ops here.
func (c *Context) Uninit() error {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
	c.log.status("🔌 context uninitialized")
	return nil
}

// EnumerateDevices lists the active backend's playback and capture
// endpoints, if it implements Enumerator. Backends that don't (nullbackend)
// report a single synthetic default device per direction.
func (c *Context) EnumerateDevices() (playback, capture []DeviceInfo, err error) {
	if en, ok := c.backend.(Enumerator); ok {
		playback, err = en.EnumeratePlayback()
		if err != nil {
			return nil, nil, err
		}
		capture, err = en.EnumerateCapture()
		return playback, capture, err
	}
	def := []DeviceInfo{{Name: c.backend.Name() + " default", IsDefault: true}}
	return def, def, nil
}

// NewDevice opens a device on the context's active backend.
func (c *Context) NewDevice(cfg device.Config, userCallback device.DataCallback, notify device.NotificationCallback) (*device.Device, error) {
	return device.New(c.backend, cfg, userCallback, notify)
}
