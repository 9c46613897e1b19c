// Command goma-deviceio is the device I/O test harness (spec §6): it opens
// one device in the requested role, drives it for a fixed duration with a
// generated waveform or noise source, optionally recording what passes
// through to a WAV file, and exits non-zero on any init/start failure.
//
// The backend positional argument is optional: when omitted, the harness
// falls back to the backend last recorded in its preferences file (see
// -prefs), then to the first backend that initializes successfully. The
// backend actually chosen is saved back to that file on every run.
//
// Usage (flags, if any, must precede the positional arguments):
//
//	goma-deviceio [flags] [file] [playback|capture|duplex|loopback] [backend] [sine|square|triangle|sawtooth|white|pink|brown]
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agalue/goma/backend/malgobackend"
	"github.com/agalue/goma/backend/nullbackend"
	"github.com/agalue/goma/channels"
	gomactx "github.com/agalue/goma/context"
	"github.com/agalue/goma/device"
	"github.com/agalue/goma/mixer"
	"github.com/agalue/goma/sampleformat"
	"github.com/agalue/goma/source"
	"github.com/agalue/goma/wav"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("goma-deviceio", flag.ContinueOnError)
	duration := fs.Duration("duration", 2*time.Second, "how long to drive the device")
	sampleRate := fs.Int("sample-rate", 48000, "sample rate in Hz")
	channelCount := fs.Int("channels", 1, "channel count")
	periodFrames := fs.Int("period-frames", 960, "fixed period size in frames")
	frequency := fs.Float64("frequency", 440.0, "waveform frequency in Hz")
	amplitude := fs.Float64("amplitude", 0.5, "generator amplitude")
	verbose := fs.Bool("verbose", false, "enable verbose context logging")
	prefsPath := fs.String("prefs", defaultPrefsPath(), "path to the backend/device preferences file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	positional := fs.Args()

	opts, err := parsePositional(positional)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	prefs, err := gomactx.LoadPreferences(*prefsPath)
	if err != nil {
		log.Printf("⚠️  failed to load preferences from %s: %v", *prefsPath, err)
	}
	preferred := opts.backend
	if preferred == "" {
		preferred = prefs.Backend
	}

	c, err := gomactx.Init(gomactx.Config{
		Backends: gomactx.SelectBackend(preferred, namedBackendFactories()),
		Verbose:  *verbose,
	})
	if err != nil {
		log.Printf("❌ context init failed: %v", err)
		return 1
	}
	defer c.Uninit()

	prefs.Backend = c.Backend().Name()
	if err := os.MkdirAll(filepath.Dir(*prefsPath), 0o755); err != nil {
		log.Printf("⚠️  failed to create preferences directory for %s: %v", *prefsPath, err)
	} else if err := gomactx.SavePreferences(*prefsPath, prefs); err != nil {
		log.Printf("⚠️  failed to save preferences to %s: %v", *prefsPath, err)
	}

	descriptor := device.FormatDescriptor{
		Format:     sampleformat.F32,
		Channels:   *channelCount,
		SampleRate: *sampleRate,
		ChannelMap: defaultChannelMap(*channelCount),
	}

	cfg := device.Config{
		Role:               opts.role,
		PeriodSizeInFrames: *periodFrames,
	}
	switch opts.role {
	case device.Playback, device.Loopback:
		cfg.Playback = descriptor
	case device.Capture:
		cfg.Capture = descriptor
	case device.Duplex:
		cfg.Playback = descriptor
		cfg.Capture = descriptor
	}

	var recorder *wav.Writer
	var recordFile *os.File
	if opts.file != "" {
		recordFile, err = os.Create(opts.file)
		if err != nil {
			log.Printf("❌ failed to create output file: %v", err)
			return 1
		}
		defer recordFile.Close()
		recorder, err = wav.NewWriter(recordFile, sampleformat.F32, *channelCount, *sampleRate)
		if err != nil {
			log.Printf("❌ failed to write WAV header: %v", err)
			return 1
		}
		defer recorder.Close()
	}

	var gen source.DataSource
	if opts.role == device.Playback || opts.role == device.Duplex {
		gen = newGenerator(opts.wave, *channelCount, *sampleRate, *amplitude, *frequency)
	}
	mx := mixer.New(*channelCount, *periodFrames)

	callback := func(output, input []float32, frameCount int) {
		switch opts.role {
		case device.Playback:
			if err := mx.Begin(frameCount); err != nil {
				return
			}
			mx.MixDataSource(gen, 1.0)
			mx.End(output)
			if recorder != nil {
				recorder.WriteFrames(f32Bytes(output[:frameCount**channelCount]))
			}
		case device.Capture:
			if recorder != nil {
				recorder.WriteFrames(f32Bytes(input[:frameCount**channelCount]))
			}
		case device.Duplex:
			if err := mx.Begin(frameCount); err != nil {
				return
			}
			mx.MixPCMFrames(input[:frameCount**channelCount], frameCount, 0.5)
			mx.MixDataSource(gen, 0.5)
			mx.End(output)
			if recorder != nil {
				recorder.WriteFrames(f32Bytes(output[:frameCount**channelCount]))
			}
		case device.Loopback:
			if recorder != nil {
				recorder.WriteFrames(f32Bytes(input[:frameCount**channelCount]))
			}
		}
	}

	dev, err := c.NewDevice(cfg, callback, func(n device.Notification) {
		log.Printf("📢 notification: %v", n)
	})
	if err != nil {
		log.Printf("❌ device init failed: %v", err)
		return 1
	}

	if err := dev.Start(); err != nil {
		log.Printf("❌ device start failed: %v", err)
		return 1
	}
	log.Printf("▶️  %s running for %s on backend %q", opts.role, *duration, c.Backend().Name())

	time.Sleep(*duration)

	if err := dev.Stop(); err != nil {
		log.Printf("❌ device stop failed: %v", err)
		return 1
	}
	if err := dev.Uninit(); err != nil {
		log.Printf("❌ device uninit failed: %v", err)
		return 1
	}

	log.Println("✅ done")
	return 0
}

type options struct {
	file    string
	role    device.Role
	backend string
	wave    string
}

func parsePositional(args []string) (options, error) {
	var opts options
	opts.wave = "sine"

	roles := map[string]device.Role{
		"playback": device.Playback,
		"capture":  device.Capture,
		"duplex":   device.Duplex,
		"loopback": device.Loopback,
	}
	waves := map[string]bool{
		"sine": true, "square": true, "triangle": true, "sawtooth": true,
		"white": true, "pink": true, "brown": true,
	}

	var roleSeen bool
	for i, arg := range args {
		if r, ok := roles[arg]; ok {
			opts.role = r
			roleSeen = true
			continue
		}
		if waves[arg] {
			opts.wave = arg
			continue
		}
		if i == 0 && !strings.Contains(arg, "=") {
			opts.file = arg
			continue
		}
		opts.backend = arg
	}
	if !roleSeen {
		return opts, fmt.Errorf("goma-deviceio: missing role (playback|capture|duplex|loopback)")
	}
	return opts, nil
}

// namedBackendFactories lists every backend this harness knows how to open,
// in default priority order (real transport first, null as the always-
// available fallback), paired with the name a preferences file or the
// backend positional argument selects them by.
func namedBackendFactories() []gomactx.NamedBackendFactory {
	return []gomactx.NamedBackendFactory{
		{Name: "malgo", Factory: func() (device.Backend, error) { return malgobackend.New(log.Printf) }},
		{Name: "null", Factory: func() (device.Backend, error) { return nullbackend.New(), nil }},
	}
}

// defaultPrefsPath places the preferences file in the user's config
// directory, falling back to the working directory if that's unavailable.
func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "goma-prefs.yaml"
	}
	return filepath.Join(dir, "goma", "prefs.yaml")
}

func newGenerator(wave string, channels, sampleRate int, amplitude, frequency float64) source.DataSource {
	switch wave {
	case "square":
		return source.NewWaveform(source.Square, channels, sampleRate, amplitude, frequency)
	case "triangle":
		return source.NewWaveform(source.Triangle, channels, sampleRate, amplitude, frequency)
	case "sawtooth":
		return source.NewWaveform(source.Sawtooth, channels, sampleRate, amplitude, frequency)
	case "white":
		return source.NewNoise(source.White, channels, sampleRate, 1, amplitude)
	case "pink":
		return source.NewNoise(source.Pink, channels, sampleRate, 1, amplitude)
	case "brown":
		return source.NewNoise(source.Brownian, channels, sampleRate, 1, amplitude)
	default:
		return source.NewWaveform(source.Sine, channels, sampleRate, amplitude, frequency)
	}
}

func defaultChannelMap(n int) channels.Map {
	switch n {
	case 1:
		return channels.MonoMap()
	case 2:
		return channels.StereoMap()
	default:
		m := make(channels.Map, n)
		if n > 0 {
			m[0] = channels.FrontLeft
		}
		if n > 1 {
			m[1] = channels.FrontRight
		}
		return m
	}
}

func f32Bytes(f []float32) []byte {
	b := make([]byte, len(f)*4)
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}
