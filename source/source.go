// Package source defines the data-source trait (spec §4.8) used uniformly
// by waveform and noise generators, PCM buffers, and ring-buffer adapters,
// and implements the concrete generator types.
package source

import "errors"

// ErrNotImplemented is returned by capability methods a given source
// doesn't support (e.g. GetLength on an infinite generator).
var ErrNotImplemented = errors.New("source: not implemented")

// ErrAtEnd is returned by Read when a finite source has been exhausted and
// loop was false.
var ErrAtEnd = errors.New("source: at end")

// DataSource is the uniform pull interface every audio producer in the
// engine implements: file decoders, PCM buffers, waveforms, noise
// generators, and ring-buffer adapters.
//
// Read is always in terms of interleaved float32 frames; format conversion
// to/from a source's native encoding is the data converter's job, not the
// source's.
type DataSource interface {
	// Read fills dst (frameCount*Channels() floats) and returns the number
	// of frames actually produced. When loop is true and the source would
	// otherwise exhaust mid-buffer, it seeks to frame 0 and keeps filling
	// within the same call. When loop is false and the source exhausts, it
	// returns (framesRead, ErrAtEnd) with framesRead possibly < frameCount.
	Read(dst []float32, frameCount int, loop bool) (int, error)

	// Seek repositions the read cursor to the given frame. May return
	// ErrNotImplemented.
	Seek(frame int64) error

	// Channels and SampleRate describe the source's native format.
	Channels() int
	SampleRate() int

	// GetCursor returns the current frame position. May return
	// ErrNotImplemented.
	GetCursor() (int64, error)

	// GetLength returns the total frame count for finite sources. May
	// return ErrNotImplemented for infinite sources.
	GetLength() (int64, error)
}

// Mapper is an optional zero-copy extension: sources that can expose a
// direct pointer to their internal buffer implement it, and the core falls
// back to Read when a source doesn't.
type Mapper interface {
	// Map returns a slice of up to frameCount frames directly backed by the
	// source's internal storage, which must not be mutated by the caller
	// for formats where this is unsafe to share.
	Map(frameCount int) (data []float32, actualFrames int, err error)
	// Unmap signals that frameCount frames returned by the prior Map call
	// have been consumed.
	Unmap(frameCount int) error
}

// ReadFrames is the uniform entry point the mixer and data converter use:
// it calls Map/Unmap when ds implements Mapper, and falls back to Read
// otherwise, per spec §4.8. When the mapped span is shorter than
// frameCount, the remainder is filled through Read, so looping and
// ErrAtEnd behave the same on both paths.
func ReadFrames(ds DataSource, dst []float32, frameCount int, loop bool) (int, error) {
	if m, ok := ds.(Mapper); ok {
		data, n, err := m.Map(frameCount)
		if err != nil {
			return 0, err
		}
		copy(dst[:n*ds.Channels()], data)
		if uerr := m.Unmap(n); uerr != nil {
			return n, uerr
		}
		if n < frameCount {
			rest, rerr := ds.Read(dst[n*ds.Channels():], frameCount-n, loop)
			return n + rest, rerr
		}
		return n, nil
	}
	return ds.Read(dst, frameCount, loop)
}
