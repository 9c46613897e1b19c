// Package wav implements a minimal RIFF/WAVE writer for the test-harness
// CLI's recording mode — PCM or IEEE-float formats only, no decoder (spec
// §1 excludes decoders from scope; a harness writer is not a decoder).
package wav

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/agalue/goma/sampleformat"
)

// ErrInvalidArgs is returned for a zero/unsupported format or channel count.
var ErrInvalidArgs = errors.New("wav: invalid arguments")

const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// Writer streams interleaved PCM frames into a RIFF/WAVE container. The
// header is written with placeholder sizes by NewWriter and patched in place by
// Close, the same two-pass approach a streaming encoder needs when the
// total frame count isn't known up front.
type Writer struct {
	w             io.WriteSeeker
	format        sampleformat.Format
	channels      int
	sampleRate    int
	dataBytes     uint32
	bytesPerFrame int
}

// NewWriter writes a RIFF/WAVE header to w and returns a Writer ready to
// accept frames via WriteFrames.
func NewWriter(w io.WriteSeeker, format sampleformat.Format, channels, sampleRate int) (*Writer, error) {
	if !format.Valid() || channels <= 0 || sampleRate <= 0 {
		return nil, ErrInvalidArgs
	}
	wr := &Writer{
		w:             w,
		format:        format,
		channels:      channels,
		sampleRate:    sampleRate,
		bytesPerFrame: format.BytesPerSample() * channels,
	}
	if err := wr.writeHeader(); err != nil {
		return nil, err
	}
	return wr, nil
}

func (wr *Writer) audioFormat() uint16 {
	if wr.format == sampleformat.F32 {
		return formatIEEEFloat
	}
	return formatPCM
}

func (wr *Writer) writeHeader() error {
	bitsPerSample := uint16(wr.format.BytesPerSample() * 8)
	byteRate := uint32(wr.sampleRate * wr.bytesPerFrame)
	blockAlign := uint16(wr.bytesPerFrame)

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36) // patched by Close
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], wr.audioFormat())
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(wr.channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(wr.sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], 0) // patched by Close

	_, err := wr.w.Write(hdr[:])
	return err
}

// WriteFrames appends raw interleaved sample bytes (already in the
// writer's declared format) as audio data.
func (wr *Writer) WriteFrames(data []byte) error {
	if _, err := wr.w.Write(data); err != nil {
		return err
	}
	wr.dataBytes += uint32(len(data))
	return nil
}

// Close patches the RIFF and data chunk sizes now that the total byte count
// is known, the way a streaming WAVE encoder must once the last frame has
// been written.
func (wr *Writer) Close() error {
	if _, err := wr.w.Seek(4, io.SeekStart); err != nil {
		return err
	}
	var riffSize [4]byte
	binary.LittleEndian.PutUint32(riffSize[:], 36+wr.dataBytes)
	if _, err := wr.w.Write(riffSize[:]); err != nil {
		return err
	}

	if _, err := wr.w.Seek(40, io.SeekStart); err != nil {
		return err
	}
	var dataSize [4]byte
	binary.LittleEndian.PutUint32(dataSize[:], wr.dataBytes)
	_, err := wr.w.Write(dataSize[:])
	return err
}
