package source

// Buffer is a finite in-memory PCM data source: the data converter's
// typical stand-in for "a decoded file", and a convenient source for
// tests. Frames are stored as interleaved float32.
type Buffer struct {
	frames     []float32
	channels   int
	sampleRate int
	cursor     int64
}

// NewBuffer wraps pre-decoded interleaved float32 frames as a data source.
func NewBuffer(frames []float32, channels, sampleRate int) *Buffer {
	return &Buffer{frames: frames, channels: channels, sampleRate: sampleRate}
}

func (b *Buffer) Channels() int   { return b.channels }
func (b *Buffer) SampleRate() int { return b.sampleRate }

func (b *Buffer) lengthFrames() int64 {
	if b.channels == 0 {
		return 0
	}
	return int64(len(b.frames) / b.channels)
}

func (b *Buffer) GetLength() (int64, error) { return b.lengthFrames(), nil }

func (b *Buffer) GetCursor() (int64, error) { return b.cursor, nil }

func (b *Buffer) Seek(frame int64) error {
	if frame < 0 || frame > b.lengthFrames() {
		return ErrNotImplemented
	}
	b.cursor = frame
	return nil
}

// Read copies up to frameCount frames starting at the cursor. When the
// buffer is exhausted mid-call and loop is true, it wraps to frame 0 and
// keeps filling, per spec §4.8's looping rule; when loop is false it
// returns ErrAtEnd with the frames produced so far.
func (b *Buffer) Read(dst []float32, frameCount int, loop bool) (int, error) {
	total := b.lengthFrames()
	produced := 0
	for produced < frameCount {
		if b.cursor >= total {
			if !loop {
				return produced, ErrAtEnd
			}
			b.cursor = 0
			if total == 0 {
				return produced, ErrAtEnd
			}
		}
		remaining := int(total - b.cursor)
		n := frameCount - produced
		if n > remaining {
			n = remaining
		}
		srcOff := int(b.cursor) * b.channels
		dstOff := produced * b.channels
		copy(dst[dstOff:dstOff+n*b.channels], b.frames[srcOff:srcOff+n*b.channels])
		b.cursor += int64(n)
		produced += n
	}
	return produced, nil
}

// Map exposes the buffer's remaining frames directly, implementing Mapper
// for a true zero-copy path (spec §4.8).
func (b *Buffer) Map(frameCount int) ([]float32, int, error) {
	total := b.lengthFrames()
	remaining := int(total - b.cursor)
	if frameCount > remaining {
		frameCount = remaining
	}
	off := int(b.cursor) * b.channels
	return b.frames[off : off+frameCount*b.channels], frameCount, nil
}

// Unmap advances the cursor by the frame count the caller consumed from
// the slice returned by Map.
func (b *Buffer) Unmap(frameCount int) error {
	b.cursor += int64(frameCount)
	return nil
}
