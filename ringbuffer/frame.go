package ringbuffer

// FrameRing is a PCM-frame-oriented view over a byte RingBuffer: capacity
// and transfers are expressed in frames (one sample per channel) rather
// than raw bytes, which is what the device and async-helper layers reason
// about. This mirrors the "optional multi-sub-buffer layout" note in spec
// §4.7 for the common single-sub-buffer case.
type FrameRing struct {
	rb         *RingBuffer
	bytesPerFr int
}

// NewFrameRing allocates a frame-oriented ring buffer holding capacityFrames
// frames of bytesPerFrame bytes each (channels * bytes-per-sample).
func NewFrameRing(capacityFrames, bytesPerFrame int) (*FrameRing, error) {
	rb, err := New(capacityFrames * bytesPerFrame)
	if err != nil {
		return nil, err
	}
	return &FrameRing{rb: rb, bytesPerFr: bytesPerFrame}, nil
}

// WriteFrames writes as many whole frames from p as fit and returns the
// frame count written.
func (f *FrameRing) WriteFrames(p []byte) int {
	n := f.rb.Write(p[:len(p)-len(p)%f.bytesPerFr])
	return n / f.bytesPerFr
}

// ReadFrames reads as many whole frames into p as are available and
// returns the frame count read.
func (f *FrameRing) ReadFrames(p []byte) int {
	n := f.rb.Read(p[:len(p)-len(p)%f.bytesPerFr])
	return n / f.bytesPerFr
}

// AvailableFrames returns the number of whole frames currently buffered.
func (f *FrameRing) AvailableFrames() int {
	return f.rb.PointerDistance() / f.bytesPerFr
}

// CapacityFrames returns the total frame capacity.
func (f *FrameRing) CapacityFrames() int {
	return f.rb.Capacity() / f.bytesPerFr
}

// Reset discards all buffered frames.
func (f *FrameRing) Reset() { f.rb.Reset() }

// AcquireReadBytes exposes up to sizeHint bytes of the readable span
// directly, rounded down to a whole number of frames, for zero-copy
// consumers (e.g. source.RingSource's Mapper path).
func (f *FrameRing) AcquireReadBytes(sizeHint int) []byte {
	span := f.rb.AcquireRead(sizeHint)
	usable := len(span) - len(span)%f.bytesPerFr
	return span[:usable]
}

// CommitReadFrames commits frameCount frames previously returned by
// AcquireReadBytes.
func (f *FrameRing) CommitReadFrames(frameCount int) error {
	return f.rb.CommitRead(frameCount * f.bytesPerFr)
}

// AcquireWriteBytes exposes up to sizeHint bytes of the writable span,
// rounded down to a whole number of frames.
func (f *FrameRing) AcquireWriteBytes(sizeHint int) []byte {
	span := f.rb.AcquireWrite(sizeHint)
	usable := len(span) - len(span)%f.bytesPerFr
	return span[:usable]
}

// CommitWriteFrames commits frameCount frames previously written into the
// span returned by AcquireWriteBytes.
func (f *FrameRing) CommitWriteFrames(frameCount int) error {
	return f.rb.CommitWrite(frameCount * f.bytesPerFr)
}

// BytesPerFrame returns the frame size in bytes.
func (f *FrameRing) BytesPerFrame() int { return f.bytesPerFr }
