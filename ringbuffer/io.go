package ringbuffer

// Write copies as many bytes of p into the ring buffer as fit, splitting
// across the wrap boundary if necessary, and returns the number written.
func (r *RingBuffer) Write(p []byte) int {
	written := 0
	for written < len(p) {
		span := r.AcquireWrite(len(p) - written)
		if len(span) == 0 {
			break
		}
		n := copy(span, p[written:])
		_ = r.CommitWrite(n)
		written += n
	}
	return written
}

// Read copies as many bytes out of the ring buffer into p as are
// available, splitting across the wrap boundary if necessary, and returns
// the number read.
func (r *RingBuffer) Read(p []byte) int {
	readN := 0
	for readN < len(p) {
		span := r.AcquireRead(len(p) - readN)
		if len(span) == 0 {
			break
		}
		n := copy(p[readN:], span)
		_ = r.CommitRead(n)
		readN += n
	}
	return readN
}
