package sampleformat

// Interleave packs frameCount frames from one buffer per channel (src) into
// a single interleaved destination buffer. Each element of src must hold at
// least frameCount samples in format f. This is a pure shuffle: frame count
// is preserved.
func Interleave(dst []byte, src [][]byte, frameCount, channels int, f Format) {
	bps := f.BytesPerSample()
	for frame := 0; frame < frameCount; frame++ {
		for ch := 0; ch < channels; ch++ {
			srcOff := frame * bps
			dstOff := (frame*channels + ch) * bps
			copy(dst[dstOff:dstOff+bps], src[ch][srcOff:srcOff+bps])
		}
	}
}

// Deinterleave is the inverse of Interleave: it splits an interleaved
// buffer into one contiguous buffer per channel.
func Deinterleave(dst [][]byte, src []byte, frameCount, channels int, f Format) {
	bps := f.BytesPerSample()
	for frame := 0; frame < frameCount; frame++ {
		for ch := 0; ch < channels; ch++ {
			srcOff := (frame*channels + ch) * bps
			dstOff := frame * bps
			copy(dst[ch][dstOff:dstOff+bps], src[srcOff:srcOff+bps])
		}
	}
}
