// Package convert implements the data converter from spec §4.4: a single
// process(in, &in_frames, out, &out_frames) call composing format
// conversion (sampleformat), channel routing (channels) and resampling
// (resample) end to end.
package convert

import (
	"errors"
	"unsafe"

	"github.com/agalue/goma/channels"
	"github.com/agalue/goma/resample"
	"github.com/agalue/goma/sampleformat"
)

// ErrInvalidArgs is returned when a descriptor is zero/unknown.
var ErrInvalidArgs = errors.New("convert: invalid arguments")

// ErrInvalidOperation is returned for operations that don't make sense on
// this converter's current configuration (e.g. set_rate on a passthrough).
var ErrInvalidOperation = errors.New("convert: invalid operation")

// Config describes a data converter's fixed shape: the input and output
// sample format, channel count, channel map, mix mode, sample rate, and the
// dither/filtering options applied along the way.
type Config struct {
	FormatIn, FormatOut         sampleformat.Format
	ChannelsIn, ChannelsOut     int
	ChannelMapIn, ChannelMapOut channels.Map
	MixMode                     channels.MixMode
	CustomWeights               [][]float64
	SampleRateIn, SampleRateOut int
	Dither                      sampleformat.DitherMode
	AllowDynamicSampleRate      bool
	ResampleFilterOrder         int
}

// Converter is a configured, stateful instance of the pipeline described by
// a Config: it owns the channel router's weight matrix, the resampler's
// interpolation phase, and the format converter's dither state, so repeated
// Process calls on the same logical stream stay continuous.
type Converter struct {
	cfg Config

	router     *channels.Router
	resampler  *resample.Resampler
	inFmtConv  *sampleformat.Converter
	outFmtConv *sampleformat.Converter

	// channelsBeforeResample is true when channel conversion must happen
	// before resampling (channels_out < channels_in, cheaper to resample
	// fewer channels); false means resample first.
	channelsBeforeResample bool

	passthrough bool
	rateIn      int
	rateOut     int
}

// New builds a Converter from cfg, synthesizing the channel weight matrix
// and, if rates differ (or allow_dynamic_sample_rate is set), the
// resampler.
func New(cfg Config) (*Converter, error) {
	if !cfg.FormatIn.Valid() || !cfg.FormatOut.Valid() {
		return nil, ErrInvalidArgs
	}
	if cfg.ChannelsIn <= 0 || cfg.ChannelsOut <= 0 {
		return nil, ErrInvalidArgs
	}
	if cfg.SampleRateIn <= 0 || cfg.SampleRateOut <= 0 {
		return nil, ErrInvalidArgs
	}
	if !cfg.ChannelMapIn.Valid(cfg.ChannelsIn) || !cfg.ChannelMapOut.Valid(cfg.ChannelsOut) {
		return nil, ErrInvalidArgs
	}

	router, err := channels.New(cfg.ChannelMapIn, cfg.ChannelMapOut, cfg.MixMode, cfg.CustomWeights)
	if err != nil {
		return nil, err
	}

	c := &Converter{
		cfg:                    cfg,
		router:                 router,
		inFmtConv:              sampleformat.NewConverter(1),
		outFmtConv:             sampleformat.NewConverter(2),
		channelsBeforeResample: cfg.ChannelsOut < cfg.ChannelsIn,
		rateIn:                 cfg.SampleRateIn,
		rateOut:                cfg.SampleRateOut,
	}

	needsResampler := cfg.SampleRateIn != cfg.SampleRateOut || cfg.AllowDynamicSampleRate
	if needsResampler {
		c.resampler, err = resample.New(c.resampleChannels(), cfg.SampleRateIn, cfg.SampleRateOut, cfg.ResampleFilterOrder)
		if err != nil {
			return nil, err
		}
	}

	c.passthrough = cfg.FormatIn == cfg.FormatOut &&
		cfg.ChannelsIn == cfg.ChannelsOut &&
		router.IsPassthrough() &&
		c.resampler == nil

	return c, nil
}

// resampleChannels returns the channel count the resampler operates at,
// which depends on whether channel conversion happens before or after it.
func (c *Converter) resampleChannels() int {
	if c.channelsBeforeResample {
		return c.cfg.ChannelsOut
	}
	return c.cfg.ChannelsIn
}

// IsPassthrough reports whether Process reduces to a byte-for-byte copy.
func (c *Converter) IsPassthrough() bool { return c.passthrough }

// SetRate changes the converter's sample rate conversion ratio. It fails on
// a passthrough converter (spec §4.4): a passthrough has no resampler to
// retarget, and resurrecting one mid-stream would imply a format the
// caller never asked for.
func (c *Converter) SetRate(rateIn, rateOut int) error {
	if c.passthrough {
		return ErrInvalidOperation
	}
	if rateIn <= 0 || rateOut <= 0 {
		return ErrInvalidArgs
	}
	if c.resampler == nil {
		r, err := resample.New(c.resampleChannels(), rateIn, rateOut, c.cfg.ResampleFilterOrder)
		if err != nil {
			return err
		}
		c.resampler = r
	} else if err := c.resampler.SetRate(rateIn, rateOut); err != nil {
		return err
	}
	c.rateIn, c.rateOut = rateIn, rateOut
	return nil
}

// Process converts as many frames of in as fit into out, in place per the
// negotiated frame counts: *inFrames and *outFrames are updated to the
// frames actually consumed/produced, which may be less than what was
// offered/requested (the caller loops, feeding the remainder next call).
func (c *Converter) Process(in []byte, inFrames *int, out []byte, outFrames *int) error {
	available := *inFrames
	requested := *outFrames

	if c.passthrough {
		n := available
		if requested < n {
			n = requested
		}
		frameBytes := c.cfg.ChannelsIn * c.cfg.FormatIn.BytesPerSample()
		copy(out[:n*frameBytes], in[:n*frameBytes])
		*inFrames = n
		*outFrames = n
		return nil
	}

	inF32, err := c.toF32(in, available, c.cfg.ChannelsIn, c.cfg.FormatIn)
	if err != nil {
		return err
	}

	var midF32 []float32
	var consumed, produced int

	switch {
	case c.resampler == nil:
		n := available
		if requested < n {
			n = requested
		}
		midF32 = make([]float32, n*c.cfg.ChannelsOut)
		c.router.Route(midF32, inF32[:n*c.cfg.ChannelsIn], n)
		consumed, produced = n, n

	case c.channelsBeforeResample:
		routed := make([]float32, available*c.cfg.ChannelsOut)
		c.router.Route(routed, inF32, available)
		out32 := make([]float32, requested*c.cfg.ChannelsOut)
		inN, outN := available, requested
		if err := c.resampler.Process(routed, &inN, out32, &outN); err != nil {
			return err
		}
		midF32 = out32[:outN*c.cfg.ChannelsOut]
		consumed, produced = inN, outN

	default: // resample first, then convert channels
		out32 := make([]float32, requested*c.cfg.ChannelsIn)
		inN, outN := available, requested
		if err := c.resampler.Process(inF32, &inN, out32, &outN); err != nil {
			return err
		}
		midF32 = make([]float32, outN*c.cfg.ChannelsOut)
		c.router.Route(midF32, out32[:outN*c.cfg.ChannelsIn], outN)
		consumed, produced = inN, outN
	}

	if err := c.fromF32(out, midF32, produced, c.cfg.ChannelsOut, c.cfg.FormatOut); err != nil {
		return err
	}

	*inFrames = consumed
	*outFrames = produced
	return nil
}

// toF32 converts frameCount*channels samples from buf (format f) into a
// freshly allocated interleaved float32 slice, the working format every
// internal stage (router, resampler) operates in.
func (c *Converter) toF32(buf []byte, frameCount, channels int, f sampleformat.Format) ([]float32, error) {
	sampleCount := frameCount * channels
	f32Bytes := make([]byte, sampleCount*4)
	if err := c.inFmtConv.Convert(f32Bytes, buf, sampleCount, f, sampleformat.F32, sampleformat.DitherNone); err != nil {
		return nil, err
	}
	return bytesToF32(f32Bytes), nil
}

// fromF32 converts an interleaved float32 slice back into dst at format f,
// applying the converter's configured dither mode on any narrowing.
func (c *Converter) fromF32(dst []byte, src []float32, frameCount, channels int, f sampleformat.Format) error {
	sampleCount := frameCount * channels
	srcBytes := f32ToBytes(src[:sampleCount])
	return c.outFmtConv.Convert(dst, srcBytes, sampleCount, sampleformat.F32, f, c.cfg.Dither)
}

func bytesToF32(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}

func f32ToBytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}
