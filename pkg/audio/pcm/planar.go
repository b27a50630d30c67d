package pcm

import (
	"fmt"
	"time"
)

// Planar holds decoded audio as one float32 slice per channel.
//
// All channels of a valid buffer have the same length. Sample values are
// nominally in [-1, 1] but decoders may overshoot; Quantize clamps them.
type Planar struct {
	SampleRate int
	Channels   [][]float32
}

// NewPlanar allocates a silent buffer with the given format and frame count.
func NewPlanar(f Format, frames int) *Planar {
	chs := make([][]float32, f.Channels)
	for i := range chs {
		chs[i] = make([]float32, frames)
	}
	return &Planar{SampleRate: f.SampleRate, Channels: chs}
}

// Format returns the sample rate and channel count of the buffer.
func (p *Planar) Format() Format {
	return Format{SampleRate: p.SampleRate, Channels: len(p.Channels)}
}

// Frames returns the number of samples in each channel. For a buffer that
// violates the equal length invariant it returns the longest channel.
func (p *Planar) Frames() int {
	n := 0
	for _, ch := range p.Channels {
		n = max(n, len(ch))
	}
	return n
}

// Duration returns the playback time of the buffer.
func (p *Planar) Duration() time.Duration {
	return p.Format().Duration(int64(p.Frames()))
}

// Validate checks the format and the equal length invariant.
func (p *Planar) Validate() error {
	if err := p.Format().Validate(); err != nil {
		return err
	}
	n := len(p.Channels[0])
	for i, ch := range p.Channels[1:] {
		if len(ch) != n {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrChannelLength, i+1, len(ch), n)
		}
	}
	return nil
}

// Pad extends every channel shorter than the longest one with silence.
func (p *Planar) Pad() {
	n := p.Frames()
	for i, ch := range p.Channels {
		if len(ch) < n {
			p.Channels[i] = append(ch, make([]float32, n-len(ch))...)
		}
	}
}

// Interleave quantizes the buffer into frame-major int16 samples:
// [ch0_s0, ch1_s0, ..., chN_s0, ch0_s1, ...].
func (p *Planar) Interleave() ([]int16, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return Interleave(p.Channels...)
}

// Interleave quantizes and interleaves equal length channels.
func Interleave(channels ...[]float32) ([]int16, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	frames := len(channels[0])
	for i, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d",
				ErrChannelLength, i, len(ch), frames)
		}
	}
	n := len(channels)
	out := make([]int16, frames*n)
	for i := 0; i < frames; i++ {
		for j, ch := range channels {
			out[i*n+j] = Quantize(ch[i])
		}
	}
	return out, nil
}
