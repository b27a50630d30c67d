package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNoChannels is returned when a buffer has no channels.
	ErrNoChannels = errors.New("pcm: no channels")

	// ErrSampleRate is returned when the sample rate is not positive.
	ErrSampleRate = errors.New("pcm: invalid sample rate")

	// ErrChannelLength is returned when channels hold different sample counts.
	ErrChannelLength = errors.New("pcm: channel length mismatch")
)

// Format describes the layout of a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
}

// Validate reports whether the format can describe real audio.
func (f Format) Validate() error {
	if f.Channels <= 0 {
		return ErrNoChannels
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrSampleRate, f.SampleRate)
	}
	return nil
}

// Duration returns the playback time of the given number of frames.
// A frame holds one sample for every channel.
// Durations beyond the range of time.Duration saturate.
func (f Format) Duration(frames int64) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	rate := int64(f.SampleRate)
	sec, rem := frames/rate, frames%rate
	if sec > math.MaxInt64/int64(time.Second)-1 {
		return math.MaxInt64
	}
	if sec < math.MinInt64/int64(time.Second)+1 {
		return math.MinInt64
	}
	return time.Duration(sec)*time.Second + time.Duration(rem)*time.Second/time.Duration(rate)
}

// FramesInDuration returns the number of frames in the given duration.
func (f Format) FramesInDuration(d time.Duration) int64 {
	rate := int64(f.SampleRate)
	sec, rem := d/time.Second, d%time.Second
	return int64(sec)*rate + int64(rem)*rate/int64(time.Second)
}

// String returns the format as an L16 media type.
func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate, f.Channels)
}

// Samples16 converts interleaved int16 samples to little-endian bytes.
func Samples16(samples []int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

// Int16s converts little-endian 16-bit PCM bytes to samples. A trailing odd
// byte is ignored.
func Int16s(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}
