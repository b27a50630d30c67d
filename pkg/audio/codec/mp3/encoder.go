package mp3

/*
#cgo darwin CFLAGS: -I/opt/homebrew/include
#cgo darwin LDFLAGS: -L/opt/homebrew/lib -lmp3lame
#cgo linux pkg-config: mp3lame
#include <lame/lame.h>
#include <stdlib.h>

static int lame_encode_interleaved(lame_global_flags* gf, const short* pcm, int num_samples, unsigned char* mp3buf, int mp3buf_size) {
    return lame_encode_buffer_interleaved(gf, (short*)pcm, num_samples, mp3buf, mp3buf_size);
}
*/
import "C"
import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// DefaultBitrate is the constant bitrate used when no option overrides it.
const DefaultBitrate = 128

// Quality selects LAME's algorithm quality. It trades encoding speed for
// noise shaping and does not change the bitrate.
type Quality int

const (
	QualityBest   Quality = 0
	QualityHigh   Quality = 2
	QualityMedium Quality = 5
	QualityLow    Quality = 7
	QualityFast   Quality = 9
)

var (
	// ErrClosed is returned by calls on a closed or flushed encoder.
	ErrClosed = errors.New("mp3: encoder is closed")

	// ErrUnsupported is returned when LAME rejects the stream parameters.
	ErrUnsupported = errors.New("mp3: unsupported stream parameters")
)

// Encoder is a single-use LAME encoding session.
//
// Samples go in through Encode, which returns whatever compressed bytes
// LAME emitted for them. LAME buffers internally, so an empty fragment is
// normal. Flush drains the remaining frames and ends the session; Close
// releases the native state and must always be called.
//
// The first frame LAME emits is a placeholder for the Info tag. Once the
// session is flushed, InfoFrame returns the completed tag, which the caller
// writes over that placeholder so gapless decoders can trim the encoder
// delay and padding. The output for a given input is byte-identical across
// runs.
type Encoder struct {
	mu         sync.Mutex
	lame       *C.lame_global_flags
	sampleRate int
	channels   int
	bitrate    int
	quality    Quality
	frameSize  int
	flushed    bool
	closed     bool

	mp3buf []byte
}

// EncoderOption configures the encoder.
type EncoderOption func(*Encoder)

// WithQuality sets the algorithm quality (0=best, 9=fastest).
func WithQuality(q Quality) EncoderOption {
	return func(e *Encoder) {
		e.quality = q
	}
}

// WithBitrate sets the constant bitrate in kbps.
func WithBitrate(kbps int) EncoderOption {
	return func(e *Encoder) {
		e.bitrate = kbps
	}
}

// NewEncoder creates an encoding session for interleaved 16-bit PCM with
// the given sample rate and channel count (1 or 2). LAME is initialized
// immediately so unsupported parameters fail here rather than on the first
// Encode call.
func NewEncoder(sampleRate, channels int, opts ...EncoderOption) (*Encoder, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupported, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrUnsupported, sampleRate)
	}

	e := &Encoder{
		sampleRate: sampleRate,
		channels:   channels,
		bitrate:    DefaultBitrate,
		quality:    QualityMedium,
		mp3buf:     make([]byte, 8192),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Encoder) init() error {
	lame := C.lame_init()
	if lame == nil {
		return errors.New("mp3: failed to initialize LAME")
	}

	C.lame_set_in_samplerate(lame, C.int(e.sampleRate))
	C.lame_set_out_samplerate(lame, C.int(e.sampleRate))
	C.lame_set_num_channels(lame, C.int(e.channels))
	if e.channels == 1 {
		C.lame_set_mode(lame, C.MONO)
	} else {
		C.lame_set_mode(lame, C.JOINT_STEREO)
	}

	C.lame_set_VBR(lame, C.vbr_off)
	C.lame_set_brate(lame, C.int(e.bitrate))
	C.lame_set_quality(lame, C.int(e.quality))
	C.lame_set_bWriteVbrTag(lame, 1)
	C.lame_set_write_id3tag_automatic(lame, 0)

	if C.lame_init_params(lame) < 0 {
		C.lame_close(lame)
		return fmt.Errorf("%w: %d Hz, %d channels, %d kbps",
			ErrUnsupported, e.sampleRate, e.channels, e.bitrate)
	}

	e.lame = lame
	e.frameSize = int(C.lame_get_framesize(lame))
	return nil
}

// Encode submits interleaved samples and returns the compressed bytes LAME
// produced for them. The returned slice is owned by the caller and may be
// empty. len(samples) must be a multiple of the channel count.
func (e *Encoder) Encode(samples []int16) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.flushed {
		return nil, ErrClosed
	}
	if len(samples)%e.channels != 0 {
		return nil, fmt.Errorf("mp3: %d samples is not a multiple of %d channels", len(samples), e.channels)
	}
	numSamples := len(samples) / e.channels
	if numSamples == 0 {
		return nil, nil
	}

	// LAME recommends 1.25*num_samples + 7200
	requiredSize := numSamples*5/4 + 7200
	if len(e.mp3buf) < requiredSize {
		e.mp3buf = make([]byte, requiredSize)
	}

	var encoded C.int
	if e.channels == 2 {
		encoded = C.lame_encode_interleaved(
			e.lame,
			(*C.short)(unsafe.Pointer(&samples[0])),
			C.int(numSamples),
			(*C.uchar)(unsafe.Pointer(&e.mp3buf[0])),
			C.int(len(e.mp3buf)),
		)
	} else {
		encoded = C.lame_encode_buffer(
			e.lame,
			(*C.short)(unsafe.Pointer(&samples[0])),
			nil,
			C.int(numSamples),
			(*C.uchar)(unsafe.Pointer(&e.mp3buf[0])),
			C.int(len(e.mp3buf)),
		)
	}
	if encoded < 0 {
		return nil, fmt.Errorf("mp3: encode failed: lame error %d", int(encoded))
	}
	return cloneBytes(e.mp3buf[:encoded]), nil
}

// Flush drains LAME's internal buffers and returns the final frames.
// After Flush the session accepts no more samples.
func (e *Encoder) Flush() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.flushed {
		return nil, ErrClosed
	}
	e.flushed = true

	if len(e.mp3buf) < 7200 {
		e.mp3buf = make([]byte, 7200)
	}
	encoded := C.lame_encode_flush(
		e.lame,
		(*C.uchar)(unsafe.Pointer(&e.mp3buf[0])),
		C.int(len(e.mp3buf)),
	)
	if encoded < 0 {
		return nil, fmt.Errorf("mp3: flush failed: lame error %d", int(encoded))
	}
	return cloneBytes(e.mp3buf[:encoded]), nil
}

// InfoFrame returns the completed Info tag frame. It must be called after
// Flush and before Close; the result replaces the first frame of the
// stream byte for byte.
func (e *Encoder) InfoFrame() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if !e.flushed {
		return nil, errors.New("mp3: info frame requested before flush")
	}
	n := C.lame_get_lametag_frame(e.lame, nil, 0)
	if n == 0 {
		return nil, errors.New("mp3: encoder wrote no info frame")
	}
	buf := make([]byte, int(n))
	got := C.lame_get_lametag_frame(e.lame, (*C.uchar)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
	if got != n {
		return nil, fmt.Errorf("mp3: info frame is %d bytes, want %d", int(got), int(n))
	}
	return buf, nil
}

// Close releases encoder resources. It is safe to call more than once.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if e.lame != nil {
		C.lame_close(e.lame)
		e.lame = nil
	}
	return nil
}

// FrameSize returns the number of samples per channel in one MP3 frame:
// 1152 for MPEG-1 sample rates and 576 for MPEG-2 and 2.5.
func (e *Encoder) FrameSize() int {
	return e.frameSize
}

// SampleRate returns the input sample rate.
func (e *Encoder) SampleRate() int {
	return e.sampleRate
}

// Channels returns the input channel count.
func (e *Encoder) Channels() int {
	return e.channels
}

// Bitrate returns the constant bitrate in kbps.
func (e *Encoder) Bitrate() int {
	return e.bitrate
}

// Delay returns the number of silent samples per channel LAME prepends.
func (e *Encoder) Delay() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lame == nil {
		return 0
	}
	return int(C.lame_get_encoder_delay(e.lame))
}

// Padding returns the number of samples per channel appended to complete
// the last frame. It is only meaningful after Flush.
func (e *Encoder) Padding() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lame == nil {
		return 0
	}
	return int(C.lame_get_encoder_padding(e.lame))
}

// Frames returns the number of MP3 audio frames encoded so far, not
// counting the Info tag frame.
func (e *Encoder) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lame == nil {
		return 0
	}
	return int(C.lame_get_frameNum(e.lame))
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
