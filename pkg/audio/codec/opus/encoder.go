package opus

/*
#include <opus.h>

static int set_bitrate(OpusEncoder *enc, opus_int32 bitrate) {
    return opus_encoder_ctl(enc, OPUS_SET_BITRATE(bitrate));
}

static int get_lookahead(OpusEncoder *enc, opus_int32 *lookahead) {
    return opus_encoder_ctl(enc, OPUS_GET_LOOKAHEAD(lookahead));
}
*/
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

// maxPacket is the recommended output buffer size for one packet.
const maxPacket = 4000

// EncoderOption configures an Encoder.
type EncoderOption func(*encoderConfig)

type encoderConfig struct {
	application C.int
	bitrate     int
}

// WithVoIP tunes the encoder for speech.
func WithVoIP() EncoderOption {
	return func(c *encoderConfig) {
		c.application = C.OPUS_APPLICATION_VOIP
	}
}

// WithBitrate sets the target bitrate in bits per second.
func WithBitrate(bps int) EncoderOption {
	return func(c *encoderConfig) {
		c.bitrate = bps
	}
}

// Encoder encodes interleaved 16-bit PCM to Opus packets.
type Encoder struct {
	format pcm.Format
	cEnc   *C.OpusEncoder
	buf    []byte
}

// NewEncoder creates an encoder for f. The default application is
// general audio at libopus's default bitrate.
func NewEncoder(f pcm.Format, opts ...EncoderOption) (*Encoder, error) {
	if err := checkLayout(f.SampleRate, f.Channels); err != nil {
		return nil, err
	}
	cfg := encoderConfig{application: C.OPUS_APPLICATION_AUDIO}
	for _, opt := range opts {
		opt(&cfg)
	}

	var code C.int
	cEnc := C.opus_encoder_create(C.opus_int32(f.SampleRate), C.int(f.Channels), cfg.application, &code)
	if code != C.OPUS_OK {
		return nil, opusError("create encoder", code)
	}
	e := &Encoder{format: f, cEnc: cEnc, buf: make([]byte, maxPacket)}
	if cfg.bitrate > 0 {
		if code := C.set_bitrate(cEnc, C.opus_int32(cfg.bitrate)); code != C.OPUS_OK {
			e.Close()
			return nil, opusError("set bitrate", code)
		}
	}
	return e, nil
}

// Close releases the encoder. It is safe to call more than once.
func (e *Encoder) Close() {
	if e.cEnc != nil {
		C.opus_encoder_destroy(e.cEnc)
		e.cEnc = nil
	}
}

// Encode encodes one frame of interleaved samples into a packet. The frame
// length is len(samples)/channels and must be a valid Opus duration
// (2.5 to 60 ms).
func (e *Encoder) Encode(samples []int16) ([]byte, error) {
	if e.cEnc == nil {
		return nil, ErrClosed
	}
	ch := e.format.Channels
	if len(samples) == 0 || len(samples)%ch != 0 {
		return nil, fmt.Errorf("opus: %d samples do not form whole %d-channel frames", len(samples), ch)
	}
	n := C.opus_encode(e.cEnc,
		(*C.opus_int16)(unsafe.Pointer(&samples[0])), C.int(len(samples)/ch),
		(*C.uchar)(unsafe.Pointer(&e.buf[0])), C.opus_int32(len(e.buf)))
	if n < 0 {
		return nil, opusError("encode", n)
	}
	return append([]byte(nil), e.buf[:n]...), nil
}

// Lookahead returns the encoder delay in samples. Ogg Opus writers use it
// as the stream pre-skip.
func (e *Encoder) Lookahead() (int, error) {
	if e.cEnc == nil {
		return 0, ErrClosed
	}
	var v C.opus_int32
	if code := C.get_lookahead(e.cEnc, &v); code != C.OPUS_OK {
		return 0, opusError("get lookahead", code)
	}
	return int(v), nil
}
