package opus

/*
#include <opus.h>
*/
import "C"
import (
	"unsafe"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

// Decoder decodes mono or stereo Opus packets.
type Decoder struct {
	format pcm.Format
	cDec   *C.OpusDecoder
	buf    []float32
}

// NewDecoder creates a decoder producing f.SampleRate audio with
// f.Channels channels.
func NewDecoder(f pcm.Format) (*Decoder, error) {
	if err := checkLayout(f.SampleRate, f.Channels); err != nil {
		return nil, err
	}
	var code C.int
	cDec := C.opus_decoder_create(C.opus_int32(f.SampleRate), C.int(f.Channels), &code)
	if code != C.OPUS_OK {
		return nil, opusError("create decoder", code)
	}
	return &Decoder{
		format: f,
		cDec:   cDec,
		buf:    make([]float32, MaxFrameSamples*f.Channels),
	}, nil
}

// Format returns the output format.
func (d *Decoder) Format() pcm.Format { return d.format }

// Close releases the decoder. It is safe to call more than once.
func (d *Decoder) Close() {
	if d.cDec != nil {
		C.opus_decoder_destroy(d.cDec)
		d.cDec = nil
	}
}

// Decode decodes one packet to interleaved float samples. The slice is
// reused by the next call. An empty packet runs packet loss concealment.
func (d *Decoder) Decode(packet []byte) ([]float32, error) {
	if d.cDec == nil {
		return nil, ErrClosed
	}
	var data *C.uchar
	if len(packet) > 0 {
		data = (*C.uchar)(unsafe.Pointer(&packet[0]))
	}
	n := C.opus_decode_float(d.cDec, data, C.opus_int32(len(packet)),
		(*C.float)(unsafe.Pointer(&d.buf[0])), C.int(MaxFrameSamples), 0)
	if n < 0 {
		return nil, opusError("decode", n)
	}
	return d.buf[:int(n)*d.format.Channels], nil
}

// DecodeTo decodes one packet and appends it to p, one slice per channel.
// It returns the number of frames added.
func (d *Decoder) DecodeTo(p *pcm.Planar, packet []byte) (int, error) {
	samples, err := d.Decode(packet)
	if err != nil {
		return 0, err
	}
	ch := d.format.Channels
	if len(p.Channels) != ch {
		p.Channels = make([][]float32, ch)
	}
	frames := len(samples) / ch
	for c := range ch {
		dst := p.Channels[c]
		for i := range frames {
			dst = append(dst, samples[i*ch+c])
		}
		p.Channels[c] = dst
	}
	return frames, nil
}
