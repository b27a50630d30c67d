// Package mp3 provides MP3 audio encoding and decoding.
//
// Encoding uses LAME through cgo. Decoding uses the pure Go go-mp3 decoder,
// with the channel layout taken from the stream's frame headers since go-mp3
// always produces stereo output. go-mp3 does not know the Xing/Info tag, so
// the decoder skips the tag frame itself and trims the encoder delay and
// padding the tag records.
package mp3

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// Decoder decodes an MP3 stream to interleaved 16-bit little-endian PCM in
// the stream's own channel layout.
type Decoder struct {
	r      io.Reader
	dec    *gomp3.Decoder
	src    io.Reader
	header FrameHeader
	tag    InfoTag
	hasTag bool
	err    error
	inited bool

	// stereo scratch for mono downmix
	buf []byte
}

// NewDecoder creates a decoder reading MP3 data from r. The stream is read
// on first use.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

func (d *Decoder) init() error {
	if d.inited {
		return d.err
	}
	d.inited = true

	data, err := io.ReadAll(d.r)
	if err != nil {
		d.err = fmt.Errorf("mp3: read: %w", err)
		return d.err
	}
	h, off, err := FirstFrame(data)
	if err != nil {
		d.err = err
		return d.err
	}
	d.header = h
	if end := off + h.Size(); end <= len(data) {
		d.tag, d.hasTag = ParseInfoTag(data[off:end])
		if d.hasTag {
			data = data[end:]
		}
	}
	if d.hasTag && len(data) == 0 {
		d.err = errors.New("mp3: no audio frames after the info tag")
		return d.err
	}

	dec, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		d.err = fmt.Errorf("mp3: decode: %w", err)
		return d.err
	}
	d.dec = dec
	d.src = dec

	if d.hasTag && d.tag.Gapless() && dec.Length() > 0 {
		// go-mp3 output is always 4 bytes per stereo frame.
		skip := int64(d.tag.Delay+decoderDelay) * 4
		tail := int64(max(d.tag.Padding-decoderDelay, 0)) * 4
		keep := max(dec.Length()-skip-tail, 0)
		if _, err := io.CopyN(io.Discard, dec, min(skip, dec.Length())); err != nil && !errors.Is(err, io.EOF) {
			d.err = fmt.Errorf("mp3: decode: %w", err)
			return d.err
		}
		d.src = io.LimitReader(dec, keep)
	}
	return nil
}

// Tag returns the Xing/Info tag of the stream, if it has one. It is valid
// after the first Read.
func (d *Decoder) Tag() (InfoTag, bool) {
	return d.tag, d.hasTag
}

// Close releases the decoder.
func (d *Decoder) Close() error {
	d.dec = nil
	d.src = nil
	return nil
}

// SampleRate returns the sample rate, or 0 before the first Read.
func (d *Decoder) SampleRate() int {
	if d.dec == nil {
		return 0
	}
	return d.dec.SampleRate()
}

// Channels returns the channel count, or 0 before the first Read.
func (d *Decoder) Channels() int {
	if d.dec == nil {
		return 0
	}
	return d.header.Channels()
}

// Bitrate returns the bitrate of the first frame in kbps.
func (d *Decoder) Bitrate() int {
	return d.header.Bitrate
}

// Header returns the first frame header.
func (d *Decoder) Header() FrameHeader {
	return d.header
}

// Read reads decoded PCM into p.
func (d *Decoder) Read(p []byte) (int, error) {
	if err := d.init(); err != nil {
		return 0, err
	}
	if d.dec == nil {
		return 0, errors.New("mp3: decoder is closed")
	}
	if d.header.Channels() == 2 {
		return d.src.Read(p)
	}

	// go-mp3 duplicates mono into both channels; keep the left one.
	want := len(p) / 2 * 4
	if want == 0 {
		return 0, nil
	}
	if cap(d.buf) < want {
		d.buf = make([]byte, want)
	}
	n, err := io.ReadFull(d.src, d.buf[:want])
	n -= n % 4
	for i := 0; i < n/4; i++ {
		p[2*i] = d.buf[4*i]
		p[2*i+1] = d.buf[4*i+1]
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	if n > 0 && errors.Is(err, io.EOF) {
		err = nil
	}
	return n / 2, err
}

// DecodeFull decodes an entire MP3 stream and returns the PCM data, sample
// rate and channel count.
func DecodeFull(r io.Reader) (pcm []byte, sampleRate, channels int, err error) {
	d := NewDecoder(r)
	defer d.Close()

	pcm, err = io.ReadAll(d)
	if err != nil {
		return nil, 0, 0, err
	}
	return pcm, d.SampleRate(), d.Channels(), nil
}
