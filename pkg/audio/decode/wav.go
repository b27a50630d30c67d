package decode

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-audio/wav"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// DecodeWAV decodes integer PCM WAV data. 8-bit samples are unsigned and
// wider samples are signed, per the RIFF convention. Float and compressed
// WAV encodings return ErrUnsupportedCodec.
func DecodeWAV(ctx context.Context, data []byte) (*pcm.Planar, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: wav: %v", ErrMalformed, err)
		}
		return nil, fmt.Errorf("%w: wav: invalid header", ErrMalformed)
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: wav format tag %#x", ErrUnsupportedCodec, d.WavAudioFormat)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: wav: %v", ErrMalformed, err)
	}

	channels := int(d.NumChans)
	depth := int(d.BitDepth)
	frames := len(buf.Data) / channels
	p := pcm.NewPlanar(pcm.Format{SampleRate: int(d.SampleRate), Channels: channels}, frames)

	var offset, scale float32
	if depth == 8 {
		offset, scale = 128, 128
	} else {
		scale = float32(int64(1) << (depth - 1))
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			p.Channels[c][i] = (float32(buf.Data[i*channels+c]) - offset) / scale
		}
	}
	return p, nil
}
