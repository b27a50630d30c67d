package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/codec/mp3"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

// DecodeMP3 decodes an MPEG audio stream. Data with an ID3 tag but no MPEG
// frames returns ErrUnsupportedCodec so another decoder can try it.
func DecodeMP3(ctx context.Context, data []byte) (*pcm.Planar, error) {
	if _, _, err := mp3.FirstFrame(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCodec, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, sampleRate, channels, err := mp3.DecodeFull(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, mp3.ErrNoFrame) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedCodec, err)
		}
		return nil, fmt.Errorf("%w: mp3: %v", ErrMalformed, err)
	}

	samples := pcm.Int16s(raw)
	frames := len(samples) / channels
	p := pcm.NewPlanar(pcm.Format{SampleRate: sampleRate, Channels: channels}, frames)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			p.Channels[c][i] = float32(samples[i*channels+c]) / 32768
		}
	}
	return p, nil
}
