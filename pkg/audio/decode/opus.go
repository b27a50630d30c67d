package decode

import (
	"bytes"
	"context"
	"fmt"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/codec/ogg"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/codec/opus"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

// DecodeOpus decodes the first Opus stream of an Ogg file at 48 kHz.
// The pre-skip is dropped from the start and the final granule position
// trims the end. Streams using multichannel mapping return
// ErrUnsupportedCodec.
func DecodeOpus(ctx context.Context, data []byte) (*pcm.Planar, error) {
	stream, err := ogg.ReadOpus(bytes.NewReader(data))
	if err != nil {
		if err == ogg.ErrNotOpus {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedCodec, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	head := stream.Head
	if head.MappingFamily != 0 || head.Channels > 2 {
		return nil, fmt.Errorf("%w: opus mapping family %d with %d channels",
			ErrUnsupportedCodec, head.MappingFamily, head.Channels)
	}

	dec, err := opus.NewDecoder(pcm.Format{SampleRate: ogg.OpusSampleRate, Channels: head.Channels})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCodec, err)
	}
	defer dec.Close()

	p := &pcm.Planar{SampleRate: ogg.OpusSampleRate, Channels: make([][]float32, head.Channels)}
	for i, pkt := range stream.Packets {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, err := dec.DecodeTo(p, pkt.Frame); err != nil {
			return nil, fmt.Errorf("%w: packet %d: %v", ErrMalformed, i, err)
		}
	}

	frames := len(p.Channels[0])
	start := min(head.PreSkip, frames)
	end := frames
	if stream.FinalGranule >= 0 {
		end = min(end, max(start, int(stream.FinalGranule)))
	}
	for c := range p.Channels {
		p.Channels[c] = p.Channels[c][start:end]
	}
	return p, nil
}
