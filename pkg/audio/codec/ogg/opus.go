package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	opusHeadMagic = "OpusHead"
	opusTagsMagic = "OpusTags"

	// OpusSampleRate is the rate of Opus granule positions.
	OpusSampleRate = 48000
)

// ErrNotOpus is returned when the first logical stream is not Opus.
var ErrNotOpus = errors.New("ogg: not an Opus stream")

// OpusHead is the identification header of an Ogg Opus stream (RFC 7845).
type OpusHead struct {
	Version         uint8
	Channels        int
	PreSkip         int
	InputSampleRate int
	OutputGain      int16
	MappingFamily   uint8
}

// ParseOpusHead decodes an OpusHead packet.
func ParseOpusHead(b []byte) (OpusHead, error) {
	if len(b) < 19 || !bytes.HasPrefix(b, []byte(opusHeadMagic)) {
		return OpusHead{}, ErrNotOpus
	}
	h := OpusHead{
		Version:         b[8],
		Channels:        int(b[9]),
		PreSkip:         int(binary.LittleEndian.Uint16(b[10:])),
		InputSampleRate: int(binary.LittleEndian.Uint32(b[12:])),
		OutputGain:      int16(binary.LittleEndian.Uint16(b[16:])),
		MappingFamily:   b[18],
	}
	if h.Version>>4 != 0 {
		return OpusHead{}, fmt.Errorf("ogg: unsupported OpusHead version %d", h.Version)
	}
	if h.Channels == 0 {
		return OpusHead{}, errors.New("ogg: OpusHead has zero channels")
	}
	return h, nil
}

// MarshalBinary encodes the header for mapping family 0.
func (h OpusHead) MarshalBinary() ([]byte, error) {
	if h.MappingFamily != 0 || h.Channels < 1 || h.Channels > 2 {
		return nil, fmt.Errorf("ogg: cannot encode %d channels with mapping family %d", h.Channels, h.MappingFamily)
	}
	b := make([]byte, 19)
	copy(b, opusHeadMagic)
	b[8] = 1
	b[9] = uint8(h.Channels)
	binary.LittleEndian.PutUint16(b[10:], uint16(h.PreSkip))
	binary.LittleEndian.PutUint32(b[12:], uint32(h.InputSampleRate))
	binary.LittleEndian.PutUint16(b[16:], uint16(h.OutputGain))
	return b, nil
}

// OpusPacket is one audio packet of an Opus stream.
type OpusPacket struct {
	Frame   []byte
	Granule int64
}

// OpusStream is the first logical Opus stream of an Ogg file.
type OpusStream struct {
	Head    OpusHead
	Packets []OpusPacket

	// FinalGranule is the granule position of the last page, in 48 kHz
	// samples including the pre-skip, or -1 if no page carried one.
	FinalGranule int64
}

// ReadOpus reads the first logical Opus stream from r. Packets of other
// logical streams are ignored, and a chained stream ends the read.
func ReadOpus(r io.Reader) (*OpusStream, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	var (
		stream *OpusStream
		serial int32
	)
	for {
		pkt, err := rd.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if stream == nil {
			head, err := ParseOpusHead(pkt.Data)
			if err != nil {
				return nil, err
			}
			stream = &OpusStream{Head: head, FinalGranule: -1}
			serial = pkt.SerialNo
			continue
		}
		if pkt.SerialNo != serial {
			continue
		}
		if pkt.BOS {
			break
		}
		if bytes.HasPrefix(pkt.Data, []byte(opusTagsMagic)) || len(pkt.Data) == 0 {
			continue
		}
		stream.Packets = append(stream.Packets, OpusPacket{Frame: pkt.Data, Granule: pkt.Granule})
		if pkt.Granule >= 0 {
			stream.FinalGranule = pkt.Granule
		}
		if pkt.EOS {
			break
		}
	}
	if stream == nil {
		return nil, ErrNotOpus
	}
	return stream, nil
}
