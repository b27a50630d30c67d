package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoFrame is returned when no MPEG audio frame header can be found.
var ErrNoFrame = errors.New("mp3: no frame header found")

// Version is the MPEG audio version of a frame.
type Version int

const (
	MPEG25 Version = 0
	MPEG2  Version = 2
	MPEG1  Version = 3
)

func (v Version) String() string {
	switch v {
	case MPEG1:
		return "MPEG-1"
	case MPEG2:
		return "MPEG-2"
	case MPEG25:
		return "MPEG-2.5"
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// ChannelMode is the channel mode field of a frame header.
type ChannelMode int

const (
	Stereo      ChannelMode = 0
	JointStereo ChannelMode = 1
	DualChannel ChannelMode = 2
	Mono        ChannelMode = 3
)

// FrameHeader is a decoded 4-byte MPEG audio frame header.
type FrameHeader struct {
	Version    Version
	Layer      int
	Bitrate    int // kbps
	SampleRate int
	Mode       ChannelMode
	Padding    bool
}

var bitrates = [2][3][15]int{
	// MPEG-1: layer I, II, III
	{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
	},
	// MPEG-2 and 2.5: layer I, II, III
	{
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
	},
}

var sampleRates = map[Version][3]int{
	MPEG1:  {44100, 48000, 32000},
	MPEG2:  {22050, 24000, 16000},
	MPEG25: {11025, 12000, 8000},
}

// ParseFrameHeader decodes the frame header at the start of b. Free-format
// frames (bitrate index 0) are rejected.
func ParseFrameHeader(b []byte) (FrameHeader, error) {
	if len(b) < 4 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return FrameHeader{}, ErrNoFrame
	}
	version := Version(b[1] >> 3 & 0x3)
	layerBits := int(b[1] >> 1 & 0x3)
	brIndex := int(b[2] >> 4)
	srIndex := int(b[2] >> 2 & 0x3)
	if version == 1 || layerBits == 0 || brIndex == 0 || brIndex == 15 || srIndex == 3 {
		return FrameHeader{}, ErrNoFrame
	}
	layer := 4 - layerBits
	table := 0
	if version != MPEG1 {
		table = 1
	}
	return FrameHeader{
		Version:    version,
		Layer:      layer,
		Bitrate:    bitrates[table][layer-1][brIndex],
		SampleRate: sampleRates[version][srIndex],
		Mode:       ChannelMode(b[3] >> 6),
		Padding:    b[2]&0x2 != 0,
	}, nil
}

// Channels returns 1 for mono frames and 2 otherwise.
func (h FrameHeader) Channels() int {
	if h.Mode == Mono {
		return 1
	}
	return 2
}

// Samples returns the number of samples per channel in the frame.
func (h FrameHeader) Samples() int {
	switch {
	case h.Layer == 1:
		return 384
	case h.Layer == 3 && h.Version != MPEG1:
		return 576
	}
	return 1152
}

// Size returns the frame length in bytes, header included.
func (h FrameHeader) Size() int {
	pad := 0
	if h.Padding {
		pad = 1
	}
	if h.Layer == 1 {
		return (12*h.Bitrate*1000/h.SampleRate + pad) * 4
	}
	return h.Samples()/8*h.Bitrate*1000/h.SampleRate + pad
}

// Duration returns the playback time of the frame.
func (h FrameHeader) Duration() time.Duration {
	return time.Duration(h.Samples()) * time.Second / time.Duration(h.SampleRate)
}

// SkipID3v2 returns the length of the ID3v2 tag at the start of data, or 0.
func SkipID3v2(data []byte) int {
	if len(data) < 10 || string(data[:3]) != "ID3" {
		return 0
	}
	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
	n := 10 + size
	if data[5]&0x10 != 0 {
		n += 10
	}
	return min(n, len(data))
}

// FirstFrame finds the first frame header whose successor is also a valid
// header (or which ends exactly at the end of data). It returns the header
// and its byte offset.
func FirstFrame(data []byte) (FrameHeader, int, error) {
	for off := SkipID3v2(data); off+4 <= len(data); off++ {
		h, err := ParseFrameHeader(data[off:])
		if err != nil {
			continue
		}
		next := off + h.Size()
		if next == len(data) {
			return h, off, nil
		}
		if next < len(data) {
			if _, err := ParseFrameHeader(data[next:]); err == nil {
				return h, off, nil
			}
		}
	}
	return FrameHeader{}, 0, ErrNoFrame
}

// Scan walks the frames of an MP3 stream, starting at the first valid frame,
// and calls fn for each header until the data ends or a frame does not
// parse.
func Scan(data []byte, fn func(FrameHeader) bool) error {
	_, off, err := FirstFrame(data)
	if err != nil {
		return err
	}
	for off+4 <= len(data) {
		h, err := ParseFrameHeader(data[off:])
		if err != nil {
			return nil
		}
		if !fn(h) {
			return nil
		}
		off += h.Size()
	}
	return nil
}

// decoderDelay is the synthesis filterbank delay of a Layer III decoder in
// samples. LAME records only its own delay in the tag; gapless players add
// this on top.
const decoderDelay = 529

// InfoTag is the Xing/Info header LAME writes in place of the first audio
// frame, with the gapless fields of its LAME extension.
type InfoTag struct {
	// VBR is true for a "Xing" tag and false for a constant bitrate "Info" tag.
	VBR bool

	// Frames and Bytes describe the audio that follows the tag frame, or
	// are zero when the tag does not carry them.
	Frames int
	Bytes  int

	// Encoder is the nine byte version string of the LAME extension, for
	// example "LAME3.100". It is empty when the extension is absent.
	Encoder string

	// Delay and Padding are the encoder delay and end padding in samples
	// per channel. They are only set when Encoder is not empty.
	Delay   int
	Padding int
}

// Gapless reports whether the tag carries encoder delay and padding.
func (t InfoTag) Gapless() bool {
	return t.Encoder != ""
}

// ParseInfoTag reads the Xing/Info tag in frame, which must start with the
// frame header. It returns false if frame is an ordinary audio frame.
func ParseInfoTag(frame []byte) (InfoTag, bool) {
	h, err := ParseFrameHeader(frame)
	if err != nil || h.Layer != 3 {
		return InfoTag{}, false
	}
	off := 4 + sideInfoSize(h)
	if frame[1]&0x1 == 0 {
		off += 2 // CRC
	}
	if len(frame) < off+8 {
		return InfoTag{}, false
	}
	var tag InfoTag
	switch string(frame[off : off+4]) {
	case "Xing":
		tag.VBR = true
	case "Info":
	default:
		return InfoTag{}, false
	}
	flags := binary.BigEndian.Uint32(frame[off+4:])
	pos := off + 8
	field := func(flag uint32, n int) []byte {
		if flags&flag == 0 || len(frame) < pos+n {
			return nil
		}
		b := frame[pos : pos+n]
		pos += n
		return b
	}
	if b := field(0x1, 4); b != nil {
		tag.Frames = int(binary.BigEndian.Uint32(b))
	}
	if b := field(0x2, 4); b != nil {
		tag.Bytes = int(binary.BigEndian.Uint32(b))
	}
	field(0x4, 100) // seek table
	field(0x8, 4)   // quality

	// The LAME extension: version string, revision, lowpass, replay gain
	// and flags, then 12 bits each of delay and padding at offset 21.
	if len(frame) < pos+24 || frame[pos] == 0 {
		return tag, true
	}
	ext := frame[pos:]
	tag.Encoder = strings.TrimRight(string(ext[:9]), "\x00 ")
	tag.Delay = int(ext[21])<<4 | int(ext[22])>>4
	tag.Padding = int(ext[22]&0x0F)<<8 | int(ext[23])
	return tag, true
}

func sideInfoSize(h FrameHeader) int {
	switch {
	case h.Version == MPEG1 && h.Mode == Mono:
		return 17
	case h.Version == MPEG1:
		return 32
	case h.Mode == Mono:
		return 9
	}
	return 17
}
