package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
)

func sine(sampleRate, channels, frames int, freq float64) []int16 {
	out := make([]int16, frames*channels)
	for i := 0; i < frames; i++ {
		ti := float64(i) / float64(sampleRate)
		s := int16(math.Sin(2*math.Pi*freq*ti) * 16000)
		for c := 0; c < channels; c++ {
			out[i*channels+c] = s
		}
	}
	return out
}

func encodeAll(t *testing.T, samples []int16, sampleRate, channels, block int, opts ...EncoderOption) ([]byte, *Encoder) {
	t.Helper()
	enc, err := NewEncoder(sampleRate, channels, opts...)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	t.Cleanup(func() { enc.Close() })

	var out bytes.Buffer
	step := block * channels
	for off := 0; off < len(samples); off += step {
		frag, err := enc.Encode(samples[off:min(off+step, len(samples))])
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		out.Write(frag)
	}
	frag, err := enc.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	out.Write(frag)

	tag, err := enc.InfoFrame()
	if err != nil {
		t.Fatalf("InfoFrame failed: %v", err)
	}
	data := out.Bytes()
	copy(data, tag)
	return data, enc
}

// checkGapless fails unless decoded is within the decoder's own delay of
// want. The tag trims LAME's delay exactly; the last frame loses up to
// decoderDelay samples when LAME padded it with fewer than that.
func checkGapless(t *testing.T, decoded, want int) {
	t.Helper()
	if decoded > want || want-decoded > decoderDelay {
		t.Errorf("decoded %d frames, want %d (at most %d fewer)", decoded, want, decoderDelay)
	}
}

func TestEncoderDecoder(t *testing.T) {
	sampleRate := 44100
	channels := 2
	frames := sampleRate

	data, enc := encodeAll(t, sine(sampleRate, channels, frames, 440), sampleRate, channels, 1152)
	if enc.FrameSize() != 1152 {
		t.Errorf("FrameSize = %d, want 1152", enc.FrameSize())
	}
	t.Logf("Encoded %d frames to %d bytes MP3, delay %d, padding %d",
		frames, len(data), enc.Delay(), enc.Padding())

	pcm, sr, ch, err := DecodeFull(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeFull failed: %v", err)
	}
	if sr != sampleRate {
		t.Errorf("Sample rate mismatch: got %d, want %d", sr, sampleRate)
	}
	if ch != channels {
		t.Errorf("Channels mismatch: got %d, want %d", ch, channels)
	}

	checkGapless(t, len(pcm)/(2*ch), frames)
}

func TestEncoderMono(t *testing.T) {
	sampleRate := 16000
	frames := sampleRate / 2

	data, enc := encodeAll(t, sine(sampleRate, 1, frames, 440), sampleRate, 1, 1152, WithBitrate(64))
	if len(data) == 0 {
		t.Fatal("MP3 output is empty")
	}
	if enc.FrameSize() != 576 {
		t.Errorf("FrameSize = %d, want 576 for MPEG-2 rates", enc.FrameSize())
	}

	h, _, err := FirstFrame(data)
	if err != nil {
		t.Fatalf("FirstFrame: %v", err)
	}
	if h.Channels() != 1 || h.Version != MPEG2 || h.Bitrate != 64 {
		t.Errorf("header = %+v", h)
	}

	pcm, sr, ch, err := DecodeFull(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeFull: %v", err)
	}
	if sr != sampleRate || ch != 1 {
		t.Errorf("decoded %d Hz %d ch, want %d Hz mono", sr, ch, sampleRate)
	}
	checkGapless(t, len(pcm)/2, frames)
}

func TestEncoderConstantBitrate(t *testing.T) {
	data, enc := encodeAll(t, sine(44100, 2, 44100/2, 880), 44100, 2, 1152)

	var count int
	err := Scan(data, func(h FrameHeader) bool {
		count++
		if h.Bitrate != DefaultBitrate {
			t.Errorf("frame %d bitrate = %d, want %d", count, h.Bitrate, DefaultBitrate)
			return false
		}
		return true
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// The Info tag frame comes first and is not counted by the encoder.
	if count != enc.Frames()+1 {
		t.Errorf("scanned %d frames, encoder reported %d plus the tag", count, enc.Frames())
	}
	total := enc.Frames() * enc.FrameSize()
	if got := enc.Delay() + 44100/2 + enc.Padding(); got > total || total-got >= enc.FrameSize() {
		t.Errorf("delay+samples+padding = %d, frames cover %d", got, total)
	}
}

func TestEncoderInfoTag(t *testing.T) {
	data, enc := encodeAll(t, sine(44100, 2, 30000, 440), 44100, 2, 1152)

	tag, ok := ParseInfoTag(data)
	if !ok {
		t.Fatal("no Info tag in encoder output")
	}
	if tag.VBR || !tag.Gapless() || !strings.HasPrefix(tag.Encoder, "LAME") {
		t.Errorf("tag = %+v", tag)
	}
	if tag.Delay != enc.Delay() || tag.Padding != enc.Padding() || tag.Frames != enc.Frames() {
		t.Errorf("tag = %+v, encoder delay %d padding %d frames %d",
			tag, enc.Delay(), enc.Padding(), enc.Frames())
	}

	d := NewDecoder(bytes.NewReader(data))
	if _, err := io.ReadAll(d); err != nil {
		t.Fatal(err)
	}
	if got, ok := d.Tag(); !ok || got != tag {
		t.Errorf("decoder tag = %+v, %v", got, ok)
	}
}

func TestInfoFrameBeforeFlush(t *testing.T) {
	enc, err := NewEncoder(44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	if _, err := enc.InfoFrame(); err == nil {
		t.Error("InfoFrame before Flush succeeded")
	}
	if _, err := enc.Flush(); err != nil {
		t.Fatal(err)
	}
	enc.Close()
	if _, err := enc.InfoFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("InfoFrame after Close: %v", err)
	}
}

// infoFrame builds a tag frame of the given header with a LAME extension
// recording delay and padding.
func infoFrame(header []byte, sideInfo int, id string, flags uint32, delay, padding int) []byte {
	h, err := ParseFrameHeader(header)
	if err != nil {
		panic(err)
	}
	frame := make([]byte, h.Size())
	copy(frame, header)
	pos := 4 + sideInfo
	pos += copy(frame[pos:], id)
	binary.BigEndian.PutUint32(frame[pos:], flags)
	pos += 4
	if flags&0x1 != 0 {
		binary.BigEndian.PutUint32(frame[pos:], 100)
		pos += 4
	}
	if flags&0x2 != 0 {
		binary.BigEndian.PutUint32(frame[pos:], 41700)
		pos += 4
	}
	if flags&0x4 != 0 {
		pos += 100
	}
	if flags&0x8 != 0 {
		pos += 4
	}
	if delay < 0 {
		return frame
	}
	copy(frame[pos:], "LAME3.100")
	frame[pos+21] = byte(delay >> 4)
	frame[pos+22] = byte(delay&0x0F)<<4 | byte(padding>>8)
	frame[pos+23] = byte(padding)
	return frame
}

func TestParseInfoTag(t *testing.T) {
	stereo := []byte{0xFF, 0xFB, 0x90, 0x64} // MPEG-1, 128 kbps, 44.1 kHz
	mono := []byte{0xFF, 0xF3, 0x88, 0xC4}   // MPEG-2, 64 kbps, 16 kHz

	tests := []struct {
		name  string
		frame []byte
		want  InfoTag
	}{
		{
			"MPEG-1 Info all fields",
			infoFrame(stereo, 32, "Info", 0xF, 576, 1234),
			InfoTag{Frames: 100, Bytes: 41700, Encoder: "LAME3.100", Delay: 576, Padding: 1234},
		},
		{
			"MPEG-2 mono no fields",
			infoFrame(mono, 9, "Info", 0, 576, 17),
			InfoTag{Encoder: "LAME3.100", Delay: 576, Padding: 17},
		},
		{
			"Xing without extension",
			infoFrame(stereo, 32, "Xing", 0x3, -1, 0),
			InfoTag{VBR: true, Frames: 100, Bytes: 41700},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInfoTag(tt.frame)
			if !ok {
				t.Fatal("tag not found")
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.Gapless() != (tt.want.Encoder != "") {
				t.Errorf("Gapless = %v", got.Gapless())
			}
		})
	}

	audio := make([]byte, 417)
	copy(audio, stereo)
	if _, ok := ParseInfoTag(audio); ok {
		t.Error("plain audio frame parsed as a tag")
	}
	if _, ok := ParseInfoTag(stereo); ok {
		t.Error("bare header parsed as a tag")
	}
}

func TestEncoderDeterministic(t *testing.T) {
	samples := sine(44100, 2, 10000, 330)
	a, _ := encodeAll(t, samples, 44100, 2, 1152)
	b, _ := encodeAll(t, samples, 44100, 2, 1152)
	if !bytes.Equal(a, b) {
		t.Fatalf("outputs differ: %d vs %d bytes", len(a), len(b))
	}
}

func TestEncoderQualityPresets(t *testing.T) {
	samples := sine(44100, 2, 4410, 440)
	qualities := []struct {
		name    string
		quality Quality
	}{
		{"Best", QualityBest},
		{"High", QualityHigh},
		{"Medium", QualityMedium},
		{"Low", QualityLow},
		{"Fast", QualityFast},
	}
	for _, q := range qualities {
		data, _ := encodeAll(t, samples, 44100, 2, 1152, WithQuality(q.quality))
		if len(data) == 0 {
			t.Errorf("Quality %s: empty output", q.name)
		}
		t.Logf("Quality %s: %d bytes", q.name, len(data))
	}
}

func TestEncoderLifecycle(t *testing.T) {
	if _, err := NewEncoder(44100, 3); !errors.Is(err, ErrUnsupported) {
		t.Errorf("3 channels: err = %v, want ErrUnsupported", err)
	}
	if _, err := NewEncoder(0, 2); !errors.Is(err, ErrUnsupported) {
		t.Errorf("0 Hz: err = %v, want ErrUnsupported", err)
	}

	enc, err := NewEncoder(44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode(make([]int16, 3)); err == nil {
		t.Error("odd sample count accepted for stereo")
	}
	if frag, err := enc.Encode(nil); err != nil || len(frag) != 0 {
		t.Errorf("Encode(nil) = %d bytes, %v", len(frag), err)
	}
	if _, err := enc.Flush(); err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode(make([]int16, 2)); !errors.Is(err, ErrClosed) {
		t.Errorf("Encode after Flush: %v", err)
	}
	if _, err := enc.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Flush: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestParseFrameHeader(t *testing.T) {
	// MPEG-1 layer III, 128 kbps, 44.1 kHz, no padding, joint stereo.
	h, err := ParseFrameHeader([]byte{0xFF, 0xFB, 0x90, 0x64})
	if err != nil {
		t.Fatal(err)
	}
	if h.Version != MPEG1 || h.Layer != 3 || h.Bitrate != 128 || h.SampleRate != 44100 {
		t.Errorf("header = %+v", h)
	}
	if h.Mode != JointStereo || h.Channels() != 2 {
		t.Errorf("mode = %d", h.Mode)
	}
	if h.Size() != 417 || h.Samples() != 1152 {
		t.Errorf("size = %d samples = %d", h.Size(), h.Samples())
	}

	// Same with mono channel mode and padding.
	h, err = ParseFrameHeader([]byte{0xFF, 0xFB, 0x92, 0xC4})
	if err != nil {
		t.Fatal(err)
	}
	if h.Channels() != 1 || h.Size() != 418 {
		t.Errorf("mono header = %+v size %d", h, h.Size())
	}

	for _, b := range [][]byte{
		{0xFF},
		{0x00, 0xFB, 0x90, 0x64},
		{0xFF, 0xFB, 0xF0, 0x64}, // bad bitrate
		{0xFF, 0xFB, 0x9C, 0x64}, // reserved sample rate
		{0xFF, 0xEB, 0x90, 0x64}, // reserved version
	} {
		if _, err := ParseFrameHeader(b); !errors.Is(err, ErrNoFrame) {
			t.Errorf("ParseFrameHeader(%x) = %v, want ErrNoFrame", b, err)
		}
	}
}

func TestSkipID3v2(t *testing.T) {
	tag := []byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0x01, 0x00}
	data := append(tag, make([]byte, 128)...)
	if got := SkipID3v2(data); got != 138 {
		t.Errorf("SkipID3v2 = %d, want 138", got)
	}
	if got := SkipID3v2([]byte("RIFF....WAVE")); got != 0 {
		t.Errorf("SkipID3v2(RIFF) = %d", got)
	}
}

func TestFirstFrameNoData(t *testing.T) {
	if _, _, err := FirstFrame([]byte("not an mp3 stream at all")); !errors.Is(err, ErrNoFrame) {
		t.Errorf("err = %v", err)
	}
}
