package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/codec/mp3"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/codec/ogg"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/codec/opus"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

// wavBytes encodes interleaved integer samples as a PCM WAV file.
func wavBytes(t *testing.T, sampleRate, depth, channels int, data []int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, sampleRate, depth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("wav write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("wav close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func sine16(frames, channels int) []int {
	out := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		v := int(math.Sin(2*math.Pi*float64(i)/100) * 12000)
		for c := 0; c < channels; c++ {
			out[i*channels+c] = v
		}
	}
	return out
}

func TestLookup(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r, DecoderFunc(func(context.Context, []byte) (*pcm.Planar, error) {
		return nil, errors.New("platform")
	}))

	wavHead := []byte("RIFF\x00\x00\x00\x00WAVEfmt ")
	oggHead := []byte("OggS\x00\x02")
	webmHead := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F}
	mp3Head := []byte{0xFF, 0xFB, 0x90, 0x64}

	tests := []struct {
		mediaType string
		head      []byte
		want      string
		err       error
	}{
		{"audio/wav", wavHead, "wav", nil},
		{"audio/x-wav", wavHead, "wav", nil},
		{"audio/mpeg", mp3Head, "mp3", nil},
		{"audio/mpeg", []byte("ID3\x04"), "mp3", nil},
		{"audio/ogg; codecs=opus", oggHead, "opus", nil},
		{"audio/webm;codecs=opus", webmHead, "ffmpeg", nil},
		{"AUDIO/WEBM", webmHead, "ffmpeg", nil},
		{"video/webm", webmHead, "ffmpeg", nil},
		{"audio/x-something", []byte("????"), "ffmpeg", nil},
		{"", wavHead, "wav", nil},
		{"application/octet-stream", oggHead, "opus", nil},
		{"", []byte("hello"), "", ErrUnsupportedMediaType},
		{"text/plain", []byte("hello"), "", ErrUnsupportedMediaType},
		{"image/png", []byte("\x89PNG"), "", ErrUnsupportedMediaType},
		// Declared type contradicted by the data.
		{"audio/ogg", webmHead, "ffmpeg", nil},
		{"audio/webm", wavHead, "wav", nil},
	}
	for _, tt := range tests {
		c, err := r.Lookup(tt.mediaType, tt.head)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("Lookup(%q) err = %v, want %v", tt.mediaType, err, tt.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Lookup(%q): %v", tt.mediaType, err)
			continue
		}
		if c.Name != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.mediaType, c.Name, tt.want)
		}
	}
}

func TestLookupWithoutPlatform(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r, nil)
	if _, err := r.Lookup("audio/webm", []byte{0x1A, 0x45, 0xDF, 0xA3}); !errors.Is(err, ErrUnsupportedMediaType) {
		t.Errorf("err = %v, want ErrUnsupportedMediaType", err)
	}
}

func TestBaseMediaType(t *testing.T) {
	tests := map[string]string{
		"audio/webm;codecs=opus": "audio/webm",
		"Audio/MPEG":             "audio/mpeg",
		"":                       "",
		"  ":                     "",
		"not a type;;":           "",
	}
	for in, want := range tests {
		if got := BaseMediaType(in); got != want {
			t.Errorf("BaseMediaType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeWAV16(t *testing.T) {
	data := []int{0, 32767, -32768, 16384, 100, -100}
	b := wavBytes(t, 22050, 16, 2, data)

	p, err := DecodeWAV(context.Background(), b)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if p.SampleRate != 22050 || len(p.Channels) != 2 || p.Frames() != 3 {
		t.Fatalf("got %v with %d frames", p.Format(), p.Frames())
	}
	want := [][]float32{{0, -1, 100.0 / 32768}, {32767.0 / 32768, 0.5, -100.0 / 32768}}
	for c := range want {
		for i := range want[c] {
			if p.Channels[c][i] != want[c][i] {
				t.Errorf("ch%d[%d] = %v, want %v", c, i, p.Channels[c][i], want[c][i])
			}
		}
	}
}

func TestDecodeWAV8And24(t *testing.T) {
	p, err := DecodeWAV(context.Background(), wavBytes(t, 8000, 8, 1, []int{128, 0, 255}))
	if err != nil {
		t.Fatalf("8-bit: %v", err)
	}
	if got := p.Channels[0]; got[0] != 0 || got[1] != -1 || got[2] != 127.0/128 {
		t.Errorf("8-bit samples = %v", got)
	}

	p, err = DecodeWAV(context.Background(), wavBytes(t, 48000, 24, 1, []int{-8388608, 4194304}))
	if err != nil {
		t.Fatalf("24-bit: %v", err)
	}
	if got := p.Channels[0]; got[0] != -1 || got[1] != 0.5 {
		t.Errorf("24-bit samples = %v", got)
	}
}

func TestDecodeWAVMalformed(t *testing.T) {
	_, err := DecodeWAV(context.Background(), []byte("RIFF\x04\x00\x00\x00WAVE"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestRegistryDecodeMP3(t *testing.T) {
	const sampleRate, channels, frames = 44100, 1, 44100 / 2
	enc, err := mp3.NewEncoder(sampleRate, channels)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()

	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16(math.Sin(2*math.Pi*float64(i)/50) * 10000)
	}
	var buf bytes.Buffer
	frag, err := enc.Encode(samples)
	if err != nil {
		t.Fatal(err)
	}
	buf.Write(frag)
	frag, err = enc.Flush()
	if err != nil {
		t.Fatal(err)
	}
	buf.Write(frag)
	tag, err := enc.InfoFrame()
	if err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	copy(data, tag)

	p, err := NewRegistryWithBuiltins(nil).Decode(context.Background(), "audio/mpeg", data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.SampleRate != sampleRate || len(p.Channels) != channels {
		t.Errorf("format = %v", p.Format())
	}
	// Gapless trimming is exact up to the 529 sample decoder delay.
	if p.Frames() > frames || p.Frames() < frames-529 {
		t.Errorf("frames = %d, want %d", p.Frames(), frames)
	}
}

func TestRegistryDecodeOpus(t *testing.T) {
	const frameSize, frames = 960, 48000 + 480

	for _, channels := range []int{1, 2} {
		enc, err := opus.NewEncoder(pcm.Format{SampleRate: ogg.OpusSampleRate, Channels: channels})
		if err != nil {
			t.Fatal(err)
		}
		preSkip, err := enc.Lookahead()
		if err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		w, err := ogg.NewOpusWriter(&buf, 7, ogg.OpusHead{Channels: channels, PreSkip: preSkip, InputSampleRate: 48000})
		if err != nil {
			t.Fatal(err)
		}
		block := make([]int16, frameSize*channels)
		for pos := 0; pos < frames; pos += frameSize {
			pkt, err := enc.Encode(block)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.WritePacket(pkt, int64(preSkip+min(pos+frameSize, frames))); err != nil {
				t.Fatal(err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		enc.Close()

		p, err := NewRegistryWithBuiltins(nil).Decode(context.Background(), "audio/ogg;codecs=opus", buf.Bytes())
		if err != nil {
			t.Fatalf("%d ch: Decode: %v", channels, err)
		}
		if p.SampleRate != 48000 || len(p.Channels) != channels {
			t.Errorf("%d ch: format = %v", channels, p.Format())
		}
		if p.Frames() != frames {
			t.Errorf("%d ch: frames = %d, want %d", channels, p.Frames(), frames)
		}
	}
}

func TestRegistryPlatformHandoffAndPadding(t *testing.T) {
	r := NewRegistry()
	r.Register(Codec{
		Name:       "picky",
		MediaTypes: []string{"audio/x-picky"},
		Decoder: DecoderFunc(func(context.Context, []byte) (*pcm.Planar, error) {
			return nil, ErrUnsupportedCodec
		}),
	})
	r.SetPlatform(Codec{
		Name: "platform",
		Decoder: DecoderFunc(func(context.Context, []byte) (*pcm.Planar, error) {
			return &pcm.Planar{SampleRate: 16000, Channels: [][]float32{{0.1, 0.2}, {0.3}}}, nil
		}),
	})

	p, err := r.Decode(context.Background(), "audio/x-picky", []byte("data"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(p.Channels[1]) != 2 || p.Channels[1][1] != 0 {
		t.Errorf("channel 1 not padded: %v", p.Channels[1])
	}
}

func TestRegistryMalformedNotHandedOff(t *testing.T) {
	var platformCalls int
	r := NewRegistry()
	r.Register(Codec{
		Name:       "strict",
		MediaTypes: []string{"audio/x-strict"},
		Decoder: DecoderFunc(func(context.Context, []byte) (*pcm.Planar, error) {
			return nil, fmt.Errorf("%w: truncated frame", ErrMalformed)
		}),
	})
	r.SetPlatform(Codec{
		Name: "platform",
		Decoder: DecoderFunc(func(context.Context, []byte) (*pcm.Planar, error) {
			platformCalls++
			return &pcm.Planar{SampleRate: 16000, Channels: [][]float32{{0}}}, nil
		}),
	})

	_, err := r.Decode(context.Background(), "audio/x-strict", []byte("data"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
	if platformCalls != 0 {
		t.Errorf("platform codec called %d times for a malformed stream", platformCalls)
	}
}

func TestRegistryPlatformRefusalNotRetried(t *testing.T) {
	var calls int
	r := NewRegistry()
	r.SetPlatform(Codec{
		Name: "platform",
		Decoder: DecoderFunc(func(context.Context, []byte) (*pcm.Planar, error) {
			calls++
			return nil, ErrUnsupportedCodec
		}),
	})
	_, err := r.Decode(context.Background(), "audio/x-anything", []byte("data"))
	if !errors.Is(err, ErrUnsupportedCodec) || calls != 1 {
		t.Errorf("err = %v after %d calls", err, calls)
	}
}

func TestRegistryDecodeErrors(t *testing.T) {
	r := NewRegistryWithBuiltins(nil)
	ctx := context.Background()
	if _, err := r.Decode(ctx, "audio/wav", nil); !errors.Is(err, ErrMalformed) {
		t.Errorf("empty: %v", err)
	}
	if _, err := r.Decode(ctx, "text/plain", []byte("hi")); !errors.Is(err, ErrUnsupportedMediaType) {
		t.Errorf("text: %v", err)
	}
	if _, err := r.Decode(ctx, "audio/wav", []byte("RIFF\x00\x00\x00\x00WAVEjunk")); !errors.Is(err, ErrMalformed) {
		t.Errorf("bad wav: %v", err)
	}

	r.Register(Codec{
		Name:       "empty",
		MediaTypes: []string{"audio/x-empty"},
		Decoder: DecoderFunc(func(context.Context, []byte) (*pcm.Planar, error) {
			return &pcm.Planar{SampleRate: 8000}, nil
		}),
	})
	if _, err := r.Decode(ctx, "audio/x-empty", []byte("x")); !errors.Is(err, ErrMalformed) {
		t.Errorf("no channels: %v", err)
	}
}

func TestFFmpegDecodeWAV(t *testing.T) {
	f := &FFmpeg{TempDir: t.TempDir()}
	if !f.Available() {
		t.Skip("ffmpeg not installed")
	}
	b := wavBytes(t, 16000, 16, 2, sine16(1600, 2))
	p, err := f.Decode(context.Background(), b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.SampleRate != 16000 || len(p.Channels) != 2 || p.Frames() != 1600 {
		t.Errorf("got %v with %d frames", p.Format(), p.Frames())
	}

	want, err := DecodeWAV(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1600; i++ {
		if d := p.Channels[0][i] - want.Channels[0][i]; d > 1e-4 || d < -1e-4 {
			t.Fatalf("sample %d = %v, want %v", i, p.Channels[0][i], want.Channels[0][i])
		}
	}

	if _, err := f.Decode(context.Background(), []byte("definitely not media")); !errors.Is(err, ErrMalformed) {
		t.Errorf("garbage: %v", err)
	}
}

func TestFFmpegUnavailable(t *testing.T) {
	f := &FFmpeg{FFmpegPath: filepath.Join(t.TempDir(), "no-ffmpeg")}
	if _, err := f.Decode(context.Background(), []byte("x")); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestPlanarFromF32LE(t *testing.T) {
	b := make([]byte, 16)
	for i, v := range []float32{0.5, -0.5, 1, -1} {
		bits := math.Float32bits(v)
		b[4*i] = byte(bits)
		b[4*i+1] = byte(bits >> 8)
		b[4*i+2] = byte(bits >> 16)
		b[4*i+3] = byte(bits >> 24)
	}
	p := planarFromF32LE(b, 8000, 2)
	if p.Frames() != 2 || p.Channels[0][1] != 1 || p.Channels[1][0] != -0.5 {
		t.Errorf("planar = %v", p.Channels)
	}
}
