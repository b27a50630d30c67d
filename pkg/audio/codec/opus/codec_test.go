package opus

import (
	"math"
	"testing"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

func sineFrame(f pcm.Format, frameSize int) []int16 {
	out := make([]int16, frameSize*f.Channels)
	for i := range frameSize {
		s := int16(math.Sin(2*math.Pi*440*float64(i)/float64(f.SampleRate)) * 16000)
		for c := range f.Channels {
			out[i*f.Channels+c] = s
		}
	}
	return out
}

func TestEncodeDecode(t *testing.T) {
	for _, channels := range []int{1, 2} {
		f := pcm.Format{SampleRate: 48000, Channels: channels}
		frameSize := f.SampleRate * 20 / 1000

		enc, err := NewEncoder(f, WithBitrate(64000))
		if err != nil {
			t.Fatalf("NewEncoder: %v", err)
		}
		defer enc.Close()
		dec, err := NewDecoder(f)
		if err != nil {
			t.Fatalf("NewDecoder: %v", err)
		}
		defer dec.Close()

		pkt, err := enc.Encode(sineFrame(f, frameSize))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if len(pkt) == 0 {
			t.Fatal("empty packet")
		}

		samples, err := dec.Decode(pkt)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got := len(samples) / channels; got != frameSize {
			t.Errorf("%d ch: decoded %d frames, want %d", channels, got, frameSize)
		}
		for i, s := range samples {
			if s < -1.5 || s > 1.5 {
				t.Fatalf("sample %d = %v out of range", i, s)
			}
		}
	}
}

func TestDecodeTo(t *testing.T) {
	f := pcm.Format{SampleRate: 48000, Channels: 2}
	enc, err := NewEncoder(f, WithVoIP())
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	dec, err := NewDecoder(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	p := &pcm.Planar{SampleRate: f.SampleRate}
	total := 0
	for range 3 {
		pkt, err := enc.Encode(sineFrame(f, 960))
		if err != nil {
			t.Fatal(err)
		}
		n, err := dec.DecodeTo(p, pkt)
		if err != nil {
			t.Fatal(err)
		}
		total += n
	}
	if total != 3*960 {
		t.Errorf("frames = %d", total)
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Frames() != total {
		t.Errorf("planar frames = %d, want %d", p.Frames(), total)
	}
}

func TestLookahead(t *testing.T) {
	enc, err := NewEncoder(pcm.Format{SampleRate: 48000, Channels: 1}, WithVoIP())
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	la, err := enc.Lookahead()
	if err != nil {
		t.Fatal(err)
	}
	if la <= 0 || la > 960 {
		t.Errorf("lookahead = %d", la)
	}
}

func TestEncodeRaggedFrame(t *testing.T) {
	enc, err := NewEncoder(pcm.Format{SampleRate: 48000, Channels: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	if _, err := enc.Encode(make([]int16, 961)); err == nil {
		t.Error("odd sample count accepted for stereo")
	}
}

func TestInvalidLayout(t *testing.T) {
	for _, f := range []pcm.Format{
		{SampleRate: 44100, Channels: 2},
		{SampleRate: 48000, Channels: 3},
		{SampleRate: 48000, Channels: 0},
	} {
		if _, err := NewDecoder(f); err == nil {
			t.Errorf("NewDecoder(%v) accepted", f)
		}
		if _, err := NewEncoder(f); err == nil {
			t.Errorf("NewEncoder(%v) accepted", f)
		}
	}
}

func TestClosed(t *testing.T) {
	f := pcm.Format{SampleRate: 48000, Channels: 1}
	dec, err := NewDecoder(f)
	if err != nil {
		t.Fatal(err)
	}
	dec.Close()
	dec.Close()
	if _, err := dec.Decode([]byte{0}); err != ErrClosed {
		t.Errorf("Decode err = %v, want ErrClosed", err)
	}

	enc, err := NewEncoder(f)
	if err != nil {
		t.Fatal(err)
	}
	enc.Close()
	if _, err := enc.Encode(make([]int16, 960)); err != ErrClosed {
		t.Errorf("Encode err = %v, want ErrClosed", err)
	}
	if _, err := enc.Lookahead(); err != ErrClosed {
		t.Errorf("Lookahead err = %v, want ErrClosed", err)
	}
}
