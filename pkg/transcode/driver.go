package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

const (
	// BlockSamples is the number of samples per channel submitted to the
	// encoder in one call. It matches one MPEG-1 Layer III frame.
	BlockSamples = 1152

	// BitrateKbps is the constant output bitrate.
	BitrateKbps = 128
)

// Encoded is the result of one driver run.
type Encoded struct {
	// Fragments holds the non-empty encoder outputs in emission order,
	// the flush output last.
	Fragments [][]byte

	// Blocks is the number of blocks submitted, the trailing partial block
	// included.
	Blocks int

	// Delay and Padding are the encoder's gapless figures in samples per
	// channel, or zero if the session does not report them.
	Delay   int
	Padding int
}

// Driver feeds interleaved PCM to a fresh encoder session in fixed-size
// blocks and collects the compressed fragments.
type Driver struct {
	// NewSession creates the encoder. Nil means NewMP3Session.
	NewSession SessionFactory

	// Logger receives a debug record per run. Nil means slog.Default.
	Logger *slog.Logger
}

// Encode runs one session over samples, which are interleaved with
// f.Channels channels. The last block may be shorter than BlockSamples and
// is submitted as is. Empty fragments are dropped; the flush output is
// kept when non-empty. Any encoder error aborts the run and no fragments
// are returned.
//
// If the session is an InfoFramer, its tag frame replaces the leading bytes
// of the first fragments after Flush.
//
// The context is checked before each block.
func (d *Driver) Encode(ctx context.Context, samples []int16, f pcm.Format) (*Encoded, error) {
	if err := f.Validate(); err != nil {
		return nil, &InvariantError{Op: "encode", Err: err}
	}
	if len(samples)%f.Channels != 0 {
		return nil, &InvariantError{Op: "encode", Err: fmt.Errorf(
			"%d samples do not divide into %d channels", len(samples), f.Channels)}
	}

	newSession := d.NewSession
	if newSession == nil {
		newSession = NewMP3Session
	}
	unavailable := func(err error) error {
		return &EncoderUnavailableError{SampleRate: f.SampleRate, Channels: f.Channels, Bitrate: BitrateKbps, Err: err}
	}

	sess, err := newSession(f.SampleRate, f.Channels, BitrateKbps)
	if err != nil {
		return nil, unavailable(err)
	}
	if sess == nil {
		return nil, unavailable(errors.New("session factory returned nil"))
	}
	defer sess.Close()

	if fs, ok := sess.(FrameSizer); ok {
		if n := fs.FrameSize(); n <= 0 || BlockSamples%n != 0 {
			return nil, unavailable(fmt.Errorf("encoder frame size %d does not divide block size %d", n, BlockSamples))
		}
	}

	var (
		frags  [][]byte
		blocks int
		step   = BlockSamples * f.Channels
	)
	for off := 0; off < len(samples); off += step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frag, err := sess.Encode(samples[off:min(off+step, len(samples))])
		if err != nil {
			return nil, &EncodeError{Block: blocks, Err: err}
		}
		blocks++
		if len(frag) > 0 {
			frags = append(frags, frag)
		}
	}

	frag, err := sess.Flush()
	if err != nil {
		return nil, &EncodeError{Block: blocks, Flush: true, Err: err}
	}
	if len(frag) > 0 {
		frags = append(frags, frag)
	}
	if len(frags) == 0 {
		return nil, &EncodeError{Block: blocks, Flush: true, Err: errors.New("encoder produced no output")}
	}
	if inf, ok := sess.(InfoFramer); ok {
		tag, err := inf.InfoFrame()
		if err != nil {
			return nil, &EncodeError{Block: blocks, Flush: true, Err: err}
		}
		if err := overwritePrefix(frags, tag); err != nil {
			return nil, &EncodeError{Block: blocks, Flush: true, Err: err}
		}
	}

	enc := &Encoded{Fragments: frags, Blocks: blocks}
	if g, ok := sess.(GaplessInfo); ok {
		enc.Delay = g.Delay()
		enc.Padding = g.Padding()
	}

	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Debug("encode complete",
		"sample_rate", f.SampleRate,
		"channels", f.Channels,
		"blocks", blocks,
		"fragments", len(frags),
		"delay", enc.Delay,
		"padding", enc.Padding,
	)
	return enc, nil
}

// overwritePrefix copies tag over the first len(tag) bytes of the stream
// formed by frags. The placeholder may straddle fragments.
func overwritePrefix(frags [][]byte, tag []byte) error {
	total := 0
	for _, f := range frags {
		total += len(f)
	}
	if total < len(tag) {
		return fmt.Errorf("info frame of %d bytes is longer than the %d byte stream", len(tag), total)
	}
	for _, f := range frags {
		if len(tag) == 0 {
			break
		}
		tag = tag[copy(f, tag):]
	}
	return nil
}
