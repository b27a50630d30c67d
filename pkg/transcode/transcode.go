// Package transcode converts recorded audio to a constant bitrate MP3
// stream.
//
// A transcode runs four steps in order: the container is decoded to planar
// float PCM, the samples are quantized and interleaved to 16-bit integers,
// a fresh encoder session consumes them in blocks of BlockSamples frames,
// and the fragments it emits are concatenated into one audio/mpeg buffer.
//
// Each call owns its encoder session, so a Transcoder may be used from many
// goroutines at once. Every failure is terminal and no partial stream is
// ever returned.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/decode"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

// ErrNoAudio is wrapped in a DecodeError when the input decodes to zero
// samples.
var ErrNoAudio = errors.New("transcode: input contains no audio")

// Input is a compressed recording and its declared media type.
type Input struct {
	Data      []byte
	MediaType string
}

// Decoder turns compressed bytes into planar PCM. *decode.Registry
// implements it.
type Decoder interface {
	Decode(ctx context.Context, mediaType string, data []byte) (*pcm.Planar, error)
}

// Transcoder runs the pipeline. The zero value is not usable; call New.
type Transcoder struct {
	decoder Decoder
	driver  Driver
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithDecoder replaces the default decode registry.
func WithDecoder(d Decoder) Option {
	return func(t *Transcoder) {
		t.decoder = d
	}
}

// WithSessionFactory replaces the LAME encoder.
func WithSessionFactory(f SessionFactory) Option {
	return func(t *Transcoder) {
		t.driver.NewSession = f
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *Metrics) Option {
	return func(t *Transcoder) {
		t.metrics = m
	}
}

// WithLogger sets the logger. Nil means slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transcoder) {
		t.logger = l
	}
}

// New creates a Transcoder.
func New(opts ...Option) *Transcoder {
	t := &Transcoder{}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.decoder == nil {
		t.decoder = decode.Default()
	}
	t.driver.Logger = t.logger
	return t
}

// Transcode converts in to an MP3 stream.
//
// Errors are one of *DecodeError, *InvariantError, *EncoderUnavailableError
// or *EncodeError, or the context's error if it ends between blocks.
func (t *Transcoder) Transcode(ctx context.Context, in Input) (out *Output, err error) {
	start := time.Now()
	defer func() {
		t.metrics.record(ctx, start, out, err)
		if err != nil {
			t.logger.Warn("transcode failed", "media_type", in.MediaType, "bytes", len(in.Data),
				"kind", Kind(err), "err", err)
		}
	}()

	planar, err := t.decoder.Decode(ctx, in.MediaType, in.Data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &DecodeError{MediaType: in.MediaType, Err: err}
	}
	format := planar.Format()
	if err := format.Validate(); err != nil {
		return nil, &DecodeError{MediaType: in.MediaType, Err: err}
	}

	samples, err := planar.Interleave()
	if err != nil {
		return nil, &InvariantError{Op: "interleave", Err: err}
	}
	if len(samples) == 0 {
		return nil, &DecodeError{MediaType: in.MediaType, Err: ErrNoAudio}
	}

	enc, err := t.driver.Encode(ctx, samples, format)
	if err != nil {
		return nil, err
	}

	out = Assemble(enc.Fragments)
	out.Format = format
	out.Frames = len(samples) / format.Channels
	out.Duration = format.Duration(int64(out.Frames))
	out.Blocks = enc.Blocks
	out.EncoderDelay = enc.Delay
	out.EncoderPadding = enc.Padding

	t.logger.Info("transcoded",
		"media_type", in.MediaType,
		"format", fmt.Sprintf("%d Hz/%d ch", format.SampleRate, format.Channels),
		"duration", out.Duration,
		"in_bytes", len(in.Data),
		"out_bytes", len(out.Data),
		"elapsed", time.Since(start),
	)
	return out, nil
}
