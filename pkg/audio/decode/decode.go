// Package decode turns compressed audio containers into planar float PCM.
//
// A Registry maps declared media types and magic bytes to codecs. Built-in
// codecs cover WAV, MP3 and Ogg Opus natively; every other audio/* type
// (WebM, MP4/AAC, FLAC, ...) goes to the platform decoder, which shells out
// to ffmpeg.
//
// Every decoder returns channels of equal length. Shorter channels are
// padded with silence before the buffer leaves the registry.
package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"slices"
	"strings"
	"sync"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

var (
	// ErrUnsupportedMediaType is returned when no codec accepts the input.
	ErrUnsupportedMediaType = errors.New("decode: unsupported media type")

	// ErrUnsupportedCodec is returned by a codec that recognizes the
	// container but cannot decode its contents. The registry retries such
	// inputs with the platform decoder.
	ErrUnsupportedCodec = errors.New("decode: unsupported codec")

	// ErrMalformed is returned when the input cannot be parsed.
	ErrMalformed = errors.New("decode: malformed input")

	// ErrUnavailable is returned when the platform decoder is not installed.
	ErrUnavailable = errors.New("decode: platform decoder unavailable")
)

// Decoder decodes a complete compressed input.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (*pcm.Planar, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, data []byte) (*pcm.Planar, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(ctx context.Context, data []byte) (*pcm.Planar, error) {
	return f(ctx, data)
}

// Codec describes one registered decoder.
type Codec struct {
	Name string

	// Priority orders codecs claiming the same input. Lower wins.
	Priority int

	// MediaTypes are the base media types the codec accepts, lower case and
	// without parameters.
	MediaTypes []string

	// Magic reports whether the leading bytes belong to this codec.
	Magic func(head []byte) bool

	Decoder Decoder
}

func (c *Codec) accepts(mediaType string) bool {
	return slices.Contains(c.MediaTypes, mediaType)
}

func (c *Codec) sniff(head []byte) bool {
	return c.Magic != nil && c.Magic(head)
}

// Registry selects a codec for an input and decodes it.
type Registry struct {
	mu       sync.RWMutex
	codecs   []Codec
	platform *Codec
	logger   *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetLogger sets the logger used for debug output. Nil means slog.Default.
func (r *Registry) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// Register adds a codec. Codecs are kept sorted by priority.
func (r *Registry) Register(c Codec) {
	c.MediaTypes = slices.Clone(c.MediaTypes)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs = append(r.codecs, c)
	slices.SortStableFunc(r.codecs, func(a, b Codec) int { return a.Priority - b.Priority })
}

// SetPlatform sets the platform codec. It takes audio media types no
// registered codec claims, and inputs a codec refused with
// ErrUnsupportedCodec. It never sees inputs a codec found malformed.
func (r *Registry) SetPlatform(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platform = &c
}

// Codecs returns the registered codecs in priority order.
func (r *Registry) Codecs() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.codecs)
}

// BaseMediaType lower-cases a media type and strips its parameters, so
// "audio/webm;codecs=opus" becomes "audio/webm". It returns "" for an
// empty or unparseable value.
func BaseMediaType(mediaType string) string {
	if strings.TrimSpace(mediaType) == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ""
	}
	return mt
}

// Lookup selects a codec for the declared media type and leading bytes.
//
// An empty or application/octet-stream type is resolved by magic bytes
// alone. For a declared type, a codec whose magic contradicts the data is
// overridden by a sniffed match. Audio types no codec claims go to the
// platform codec. Anything else is rejected with ErrUnsupportedMediaType.
func (r *Registry) Lookup(mediaType string, head []byte) (*Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mt := BaseMediaType(mediaType)
	sniffed := r.sniffLocked(head)

	if mt == "" || mt == "application/octet-stream" {
		if sniffed != nil {
			return sniffed, nil
		}
		return nil, fmt.Errorf("%w: unrecognized data", ErrUnsupportedMediaType)
	}

	for i := range r.codecs {
		c := &r.codecs[i]
		if !c.accepts(mt) {
			continue
		}
		if c.Magic != nil && !c.sniff(head) && sniffed != nil {
			return sniffed, nil
		}
		return c, nil
	}

	if !isAudioType(mt) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
	}
	if sniffed != nil {
		return sniffed, nil
	}
	if r.platform != nil {
		return r.platform, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
}

func (r *Registry) sniffLocked(head []byte) *Codec {
	for i := range r.codecs {
		if r.codecs[i].sniff(head) {
			return &r.codecs[i]
		}
	}
	if r.platform != nil && r.platform.sniff(head) {
		return r.platform
	}
	return nil
}

func isAudioType(mt string) bool {
	return strings.HasPrefix(mt, "audio/")
}

// Decode decodes data using the codec selected by Lookup. The returned
// buffer has a positive sample rate, at least one channel, and channels of
// equal length.
//
// A codec that refuses the stream with ErrUnsupportedCodec hands it to the
// platform codec once, as when Ogg Vorbis arrives as audio/ogg. Any other
// failure, ErrMalformed included, is returned as is.
func (r *Registry) Decode(ctx context.Context, mediaType string, data []byte) (*pcm.Planar, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	c, err := r.Lookup(mediaType, data[:min(len(data), 64)])
	if err != nil {
		return nil, err
	}

	log := r.log()
	log.Debug("decode", "codec", c.Name, "media_type", mediaType, "bytes", len(data))

	p, err := c.Decoder.Decode(ctx, data)
	if errors.Is(err, ErrUnsupportedCodec) {
		r.mu.RLock()
		pc := r.platform
		r.mu.RUnlock()
		if pc != nil && pc.Name != c.Name {
			log.Debug("codec refused stream", "codec", c.Name, "platform", pc.Name, "err", err)
			p, err = pc.Decoder.Decode(ctx, data)
		}
	}
	if err != nil {
		return nil, err
	}

	p.Pad()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}

func (r *Registry) log() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry with the built-in codecs and the
// ffmpeg platform decoder.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistryWithBuiltins(&FFmpeg{})
	})
	return defaultRegistry
}

// NewRegistryWithBuiltins returns a registry with the built-in codecs and
// the given platform decoder, which may be nil.
func NewRegistryWithBuiltins(platform Decoder) *Registry {
	r := NewRegistry()
	RegisterBuiltins(r, platform)
	return r
}

// RegisterBuiltins registers the WAV, MP3 and Ogg Opus codecs and, when
// platform is non-nil, the platform decoder for WebM, MP4, AAC, FLAC and
// any other audio type.
func RegisterBuiltins(r *Registry, platform Decoder) {
	r.Register(Codec{
		Name:       "wav",
		Priority:   100,
		MediaTypes: []string{"audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave"},
		Magic:      isWAV,
		Decoder:    DecoderFunc(DecodeWAV),
	})
	r.Register(Codec{
		Name:       "mp3",
		Priority:   110,
		MediaTypes: []string{"audio/mpeg", "audio/mp3", "audio/mpeg3", "audio/x-mpeg-3"},
		Magic:      isMP3,
		Decoder:    DecoderFunc(DecodeMP3),
	})
	r.Register(Codec{
		Name:       "opus",
		Priority:   120,
		MediaTypes: []string{"audio/ogg", "audio/opus", "application/ogg"},
		Magic:      isOgg,
		Decoder:    DecoderFunc(DecodeOpus),
	})
	if platform == nil {
		return
	}
	platformTypes := []string{
		"audio/webm", "video/webm",
		"audio/mp4", "audio/x-m4a", "audio/m4a", "video/mp4",
		"audio/aac", "audio/x-aac", "audio/aacp",
		"audio/flac", "audio/x-flac",
		"audio/3gpp", "audio/x-caf", "audio/aiff", "audio/x-aiff",
	}
	r.Register(Codec{
		Name:       "ffmpeg",
		Priority:   900,
		MediaTypes: platformTypes,
		Magic:      isPlatform,
		Decoder:    platform,
	})
	r.SetPlatform(Codec{
		Name:    "ffmpeg",
		Decoder: platform,
	})
}
