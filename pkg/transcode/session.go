package transcode

import (
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/codec/mp3"
)

// Session is a single-use stateful encoder.
//
// Encode may return an empty fragment while the encoder buffers input.
// Flush drains what is left and is called exactly once. Close releases the
// session and is always called, even after a failure.
type Session interface {
	Encode(block []int16) ([]byte, error)
	Flush() ([]byte, error)
	Close() error
}

// FrameSizer is implemented by sessions that encode in fixed frames.
// The driver requires BlockSamples to be a multiple of the frame size.
type FrameSizer interface {
	FrameSize() int
}

// GaplessInfo is implemented by sessions that report how many samples
// per channel they prepend and append.
type GaplessInfo interface {
	Delay() int
	Padding() int
}

// InfoFramer is implemented by sessions whose first frame is a placeholder
// completed only after Flush. The driver writes InfoFrame over the start of
// the stream.
type InfoFramer interface {
	InfoFrame() ([]byte, error)
}

// SessionFactory creates a session for interleaved 16-bit PCM.
type SessionFactory func(sampleRate, channels, bitrateKbps int) (Session, error)

// NewMP3Session is the default SessionFactory, backed by LAME.
func NewMP3Session(sampleRate, channels, bitrateKbps int) (Session, error) {
	enc, err := mp3.NewEncoder(sampleRate, channels, mp3.WithBitrate(bitrateKbps))
	if err != nil {
		return nil, err
	}
	return enc, nil
}

var (
	_ Session     = (*mp3.Encoder)(nil)
	_ FrameSizer  = (*mp3.Encoder)(nil)
	_ GaplessInfo = (*mp3.Encoder)(nil)
	_ InfoFramer  = (*mp3.Encoder)(nil)
)
