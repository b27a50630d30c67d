package transcode

import (
	"time"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

// OutputMediaType is the media type of every transcoded stream.
const OutputMediaType = "audio/mpeg"

// Output is a complete compressed stream.
type Output struct {
	Data      []byte
	MediaType string

	// Format and Frames describe the PCM that was encoded; Duration is its
	// playback time.
	Format   pcm.Format
	Frames   int
	Duration time.Duration

	Blocks    int
	Fragments int

	// EncoderDelay and EncoderPadding are the silent samples per channel the
	// encoder added at the start and end of the stream.
	EncoderDelay   int
	EncoderPadding int
}

// Assemble concatenates fragments in order into one buffer tagged with
// OutputMediaType. Empty fragments contribute nothing.
func Assemble(fragments [][]byte) *Output {
	n := 0
	for _, f := range fragments {
		n += len(f)
	}
	data := make([]byte, 0, n)
	for _, f := range fragments {
		data = append(data, f...)
	}
	return &Output{
		Data:      data,
		MediaType: OutputMediaType,
		Fragments: len(fragments),
	}
}

// FileName returns a safe file name for the output derived from title. A
// non-empty id is appended so recordings with equal titles get distinct
// names.
func (o *Output) FileName(title, id string) string {
	if id == "" {
		return FileName(title, ".mp3")
	}
	return FileName(title, "-"+id+".mp3")
}
