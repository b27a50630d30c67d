package transcode

import (
	"context"
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrDecode             = errors.New("transcode: decode failed")
	ErrInvariant          = errors.New("transcode: invariant violated")
	ErrEncoderUnavailable = errors.New("transcode: encoder unavailable")
	ErrEncode             = errors.New("transcode: encode failed")
)

// DecodeError reports input that is malformed, of an unsupported type, or
// holds no audio. The user can fix it by recording or uploading again.
type DecodeError struct {
	MediaType string
	Err       error
}

func (e *DecodeError) Error() string {
	if e.MediaType == "" {
		return fmt.Sprintf("transcode: decode: %v", e.Err)
	}
	return fmt.Sprintf("transcode: decode %s: %v", e.MediaType, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// InvariantError reports decoded audio that breaks the pipeline's
// assumptions, such as channels of different lengths. It indicates a bug.
type InvariantError struct {
	Op  string
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("transcode: %s: invariant violated: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() []error { return []error{ErrInvariant, e.Err} }

// EncoderUnavailableError reports that no encoder session could be created
// for the stream parameters.
type EncoderUnavailableError struct {
	SampleRate int
	Channels   int
	Bitrate    int
	Err        error
}

func (e *EncoderUnavailableError) Error() string {
	return fmt.Sprintf("transcode: no encoder for %d Hz, %d channels, %d kbps: %v",
		e.SampleRate, e.Channels, e.Bitrate, e.Err)
}

func (e *EncoderUnavailableError) Unwrap() []error { return []error{ErrEncoderUnavailable, e.Err} }

// EncodeError reports an encoder failure mid-stream. No partial output is
// returned with it.
type EncodeError struct {
	// Block is the zero-based index of the failing block. For a flush
	// failure it equals the number of blocks submitted.
	Block int
	Flush bool
	Err   error
}

func (e *EncodeError) Error() string {
	if e.Flush {
		return fmt.Sprintf("transcode: flush after %d blocks: %v", e.Block, e.Err)
	}
	return fmt.Sprintf("transcode: encode block %d: %v", e.Block, e.Err)
}

func (e *EncodeError) Unwrap() []error { return []error{ErrEncode, e.Err} }

// UserCorrectable reports whether err can be fixed by supplying different
// input, as opposed to a bug or an environment problem.
func UserCorrectable(err error) bool {
	return errors.Is(err, ErrDecode)
}

// Kind returns a short label for err suitable for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrInvariant):
		return "invariant"
	case errors.Is(err, ErrEncoderUnavailable):
		return "encoder_unavailable"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}
