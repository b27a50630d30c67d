// Package opus wraps libopus. Recordings are decoded straight into planar
// float buffers; the encoder exists to build Ogg Opus fixtures.
package opus

/*
#cgo pkg-config: opus
#include <opus.h>
*/
import "C"
import (
	"errors"
	"fmt"
)

// MaxFrameSamples is the longest Opus packet (120 ms) at 48 kHz.
const MaxFrameSamples = 5760

// ErrClosed is returned by calls on a closed codec.
var ErrClosed = errors.New("opus: codec is closed")

func opusError(op string, code C.int) error {
	return fmt.Errorf("opus: %s: %s", op, C.GoString(C.opus_strerror(code)))
}

// validRate reports whether libopus accepts rate.
func validRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

func checkLayout(sampleRate, channels int) error {
	if !validRate(sampleRate) {
		return fmt.Errorf("opus: unsupported sample rate %d", sampleRate)
	}
	if channels != 1 && channels != 2 {
		return fmt.Errorf("opus: unsupported channel count %d", channels)
	}
	return nil
}
