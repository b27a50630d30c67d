package pcm

import "math"

// Quantize converts a float sample to a signed 16-bit integer.
//
// The sample is clamped to [-1, 1]. Negative values are scaled by 0x8000 and
// non-negative values by 0x7FFF, then truncated toward zero, so -1 maps to
// -32768 and 1 maps to 32767. NaN maps to 0.
func Quantize(s float32) int16 {
	switch {
	case math.IsNaN(float64(s)):
		return 0
	case s < -1:
		s = -1
	case s > 1:
		s = 1
	}
	if s < 0 {
		return int16(float64(s) * 0x8000)
	}
	return int16(float64(s) * 0x7FFF)
}
