// Package pcm provides types and utilities for working with uncompressed audio.
//
// Decoders produce a Planar buffer: one float32 slice per channel, nominally
// in [-1, 1]. Before encoding, the buffer is quantized and interleaved into
// signed 16-bit samples:
//
//	p := &pcm.Planar{SampleRate: 44100, Channels: [][]float32{left, right}}
//	samples, err := p.Interleave()
//
// Key types:
//   - Format: sample rate and channel count of a stream
//   - Planar: per-channel float samples sharing one sample rate
//
// Quantize maps one float sample to int16 using the asymmetric convention:
// negative values scale by 32768 and non-negative values by 32767.
package pcm
