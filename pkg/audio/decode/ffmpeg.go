package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/pcm"
)

// FFmpeg decodes any container ffmpeg understands. The input is written to
// a temporary file so demuxers that need to seek (MP4 with a trailing moov
// atom) work. ffprobe reads the layout of the first audio stream, which is
// then decoded to 32-bit float PCM without resampling or remixing.
type FFmpeg struct {
	// FFmpegPath and FFprobePath default to "ffmpeg" and "ffprobe" on PATH.
	FFmpegPath  string
	FFprobePath string

	// TempDir is where inputs are staged. Empty means os.TempDir.
	TempDir string
}

// StreamInfo is the subset of ffprobe's JSON output the decoder reads.
type StreamInfo struct {
	Streams []StreamDesc `json:"streams"`
	Format  struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// StreamDesc describes one stream reported by ffprobe.
type StreamDesc struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Duration   string `json:"duration"`
}

// Audio returns the first audio stream, or nil.
func (r *StreamInfo) Audio() *StreamDesc {
	for i := range r.Streams {
		if strings.EqualFold(r.Streams[i].CodecType, "audio") {
			return &r.Streams[i]
		}
	}
	return nil
}

func (f *FFmpeg) binaries() (ffmpeg, ffprobe string, err error) {
	ffmpeg = orDefault(f.FFmpegPath, "ffmpeg")
	ffprobe = orDefault(f.FFprobePath, "ffprobe")
	if ffmpeg, err = exec.LookPath(ffmpeg); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if ffprobe, err = exec.LookPath(ffprobe); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ffmpeg, ffprobe, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// Available reports whether both binaries can be found.
func (f *FFmpeg) Available() bool {
	_, _, err := f.binaries()
	return err == nil
}

// Inspect runs ffprobe on a file.
func (f *FFmpeg) Inspect(ctx context.Context, path string) (*StreamInfo, error) {
	_, ffprobe, err := f.binaries()
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, ffprobe, "-v", "error", "-hide_banner",
		"-show_format", "-show_streams", "-of", "json", "--", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: ffprobe: %v: %s", ErrMalformed, err, strings.TrimSpace(stderr.String()))
	}
	var res StreamInfo
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("decode: parse ffprobe output: %w", err)
	}
	return &res, nil
}

// Decode implements Decoder.
func (f *FFmpeg) Decode(ctx context.Context, data []byte) (*pcm.Planar, error) {
	ffmpeg, _, err := f.binaries()
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(f.TempDir, "meetnote-decode-*")
	if err != nil {
		return nil, fmt.Errorf("decode: stage input: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("decode: stage input: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("decode: stage input: %w", err)
	}

	info, err := f.Inspect(ctx, tmp.Name())
	if err != nil {
		return nil, err
	}
	stream := info.Audio()
	if stream == nil {
		return nil, fmt.Errorf("%w: no audio stream", ErrMalformed)
	}
	sampleRate, err := strconv.Atoi(strings.TrimSpace(stream.SampleRate))
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: audio stream sample rate %q", ErrMalformed, stream.SampleRate)
	}
	if stream.Channels <= 0 {
		return nil, fmt.Errorf("%w: audio stream has %d channels", ErrMalformed, stream.Channels)
	}

	cmd := exec.CommandContext(ctx, ffmpeg, "-v", "error", "-nostdin",
		"-i", tmp.Name(),
		"-map", "0:a:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ac", strconv.Itoa(stream.Channels),
		"-ar", strconv.Itoa(sampleRate),
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: ffmpeg: %s", ErrMalformed, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("decode: run ffmpeg: %w", err)
	}
	return planarFromF32LE(out, sampleRate, stream.Channels), nil
}

func planarFromF32LE(b []byte, sampleRate, channels int) *pcm.Planar {
	frames := len(b) / (4 * channels)
	p := pcm.NewPlanar(pcm.Format{SampleRate: sampleRate, Channels: channels}, frames)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			off := 4 * (i*channels + c)
			p.Channels[c][i] = math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
		}
	}
	return p
}
