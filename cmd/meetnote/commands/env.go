package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/decode"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/cli"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/notes"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/storage"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcode"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcribe"
)

// openRecordings returns the recording store configured for ctx and a
// function that describes where a stored path lives.
func openRecordings(ctx *cli.Context) (storage.FileStore, func(string) string, error) {
	sc := ctx.Storage
	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}
	if sc.Kind == cli.StorageS3 {
		st := storage.NewS3(newS3Client(sc), sc.Bucket, sc.Prefix)
		return st, st.URI, nil
	}
	st, err := storage.NewLocal(globalPaths.RecordingsDirFor(ctx))
	if err != nil {
		return nil, nil, err
	}
	return st, func(p string) string {
		return filepath.Join(st.Root(), filepath.FromSlash(p))
	}, nil
}

// newS3Client builds an S3 client from static settings. Without keys in
// the context, the standard AWS environment variables are used.
func newS3Client(sc cli.StorageConfig) *s3.Client {
	opts := s3.Options{
		Region:       sc.Region,
		UsePathStyle: sc.PathStyle,
		Credentials:  aws.NewCredentialsCache(staticCredentials(sc)),
	}
	if sc.Endpoint != "" {
		opts.BaseEndpoint = aws.String(sc.Endpoint)
	}
	return s3.New(opts)
}

func staticCredentials(sc cli.StorageConfig) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     sc.AccessKey,
			SecretAccessKey: sc.SecretKey,
			Source:          "meetnote config",
		}
		if creds.AccessKeyID == "" {
			creds = aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "environment",
			}
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return aws.Credentials{}, fmt.Errorf("no S3 credentials: set access_key/secret_key or AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY")
		}
		return creds, nil
	})
}

// openNotes opens the notes database for ctx.
func openNotes(ctx *cli.Context) (*notes.Store, error) {
	dir := globalPaths.DataDirFor(ctx)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return notes.Open(notes.Options{Dir: dir})
}

// newTranscoder returns a Transcoder whose ffmpeg decoder stages inputs in
// ~/.meetnote/tmp.
func newTranscoder() (*transcode.Transcoder, error) {
	if err := globalPaths.EnsureTempDir(); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	reg := decode.NewRegistryWithBuiltins(&decode.FFmpeg{TempDir: globalPaths.TempDir()})
	return transcode.New(
		transcode.WithDecoder(reg),
		transcode.WithMetrics(newMetrics()),
	), nil
}

// newTranscriber creates a Gemini client for ctx.
func newTranscriber(c context.Context, ctx *cli.Context) (*transcribe.Client, error) {
	apiKey := ctx.ResolveAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: add one with 'meetnote config add-context --api-key' or set GEMINI_API_KEY")
	}
	return transcribe.NewGemini(c, apiKey, transcribe.WithModel(ctx.Model))
}

// resolveLanguage picks the flag value, then the context default.
func resolveLanguage(flag string, ctx *cli.Context) (transcribe.Language, error) {
	if flag == "" {
		flag = ctx.Language
	}
	return transcribe.ParseLanguage(flag)
}

// mediaTypeFor guesses the media type of a recording from its name.
// Video containers and unknown extensions return "" so the decoder
// identifies the data by its leading bytes.
func mediaTypeFor(name string) string {
	mt := storage.ContentType(name)
	if strings.HasPrefix(mt, "audio/") {
		return mt
	}
	return ""
}

// titleFor returns title, or the file's base name without extension.
func titleFor(title, file string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := filepath.Base(file)
	if base == "-" || base == "." {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readInput reads a recording from a path or, for "-", standard input.
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// recording is a transcoded and stored file.
type recording struct {
	Source    string        `json:"source" yaml:"source"`
	Title     string        `json:"title" yaml:"title"`
	Path      string        `json:"path" yaml:"path"`
	Location  string        `json:"location" yaml:"location"`
	MediaType string        `json:"media_type" yaml:"media_type"`
	Bytes     int           `json:"bytes" yaml:"bytes"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Channels  int           `json:"channels" yaml:"channels"`
	Rate      int           `json:"sample_rate" yaml:"sample_rate"`
	Blocks    int           `json:"blocks" yaml:"blocks"`

	out *transcode.Output
}

// pipeline holds what one command needs to process recordings.
type pipeline struct {
	transcoder *transcode.Transcoder
	store      storage.FileStore
	locate     func(string) string
	now        func() time.Time
	newID      func() string
}

// recordingID is the suffix that keeps recording names unique.
func recordingID() string {
	return uuid.NewString()[:8]
}

func newPipeline(ctx *cli.Context) (*pipeline, error) {
	tc, err := newTranscoder()
	if err != nil {
		return nil, err
	}
	st, locate, err := openRecordings(ctx)
	if err != nil {
		return nil, err
	}
	return &pipeline{transcoder: tc, store: st, locate: locate, now: time.Now, newID: recordingID}, nil
}

// process transcodes data and saves the MP3 under recordings/YYYY/MM/DD.
func (p *pipeline) process(c context.Context, source, title, mediaType string, data []byte) (*recording, error) {
	out, err := p.transcoder.Transcode(c, transcode.Input{Data: data, MediaType: mediaType})
	if err != nil {
		return nil, err
	}
	rel, err := p.recordingPath(c, out, title)
	if err != nil {
		return nil, err
	}
	if err := storage.Put(c, p.store, rel, out.Data); err != nil {
		return nil, fmt.Errorf("save %s: %w", rel, err)
	}
	return &recording{
		Source:    source,
		Title:     title,
		Path:      rel,
		Location:  p.locate(rel),
		MediaType: out.MediaType,
		Bytes:     len(out.Data),
		Duration:  out.Duration,
		Channels:  out.Format.Channels,
		Rate:      out.Format.SampleRate,
		Blocks:    out.Blocks,
		out:       out,
	}, nil
}

// recordingPath names the recording after its title and a fresh id, and
// skips names already in the store.
func (p *pipeline) recordingPath(c context.Context, out *transcode.Output, title string) (string, error) {
	day := p.now()
	for range 3 {
		rel := storage.RecordingPath(day, out.FileName(title, p.newID()))
		taken, err := p.store.Exists(c, rel)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", rel, err)
		}
		if !taken {
			return rel, nil
		}
	}
	return "", fmt.Errorf("no free recording name for %q", title)
}

// describeError adds a hint for errors the user can fix.
func describeError(source string, err error) error {
	if transcode.UserCorrectable(err) {
		return fmt.Errorf("%s: %w (check that the file is a supported audio recording)", source, err)
	}
	return fmt.Errorf("%s: %w", source, err)
}
