package commands

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/cli"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/notes"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcribe"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a batch of recordings from a job file",
	Long: `Process the recordings listed in a YAML or JSON job file.

Every recording is transcoded and stored. With notes: true each one is
also transcribed and saved as notes. Relative paths are resolved against
the job file's directory.

Example job file:

  language: Spanish
  notes: true
  jobs: 2
  recordings:
    - file: standup.webm
      title: Daily Standup
    - file: retro.ogg
      title: Retro
      language: de

Example:
  meetnote run -f week32.yaml`,
	RunE: runJobFile,
}

func init() {
	runCmd.Flags().StringP("file", "f", "", "job file (YAML or JSON, - for stdin)")
	runCmd.MarkFlagRequired("file")
}

// jobFile is a batch of recordings.
type jobFile struct {
	// Language is the default output language for notes.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Notes transcribes each recording and saves notes.
	Notes bool `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Jobs limits parallel work. Zero means the number of CPUs.
	Jobs int `json:"jobs,omitempty" yaml:"jobs,omitempty"`

	Recordings []noteJob `json:"recordings" yaml:"recordings"`
}

// noteJob is one recording to process.
type noteJob struct {
	File      string `json:"file" yaml:"file"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	MediaType string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Language  string `json:"language,omitempty" yaml:"language,omitempty"`
}

// jobResult reports the outcome of one recording.
type jobResult struct {
	File      string     `json:"file" yaml:"file"`
	Recording *recording `json:"recording,omitempty" yaml:"recording,omitempty"`
	NotesID   string     `json:"notes_id,omitempty" yaml:"notes_id,omitempty"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// loadJobFile reads a job file and resolves relative recording paths
// against its directory.
func loadJobFile(path string) (*jobFile, error) {
	var job jobFile
	if err := cli.LoadRequest(path, &job); err != nil {
		return nil, err
	}
	if len(job.Recordings) == 0 {
		return nil, fmt.Errorf("%s: no recordings", path)
	}
	dir := "."
	if path != "-" {
		dir = filepath.Dir(path)
	}
	for i := range job.Recordings {
		r := &job.Recordings[i]
		if r.File == "" {
			return nil, fmt.Errorf("%s: recording %d has no file", path, i+1)
		}
		if r.Language != "" {
			if _, err := transcribe.ParseLanguage(r.Language); err != nil {
				return nil, fmt.Errorf("%s: recording %d: %w", path, i+1, err)
			}
		}
		if !filepath.IsAbs(r.File) {
			r.File = filepath.Join(dir, r.File)
		}
	}
	if job.Jobs <= 0 {
		job.Jobs = runtime.NumCPU()
	}
	return &job, nil
}

func runJobFile(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	format, err := getFormat()
	if err != nil {
		return err
	}
	job, err := loadJobFile(path)
	if err != nil {
		return err
	}

	cctx, err := getContext()
	if err != nil {
		return err
	}
	if job.Language == "" {
		job.Language = cctx.Language
	}
	defLang, err := transcribe.ParseLanguage(job.Language)
	if err != nil {
		return err
	}

	p, err := newPipeline(cctx)
	if err != nil {
		return err
	}
	var (
		client *transcribe.Client
		st     *notes.Store
	)
	if job.Notes {
		if client, err = newTranscriber(cmd.Context(), cctx); err != nil {
			return err
		}
		if st, err = openNotes(cctx); err != nil {
			return err
		}
		defer st.Close()
	}

	results := make([]jobResult, len(job.Recordings))
	var g errgroup.Group
	g.SetLimit(job.Jobs)
	for i, r := range job.Recordings {
		g.Go(func() error {
			res := jobResult{File: r.File}
			defer func() { results[i] = res }()

			if !job.Notes {
				data, err := readInput(r.File)
				if err != nil {
					res.Error = err.Error()
					return nil
				}
				rec, err := p.process(cmd.Context(), r.File, titleFor(r.Title, r.File), orMediaType(r), data)
				if err != nil {
					res.Error = describeError(r.File, err).Error()
					return nil
				}
				res.Recording = rec
				return nil
			}

			lang := defLang
			if r.Language != "" {
				lang, _ = transcribe.ParseLanguage(r.Language)
			}
			n, err := createNotes(cmd, p, client, st, r, lang)
			if err != nil {
				res.Error = err.Error()
				return nil
			}
			res.NotesID = n.ID.String()
			return nil
		})
	}
	g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if format != cli.FormatText {
		if err := outputResult(results, format); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			switch {
			case r.Error != "":
				printer.Error("%s", r.Error)
			case r.NotesID != "":
				printer.Success("%s → notes %s", r.File, r.NotesID[:8])
			default:
				printer.Success("%s → %s (%s)", r.File, r.Recording.Location, cli.FormatDuration(r.Recording.Duration))
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d recordings failed", failed, len(results))
	}
	return nil
}

// createNotes transcodes and stores a recording, transcribes the MP3 and
// saves the resulting notes.
func createNotes(cmd *cobra.Command, p *pipeline, client *transcribe.Client, st *notes.Store, r noteJob, lang transcribe.Language) (*notes.Notes, error) {
	c := cmd.Context()
	data, err := readInput(r.File)
	if err != nil {
		return nil, err
	}
	title := titleFor(r.Title, r.File)

	start := time.Now()
	rec, err := p.process(c, r.File, title, orMediaType(r), data)
	if err != nil {
		return nil, describeError(r.File, err)
	}
	printer.Verbosef("%s: transcoded %s of audio in %s", r.File,
		cli.FormatDuration(rec.Duration), cli.FormatDuration(time.Since(start)))

	res, err := client.Transcribe(c, rec.out.Data, rec.out.MediaType, lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.File, err)
	}
	printer.Verbosef("%s: transcribed with %s in %s", r.File, client.Model(), cli.FormatDuration(time.Since(start)))

	n := notes.New(title, p.now(), lang, res)
	n.AudioPath = rec.Location
	n.AudioDuration = rec.Duration
	if err := st.Put(c, n); err != nil {
		return nil, err
	}
	return n, nil
}

func orMediaType(r noteJob) string {
	if r.MediaType != "" {
		return r.MediaType
	}
	return mediaTypeFor(r.File)
}
