package commands

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/cli"
)

var transcodeCmd = &cobra.Command{
	Use:   "transcode <file>...",
	Short: "Transcode recordings to MP3 and store them",
	Long: `Transcode one or more recordings to 128 kbps constant bitrate MP3.

Each file is decoded, encoded and saved to the context's recording store
under recordings/YYYY/MM/DD/<title>-<id>.mp3. Files are processed in parallel
and a failure in one does not stop the others. Use "-" to read a single
recording from stdin.

Examples:
  meetnote transcode standup.webm
  meetnote transcode --title "Sprint Review" review.ogg
  meetnote transcode *.webm --jobs 4 --format json
  meetnote transcode call.webm --title call -o call.mp3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranscode,
}

func init() {
	transcodeCmd.Flags().String("title", "", "title used for the file name (single file only)")
	transcodeCmd.Flags().String("media-type", "", "media type of the input (default: from the file extension)")
	transcodeCmd.Flags().Int("jobs", runtime.NumCPU(), "number of recordings transcoded in parallel")
}

func runTranscode(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	mediaType, _ := cmd.Flags().GetString("media-type")
	jobs, _ := cmd.Flags().GetInt("jobs")
	if title != "" && len(args) > 1 {
		return fmt.Errorf("--title applies to a single file")
	}
	if outputFile != "" && len(args) > 1 {
		return fmt.Errorf("--output applies to a single file")
	}
	format, err := getFormat()
	if err != nil {
		return err
	}

	cctx, err := getContext()
	if err != nil {
		return err
	}
	p, err := newPipeline(cctx)
	if err != nil {
		return err
	}

	results := make([]*recording, len(args))
	errs := make([]error, len(args))

	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, file := range args {
		g.Go(func() error {
			data, err := readInput(file)
			if err != nil {
				errs[i] = err
				return nil
			}
			mt := mediaType
			if mt == "" {
				mt = mediaTypeFor(file)
			}
			printer.Verbosef("transcoding %s (%s, %s)", file, orUnknown(mt), cli.FormatBytes(int64(len(data))))
			rec, err := p.process(cmd.Context(), file, titleFor(title, file), mt, data)
			if err != nil {
				errs[i] = describeError(file, err)
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	g.Wait()

	if len(args) == 1 && outputFile != "" && results[0] != nil && format == cli.FormatText {
		if err := os.WriteFile(outputFile, results[0].out.Data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	var done []*recording
	for i, rec := range results {
		if rec == nil {
			printer.Error("%v", errs[i])
			continue
		}
		done = append(done, rec)
	}

	if format != cli.FormatText {
		if err := outputResult(done, format); err != nil {
			return err
		}
	} else {
		for _, rec := range done {
			printer.Success("%s → %s (%s, %s, %s)", rec.Source, rec.Location,
				cli.FormatDuration(rec.Duration), cli.FormatBytes(int64(rec.Bytes)),
				cli.FormatBitrate(int64(rec.Bytes), rec.Duration))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%d of %d recordings failed", len(args)-len(done), len(args))
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown type"
	}
	return s
}
