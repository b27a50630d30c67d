package commands

import (
	"fmt"
	"os"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/cli"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/notes"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/storage"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcode"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Create and manage meeting notes",
	Long: `Create meeting notes from recordings and manage saved notes.

Notes are stored in ~/.meetnote/data and addressed by ID. Any unique
prefix of an ID is accepted.`,
}

var notesCreateCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Transcribe a recording and save notes",
	Long: `Transcode a recording, save the MP3, and send it to Gemini for a
transcript, a key summary and action items grouped by team.

Examples:
  meetnote notes create standup.webm --title "Daily Standup"
  meetnote notes create review.ogg --lang es --transcript
  meetnote notes create call.webm --format json > call.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNotesCreate,
}

var notesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved notes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, err := getFormat()
		if err != nil {
			return err
		}
		st, err := openNotesForContext()
		if err != nil {
			return err
		}
		defer st.Close()

		list, err := st.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if format != cli.FormatText {
			return outputResult(list, format)
		}
		if len(list) == 0 {
			fmt.Println("No notes yet. Create some with 'meetnote notes create <file>'")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTITLE\tLANGUAGE\tTASKS")
		for _, n := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", n.ShortID(), n.Date.Format("2006-01-02 15:04"),
				cli.Truncate(n.Title, 40), n.Lang(), len(n.Tasks))
		}
		return w.Flush()
	},
}

var notesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show saved notes",
	Long: `Show saved notes in the terminal, or export them as Markdown.

Examples:
  meetnote notes show 3f2a9c1d
  meetnote notes show 3f2a --transcript
  meetnote notes show 3f2a9c1d --markdown -o standup.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markdown, _ := cmd.Flags().GetBool("markdown")
		transcript, _ := cmd.Flags().GetBool("transcript")
		format, err := getFormat()
		if err != nil {
			return err
		}
		st, err := openNotesForContext()
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Find(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		switch {
		case markdown:
			return writeMarkdown(n)
		case format != cli.FormatText:
			return outputResult(n, format)
		}
		fmt.Println(renderNotes(n, transcript))
		return nil
	},
}

var notesExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Save notes as Markdown in the recording store",
	Long: `Render notes as Markdown and save them next to the recordings, under
notes/YYYY/MM/DD/<title>.md in the context's store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		st, err := openNotes(cctx)
		if err != nil {
			return err
		}
		defer st.Close()
		n, err := st.Find(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		files, locate, err := openRecordings(cctx)
		if err != nil {
			return err
		}
		rel := notesPath(n)
		if err := storage.Put(cmd.Context(), files, rel, []byte(notes.Markdown(n))); err != nil {
			return err
		}
		printer.Success("Exported %s to %s", n.ShortID(), locate(rel))
		return nil
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete saved notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openNotesForContext()
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Find(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := st.Delete(cmd.Context(), n.ID); err != nil {
			return err
		}
		printer.Success("Deleted %s (%s)", n.ShortID(), n.Title)
		return nil
	},
}

func init() {
	notesCreateCmd.Flags().String("title", "", "meeting title (default: file name)")
	notesCreateCmd.Flags().String("lang", "", "output language name or tag (default: context language, then English)")
	notesCreateCmd.Flags().String("media-type", "", "media type of the input (default: from the file extension)")
	notesCreateCmd.Flags().Bool("transcript", false, "include the full transcript in the terminal view")

	notesListCmd.Flags().Int("limit", 20, "maximum number of notes (0 for all)")

	notesShowCmd.Flags().Bool("markdown", false, "print Markdown instead of the terminal view")
	notesShowCmd.Flags().Bool("transcript", false, "include the full transcript")

	notesCmd.AddCommand(notesCreateCmd)
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesExportCmd)
	notesCmd.AddCommand(notesDeleteCmd)
}

func runNotesCreate(cmd *cobra.Command, args []string) error {
	file := args[0]
	title, _ := cmd.Flags().GetString("title")
	langFlag, _ := cmd.Flags().GetString("lang")
	mediaType, _ := cmd.Flags().GetString("media-type")
	transcript, _ := cmd.Flags().GetBool("transcript")
	format, err := getFormat()
	if err != nil {
		return err
	}

	cctx, err := getContext()
	if err != nil {
		return err
	}
	lang, err := resolveLanguage(langFlag, cctx)
	if err != nil {
		return err
	}
	client, err := newTranscriber(cmd.Context(), cctx)
	if err != nil {
		return err
	}
	p, err := newPipeline(cctx)
	if err != nil {
		return err
	}
	st, err := openNotes(cctx)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := createNotes(cmd, p, client, st, noteJob{
		File:      file,
		Title:     title,
		MediaType: mediaType,
	}, lang)
	if err != nil {
		return err
	}

	if format != cli.FormatText {
		return outputResult(n, format)
	}
	fmt.Println(renderNotes(n, transcript))
	printer.Success("Saved notes %s", n.ShortID())
	return nil
}

// openNotesForContext opens the notes database of the active context.
func openNotesForContext() (*notes.Store, error) {
	cctx, err := getContext()
	if err != nil {
		return nil, err
	}
	return openNotes(cctx)
}

// renderNotes renders n for the terminal at the terminal's width.
func renderNotes(n *notes.Notes, transcript bool) string {
	width := 80
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		width = min(w, 100)
	}
	return cli.NotesView{
		Styles:     cli.NewStyles(cli.DefaultTheme),
		Notes:      n,
		Width:      width,
		Transcript: transcript,
	}.Render()
}

// writeMarkdown writes n as Markdown to --output or stdout.
func writeMarkdown(n *notes.Notes) error {
	if outputFile == "" {
		return notes.WriteMarkdown(os.Stdout, n)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := notes.WriteMarkdown(f, n); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printer.Success("Wrote %s", outputFile)
	return nil
}

// notesPath is where exported Markdown for n is stored.
func notesPath(n *notes.Notes) string {
	name := transcode.FileName(n.Title, "-"+strings.ToLower(n.ShortID())+".md")
	return path.Join("notes", n.Date.UTC().Format("2006/01/02"), name)
}
