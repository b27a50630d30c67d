package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/cli"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/storage"
)

var recordingsCmd = &cobra.Command{
	Use:   "recordings",
	Short: "List and fetch stored recordings",
}

var recordingsListCmd = &cobra.Command{
	Use:     "list [prefix]",
	Aliases: []string{"ls"},
	Short:   "List stored recordings",
	Long: `List files in the recording store. The optional prefix narrows the
listing, for example "recordings/2026/04".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := "recordings"
		if len(args) == 1 {
			prefix = strings.Trim(args[0], "/")
		}
		format, err := getFormat()
		if err != nil {
			return err
		}
		cctx, err := getContext()
		if err != nil {
			return err
		}
		st, locate, err := openRecordings(cctx)
		if err != nil {
			return err
		}

		paths, err := st.List(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		if format != cli.FormatText {
			return outputResult(paths, format)
		}
		if len(paths) == 0 {
			fmt.Printf("No files under %s\n", locate(prefix))
			return nil
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

var recordingsGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Download a stored file",
	Long: `Copy a file from the recording store to --output, or to stdout.

Example:
  meetnote recordings get recordings/2026/04/01/daily_standup-3f2a9c1d.mp3 -o standup.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		st, _, err := openRecordings(cctx)
		if err != nil {
			return err
		}
		data, err := storage.Get(cmd.Context(), st, args[0])
		if err != nil {
			return err
		}
		if outputFile == "" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		printer.Success("Wrote %s (%s, %s)", outputFile, storage.ContentType(args[0]), cli.FormatBytes(int64(len(data))))
		return nil
	},
}

var recordingsDeleteCmd = &cobra.Command{
	Use:     "delete <path>",
	Aliases: []string{"rm"},
	Short:   "Delete a stored file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		st, locate, err := openRecordings(cctx)
		if err != nil {
			return err
		}
		ok, err := st.Exists(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s not found", locate(args[0]))
		}
		if err := st.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		printer.Success("Deleted %s", locate(args[0]))
		return nil
	},
}

func init() {
	recordingsCmd.AddCommand(recordingsListCmd)
	recordingsCmd.AddCommand(recordingsGetCmd)
	recordingsCmd.AddCommand(recordingsDeleteCmd)
}
