package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	contextName  string
	outputFile   string
	outputFormat string
	verbose      bool

	// Global state, set by initConfig
	globalConfig *cli.Config
	globalPaths  *cli.Paths
	printer      *cli.Printer

	metricReader  = sdkmetric.NewManualReader()
	meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader))
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meetnote",
	Short: "Meeting recording notes",
	Long: `meetnote - turn meeting recordings into notes.

Recordings in any common container (WebM, Ogg Opus, MP4, WAV, MP3) are
transcoded to a 128 kbps MP3, stored locally or in an S3 bucket, and
sent to Gemini for a transcript, a key summary and action items grouped
by team.

Configuration is stored in ~/.meetnote/ and supports multiple contexts,
similar to kubectl's context management.

Examples:
  # Set up a context
  meetnote config add-context work --api-key YOUR_API_KEY --language Spanish

  # Transcode recordings without transcribing them
  meetnote transcode standup.webm retro.webm

  # Create notes from a recording
  meetnote notes create standup.webm --title "Daily Standup"

  # Export notes as Markdown
  meetnote notes show 3f2a9c1d --markdown -o standup.md
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			reportMetrics(cmd.Context())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer meterProvider.Shutdown(context.Background())
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.meetnote/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "output format: text, yaml or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(transcodeCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(recordingsCmd)
	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	slog.SetDefault(cli.NewLogger(os.Stderr, verbose))
	printer = cli.NewPrinter(verbose)

	var err error
	globalPaths, err = cli.NewPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
	globalConfig, err = cli.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context configuration to use
func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		if contextName == "" {
			return nil, fmt.Errorf("no context specified. Use -c flag or set a default context with 'meetnote config use-context'")
		}
		return nil, err
	}
	return ctx, nil
}

// getFormat returns the validated --format value
func getFormat() (cli.OutputFormat, error) {
	return cli.ParseOutputFormat(outputFormat)
}

// outputResult writes result as YAML or JSON to --output or stdout
func outputResult(result any, format cli.OutputFormat) error {
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputFile,
	})
}
