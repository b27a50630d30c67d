package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/cli"
	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcribe"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

A context holds an API key, a model, a default notes language and where
recordings are stored. Contexts allow you to switch between setups,
similar to kubectl's context management.

Configuration is stored in ~/.meetnote/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add or replace a context",
	Long: `Add a context with the specified name. Adding a context with an
existing name replaces it.

Example:
  meetnote config add-context work --api-key YOUR_API_KEY --language Spanish
  meetnote config add-context team --storage s3 --bucket recordings --region eu-west-1
  meetnote config add-context minio --storage s3 --bucket meet --region us-east-1 \
      --endpoint http://localhost:9000 --path-style --access-key KEY --secret-key SECRET`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		f := cmd.Flags()

		ctx := &cli.Context{}
		ctx.APIKey, _ = f.GetString("api-key")
		ctx.Model, _ = f.GetString("model")
		ctx.Language, _ = f.GetString("language")
		ctx.DataDir, _ = f.GetString("data-dir")
		ctx.Storage.Kind, _ = f.GetString("storage")
		ctx.Storage.Dir, _ = f.GetString("dir")
		ctx.Storage.Bucket, _ = f.GetString("bucket")
		ctx.Storage.Prefix, _ = f.GetString("prefix")
		ctx.Storage.Region, _ = f.GetString("region")
		ctx.Storage.Endpoint, _ = f.GetString("endpoint")
		ctx.Storage.AccessKey, _ = f.GetString("access-key")
		ctx.Storage.SecretKey, _ = f.GetString("secret-key")
		ctx.Storage.PathStyle, _ = f.GetBool("path-style")

		if ctx.Language != "" {
			if _, err := transcribe.ParseLanguage(ctx.Language); err != nil {
				return err
			}
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		printer.Success("Context %q added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}

		printer.Success("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}

		printer.Success("Switched to context %q", name)
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}

		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tMODEL\tLANGUAGE\tSTORAGE")

		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name,
				orDefault(ctx.Model, transcribe.DefaultModel),
				orDefault(ctx.Language, "English"),
				storageSummary(ctx.Storage))
		}

		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		if len(cfg.Contexts) > 0 {
			fmt.Println("\nContext details:")
			for _, name := range cfg.ListContexts() {
				ctx := cfg.Contexts[name]
				fmt.Printf("\n  %s:\n", name)
				if ctx.APIKey != "" {
					fmt.Printf("    API Key: %s\n", cli.MaskAPIKey(ctx.APIKey))
				} else {
					fmt.Printf("    API Key: (from environment)\n")
				}
				if ctx.Model != "" {
					fmt.Printf("    Model: %s\n", ctx.Model)
				}
				if ctx.Language != "" {
					fmt.Printf("    Language: %s\n", ctx.Language)
				}
				fmt.Printf("    Storage: %s\n", storageSummary(ctx.Storage))
				if ctx.Storage.Endpoint != "" {
					fmt.Printf("    Endpoint: %s\n", ctx.Storage.Endpoint)
				}
				if ctx.Storage.AccessKey != "" {
					fmt.Printf("    Access Key: %s\n", cli.MaskAPIKey(ctx.Storage.AccessKey))
				}
				fmt.Printf("    Notes: %s\n", globalPaths.DataDirFor(ctx))
			}
		}

		return nil
	},
}

func init() {
	f := configAddContextCmd.Flags()
	f.String("api-key", "", "Gemini API key (default: GEMINI_API_KEY from the environment)")
	f.String("model", "", "Gemini model (default "+transcribe.DefaultModel+")")
	f.String("language", "", "default notes language, name or tag (default English)")
	f.String("data-dir", "", "notes database directory (default ~/.meetnote/data)")
	f.String("storage", cli.StorageLocal, "recording store: local or s3")
	f.String("dir", "", "local store directory (default ~/.meetnote/recordings)")
	f.String("bucket", "", "S3 bucket")
	f.String("prefix", "", "S3 key prefix")
	f.String("region", "", "S3 region")
	f.String("endpoint", "", "S3-compatible endpoint URL")
	f.String("access-key", "", "S3 access key (default: AWS_ACCESS_KEY_ID)")
	f.String("secret-key", "", "S3 secret key (default: AWS_SECRET_ACCESS_KEY)")
	f.Bool("path-style", false, "use path-style S3 addressing")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}

// storageSummary describes a store in one line.
func storageSummary(s cli.StorageConfig) string {
	if s.Kind == cli.StorageS3 {
		uri := "s3://" + s.Bucket
		if s.Prefix != "" {
			uri += "/" + s.Prefix
		}
		return uri + " (" + s.Region + ")"
	}
	return "local " + globalPaths.RecordingsDirFor(&cli.Context{Storage: s})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
