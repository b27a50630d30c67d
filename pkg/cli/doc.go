// Package cli provides the configuration, output and terminal rendering
// shared by the meetnote command.
//
// This package includes:
//   - Configuration management (named contexts holding the Gemini key,
//     output language and storage target)
//   - Output formatting (JSON, YAML, raw)
//   - Job file loading (YAML/JSON)
//   - Terminal rendering of meeting notes
//
// Configuration is stored in ~/.meetnote/config.yaml and supports multiple
// contexts, similar to kubectl.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("")
//	ctx, err := cfg.ResolveContext("")
//	cli.Output(notes, cli.OutputOptions{Format: cli.FormatJSON})
package cli
