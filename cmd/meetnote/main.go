// Package main provides the meetnote CLI tool.
//
// Usage:
//
//	meetnote [flags] <command> [args]
//
// Commands:
//
//	transcode   - Convert recordings to 128 kbps MP3 and store them
//	notes       - Create, list, show, export and delete meeting notes
//	recordings  - List and fetch stored recordings
//	run         - Process a batch job file
//	config      - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.meetnote/
//	Use 'meetnote config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/JhonEdwinVR/Meet-recording-Notes/cmd/meetnote/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
