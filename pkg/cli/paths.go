package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the meetnote directory layout under the user's
// home directory.
type Paths struct {
	HomeDir string
}

// NewPaths creates a Paths rooted at the current user's home directory
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns ~/.meetnote
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns ~/.meetnote/config.yaml
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// DataDir returns the notes database directory, ~/.meetnote/data
func (p *Paths) DataDir() string {
	return filepath.Join(p.BaseDir(), "data")
}

// RecordingsDir returns the default local recording store,
// ~/.meetnote/recordings
func (p *Paths) RecordingsDir() string {
	return filepath.Join(p.BaseDir(), "recordings")
}

// TempDir returns the scratch directory for external decoders,
// ~/.meetnote/tmp
func (p *Paths) TempDir() string {
	return filepath.Join(p.BaseDir(), "tmp")
}

// EnsureDataDir creates the data directory if it doesn't exist
func (p *Paths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir(), 0755)
}

// EnsureTempDir creates the temp directory if it doesn't exist
func (p *Paths) EnsureTempDir() error {
	return os.MkdirAll(p.TempDir(), 0755)
}

// DataDirFor returns the context's data directory override or DataDir.
func (p *Paths) DataDirFor(ctx *Context) string {
	if ctx != nil && ctx.DataDir != "" {
		return ctx.DataDir
	}
	return p.DataDir()
}

// RecordingsDirFor returns the context's local storage directory or
// RecordingsDir.
func (p *Paths) RecordingsDirFor(ctx *Context) string {
	if ctx != nil && ctx.Storage.Dir != "" {
		return ctx.Storage.Dir
	}
	return p.RecordingsDir()
}
