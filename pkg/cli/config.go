package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".meetnote"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Environment variables consulted when a context has no API key.
var apiKeyEnv = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}

// Storage kinds.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config represents the meetnote configuration file
type Config struct {
	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is one named set of settings
type Context struct {
	Name string `yaml:"name"`

	// APIKey is the Gemini API key. Empty means read it from the
	// environment.
	APIKey string `yaml:"api_key,omitempty"`

	// Model is the Gemini model (optional, defaults to gemini-2.5-flash)
	Model string `yaml:"model,omitempty"`

	// Language is the default output language for notes (name or BCP 47 tag)
	Language string `yaml:"language,omitempty"`

	// Storage is where transcoded recordings are saved
	Storage StorageConfig `yaml:"storage,omitempty"`

	// DataDir overrides the directory of the notes database
	DataDir string `yaml:"data_dir,omitempty"`
}

// StorageConfig selects and configures the recording store
type StorageConfig struct {
	// Kind is "local" (default) or "s3"
	Kind string `yaml:"kind,omitempty"`

	// Dir is the root directory of a local store
	Dir string `yaml:"dir,omitempty"`

	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// Validate checks that the storage settings are complete.
func (s StorageConfig) Validate() error {
	switch s.Kind {
	case "", StorageLocal:
		return nil
	case StorageS3:
		if s.Bucket == "" {
			return errors.New("storage: s3 requires a bucket")
		}
		if s.Region == "" {
			return errors.New("storage: s3 requires a region")
		}
		if (s.AccessKey == "") != (s.SecretKey == "") {
			return errors.New("storage: access_key and secret_key must be set together")
		}
		return nil
	}
	return fmt.Errorf("storage: unknown kind %q", s.Kind)
}

// LoadConfig loads or creates the configuration. An empty path means
// ~/.meetnote/config.yaml.
func LoadConfig(customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		p, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = p.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			cfg.Contexts[name] = &Context{Name: name}
			continue
		}
		ctx.Name = name
	}
	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// AddContext adds or replaces a context. The first context added becomes
// the current one.
func (c *Config) AddContext(name string, ctx *Context) error {
	if err := ctx.Storage.Validate(); err != nil {
		return err
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, or the current one if name is
// empty. Without any context configured it returns an empty context, so
// the tool works from environment variables alone.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext != "" {
		return c.GetContext(c.CurrentContext)
	}
	if len(c.Contexts) == 0 {
		return &Context{}, nil
	}
	return nil, errors.New("no current context set")
}

// ListContexts returns all context names, sorted
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ResolveAPIKey returns the context's API key or the first one set in the
// environment.
func (ctx *Context) ResolveAPIKey() string {
	if ctx.APIKey != "" {
		return ctx.APIKey
	}
	for _, env := range apiKeyEnv {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
