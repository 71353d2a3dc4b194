// Package config provides reading and writing of tractome configuration.
// Supports both global (~/.tractome/config.yaml) and local (.tractome/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.tractome/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is project-specific config in .tractome/config.yaml
	ScopeLocal
)

// CSV holds defaults for tabular ingestion.
type CSV struct {
	Delimiter *string `yaml:"delimiter,omitempty"`
	Header    *bool   `yaml:"header,omitempty"`
	Encoding  *string `yaml:"encoding,omitempty"`
}

// Limits holds size limit configuration options.
type Limits struct {
	MaxFileSize *int64 `yaml:"max_file_size,omitempty"`
}

// Default values applied when not configured.
const (
	DefaultDelimiter   = ","
	DefaultHeader      = true
	DefaultEncoding    = "utf-8"
	DefaultMaxFileSize = 4 * 1024 * 1024 * 1024 // 4 GB
)

// Validation bounds for configuration values.
const (
	MinMaxFileSize = 1
	MaxMaxFileSize = 64 * 1024 * 1024 * 1024 // 64 GB
)

// Config contains configuration for tractome.
type Config struct {
	CSV    CSV    `yaml:"csv,omitempty"`
	Limits Limits `yaml:"limits,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.CSV.Delimiter != nil && utf8.RuneCountInString(*c.CSV.Delimiter) != 1 {
		return fmt.Errorf("%w: csv.delimiter must be a single character, got %q",
			ErrInvalidValue, *c.CSV.Delimiter)
	}
	if c.Limits.MaxFileSize != nil {
		v := *c.Limits.MaxFileSize
		if v < MinMaxFileSize || v > MaxMaxFileSize {
			return fmt.Errorf("%w: max_file_size must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxFileSize, MaxMaxFileSize, v)
		}
	}
	return nil
}

// Delimiter returns the CSV field separator (defaults to ',').
func (c *Config) Delimiter() rune {
	if c.CSV.Delimiter == nil {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(*c.CSV.Delimiter)
	return r
}

// Header returns whether CSV files carry a header row (defaults to true).
func (c *Config) Header() bool {
	if c.CSV.Header == nil {
		return DefaultHeader
	}
	return *c.CSV.Header
}

// Encoding returns the default CSV text encoding (defaults to "utf-8").
func (c *Config) Encoding() string {
	if c.CSV.Encoding == nil {
		return DefaultEncoding
	}
	return *c.CSV.Encoding
}

// MaxFileSize returns the largest file the loaders will open (defaults to 4 GB).
func (c *Config) MaxFileSize() int64 {
	if c.Limits.MaxFileSize == nil {
		return DefaultMaxFileSize
	}
	return *c.Limits.MaxFileSize
}

// LocalPath returns the path to the local (project) config file.
func LocalPath() string {
	return filepath.Join(".tractome", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.tractome/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tractome", "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
