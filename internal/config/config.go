// Package config loads mapgen project settings from mapgen.toml or
// mapgen.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"mapgen/internal/analyze"
	"mapgen/internal/gen"
)

// FileNames are the config files Find looks for, in priority order.
var FileNames = []string{"mapgen.toml", "mapgen.yaml", "mapgen.yml"}

var (
	// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalid is returned when a loaded config fails validation.
	ErrInvalid = errors.New("invalid config")
)

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the syntax from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Config holds the settings of one mapgen run.
type Config struct {
	// Patterns are go/packages patterns to load.
	Patterns []string `toml:"patterns" yaml:"patterns"`
	// Directive is the marker name, e.g. "mapgen:from".
	Directive string `toml:"directive" yaml:"directive"`
	// BuildTags are passed to the go tool when loading packages.
	BuildTags []string `toml:"build_tags" yaml:"build_tags"`
	// OutputDir puts every generated file in one directory instead of next
	// to its destination type.
	OutputDir string `toml:"output_dir" yaml:"output_dir"`
	// PackageName is used for destinations without a package.
	PackageName string `toml:"package_name" yaml:"package_name"`
	// FileSuffix is appended to the snake-cased destination name.
	FileSuffix string `toml:"file_suffix" yaml:"file_suffix"`
	// Jobs bounds parallelism; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs" yaml:"jobs"`
	// Cache enables the result cache.
	Cache bool `toml:"cache" yaml:"cache"`
	// CacheDir overrides the per-user cache directory.
	CacheDir string `toml:"cache_dir" yaml:"cache_dir"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() Config {
	g := gen.DefaultGeneratorConfig()

	return Config{
		Patterns:    []string{"./..."},
		Directive:   analyze.DefaultDirective,
		PackageName: g.PackageName,
		FileSuffix:  g.FileSuffix,
	}
}

// Generator returns the emitter settings.
func (c Config) Generator() gen.GeneratorConfig {
	return gen.GeneratorConfig{
		PackageName: c.PackageName,
		OutputDir:   c.OutputDir,
		FileSuffix:  c.FileSuffix,
	}
}

// Validate checks values that cannot be caught by decoding.
func (c Config) Validate() error {
	m, ok := analyze.ParseMarker("//" + c.Directive)
	if !ok || m.Name != c.Directive || len(m.Args) > 0 {
		return fmt.Errorf("%w: directive %q must look like ns:name", ErrInvalid, c.Directive)
	}

	if c.Jobs < 0 {
		return fmt.Errorf("%w: jobs must not be negative, got %d", ErrInvalid, c.Jobs)
	}

	if !strings.HasSuffix(c.FileSuffix, ".go") {
		return fmt.Errorf("%w: file_suffix %q must end in .go", ErrInvalid, c.FileSuffix)
	}

	if strings.HasSuffix(c.FileSuffix, "_test.go") {
		return fmt.Errorf("%w: file_suffix %q would produce test files", ErrInvalid, c.FileSuffix)
	}

	return nil
}

// LoadFile reads a config file. Relative OutputDir and CacheDir are resolved
// against the file's directory.
func LoadFile(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	root := filepath.Dir(path)
	cfg.OutputDir = resolve(root, cfg.OutputDir)
	cfg.CacheDir = resolve(root, cfg.CacheDir)

	return cfg, nil
}

// Parse decodes data over DefaultConfig and validates the result. Unknown
// keys are rejected.
func Parse(data []byte, format Format) (Config, error) {
	cfg := DefaultConfig()

	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
		}

		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}

			return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
		}

	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
		}

	default:
		return Config{}, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyDefaults restores defaults for keys set to empty values.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()

	if len(cfg.Patterns) == 0 {
		cfg.Patterns = def.Patterns
	}

	if cfg.Directive == "" {
		cfg.Directive = def.Directive
	}

	if cfg.PackageName == "" {
		cfg.PackageName = def.PackageName
	}

	if cfg.FileSuffix == "" {
		cfg.FileSuffix = def.FileSuffix
	}
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(root, p)
}

// Find walks up from startDir looking for one of FileNames.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)

			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}

		dir = parent
	}
}
