package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mapgen/internal/analyze"
	"mapgen/internal/config"
	"mapgen/internal/diagnostic"
	"mapgen/internal/driver"
	"mapgen/internal/logging"
)

// rootOptions are the persistent flags.
type rootOptions struct {
	configPath string
	color      string
	quiet      bool
	verbose    bool
	jobs       int
	format     string
}

// session is everything a command needs after flags and config are merged.
type session struct {
	cfg      config.Config
	logger   logging.Logger
	useColor bool
	format   string
	workDir  string
	stdout   io.Writer
	stderr   io.Writer
}

func (o *rootOptions) session(cmd *cobra.Command, patterns []string) (*session, error) {
	if o.quiet && o.verbose {
		return nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	useColor, err := o.useColor(cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	// Console log tags follow the global color switch.
	color.NoColor = !useColor

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	cfg, err := o.loadConfig(workDir)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = o.jobs
	}

	if len(patterns) > 0 {
		cfg.Patterns = patterns
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := logging.LevelInfo

	switch {
	case o.quiet:
		level = logging.LevelError
	case o.verbose:
		level = logging.LevelDebug
	}

	return &session{
		cfg:      cfg,
		logger:   logging.NewConsole(cmd.ErrOrStderr(), level),
		useColor: useColor,
		format:   o.format,
		workDir:  workDir,
		stdout:   cmd.OutOrStdout(),
		stderr:   cmd.ErrOrStderr(),
	}, nil
}

func (o *rootOptions) useColor(out io.Writer) (bool, error) {
	switch o.color {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		f, ok := out.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("unsupported --color value %q (must be auto, on or off)", o.color)
	}
}

func (o *rootOptions) loadConfig(workDir string) (config.Config, error) {
	path := o.configPath

	if path == "" {
		found, ok, err := config.Find(workDir)
		if err != nil {
			return config.Config{}, err
		}

		if !ok {
			return config.DefaultConfig(), nil
		}

		path = found
	}

	return config.LoadFile(path)
}

// load builds the symbol snapshot for the configured patterns.
func (s *session) load(ctx context.Context) (*analyze.Snapshot, error) {
	loader := analyze.NewLoader(s.workDir)
	loader.BuildTags = s.cfg.BuildTags
	loader.Directive = s.cfg.Directive
	loader.Logger = s.logger

	return loader.Load(ctx, s.cfg.Patterns...)
}

// cache returns the configured result cache, or nil when disabled.
func (s *session) cache() (*driver.Cache, error) {
	if !s.cfg.Cache {
		return nil, nil
	}

	dir := s.cfg.CacheDir
	if dir == "" {
		var err error

		dir, err = driver.DefaultCacheDir("mapgen")
		if err != nil {
			return nil, err
		}
	}

	return driver.NewCache(dir), nil
}

// run loads the packages and evaluates every model.
func (s *session) run(ctx context.Context, analyzeOnly bool) (*driver.Result, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	cache, err := s.cache()
	if err != nil {
		return nil, err
	}

	return driver.Run(ctx, snap, driver.Options{
		Directive:   s.cfg.Directive,
		Jobs:        s.cfg.Jobs,
		Generator:   s.cfg.Generator(),
		AnalyzeOnly: analyzeOnly,
		Cache:       cache,
		Logger:      s.logger,
	})
}

// printDiagnostics writes diagnostics to stderr, or to stdout for JSON so
// tools can parse it.
func (s *session) printDiagnostics(diags []diagnostic.Diagnostic) error {
	out := s.stderr
	if s.format == diagnostic.FormatJSON {
		out = s.stdout
	}

	printer, err := diagnostic.NewPrinter(out, s.format, s.useColor, s.workDir)
	if err != nil {
		return err
	}

	return printer.Print(diags)
}

// relative shortens p for display.
func (s *session) relative(p string) string {
	if rel, err := filepath.Rel(s.workDir, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}

	return p
}
