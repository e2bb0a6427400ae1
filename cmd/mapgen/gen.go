package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mapgen/internal/gen"
)

type genOptions struct {
	out    string
	cache  bool
	dryRun bool
}

func newGenCmd(root *rootOptions) *cobra.Command {
	opts := &genOptions{}

	cmd := &cobra.Command{
		Use:   "gen [patterns...]",
		Short: "Analyze packages and write mapping functions",
		Long: `gen loads the given packages (default: the configured patterns), checks every
//mapgen:from directive and writes a <type>_mapping_gen.go file next to each
destination type that maps cleanly. Types with diagnostics are not generated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.session(cmd, args)
			if err != nil {
				return err
			}

			if opts.out != "" {
				s.cfg.OutputDir = opts.out
			}

			if opts.cache {
				s.cfg.Cache = true
			}

			ctx := cmd.Context()

			res, err := s.run(ctx, false)
			if err != nil {
				return err
			}

			if err := s.printDiagnostics(res.Diagnostics); err != nil {
				return err
			}

			if opts.dryRun {
				for _, u := range res.Units {
					fmt.Fprintf(s.stdout, "// %s\n%s\n", u.Path(), u.Content)
				}
			} else {
				written, err := gen.WriteFiles(res.Units)
				for _, p := range written {
					s.logger.Info(ctx, "wrote", "file", s.relative(p))
				}

				if err != nil {
					return err
				}

				s.logger.Debug(ctx, "unchanged", "files", len(res.Units)-len(written))
			}

			if res.HasErrors() {
				s.logger.Error(ctx, "mappings not generated", "diagnostics", len(res.Diagnostics))
				return errDiagnostics
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write all files to this directory")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "reuse results of unchanged models")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "print generated code instead of writing it")

	return cmd
}
