package main

import (
	"github.com/spf13/cobra"

	"mapgen/internal/gen"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var stale bool

	cmd := &cobra.Command{
		Use:   "check [patterns...]",
		Short: "Report mapping diagnostics without writing files",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.session(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			res, err := s.run(ctx, !stale)
			if err != nil {
				return err
			}

			if err := s.printDiagnostics(res.Diagnostics); err != nil {
				return err
			}

			failed := res.HasErrors()

			if stale {
				for _, u := range gen.Stale(res.Units) {
					s.logger.Error(ctx, "out of date", "file", s.relative(u.Path()))
					failed = true
				}
			}

			if failed {
				return errDiagnostics
			}

			s.logger.Info(ctx, "ok", "mappings", res.Models)

			return nil
		},
	}

	cmd.Flags().BoolVar(&stale, "stale", false, "also fail when generated files are missing or out of date")

	return cmd
}
