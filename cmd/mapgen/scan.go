package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"mapgen/internal/plan"
)

func newScanCmd(root *rootOptions) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "scan [patterns...]",
		Short: "List the mappings declared in packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.session(cmd, args)
			if err != nil {
				return err
			}

			snap, err := s.load(cmd.Context())
			if err != nil {
				return err
			}

			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableMethods: true, SortKeys: true}

			for m := range plan.NewScanner(snap, s.cfg.Directive).Models() {
				if dump {
					cfg.Fdump(s.stdout, m)
					continue
				}

				loc := m.DirectiveLocation
				loc.File = s.relative(loc.File)

				fmt.Fprintf(s.stdout, "%s\t%s.%s -> %s.%s\t%d properties\n",
					loc, m.Src.PkgName, m.Src.Name(), m.Dest.PkgName, m.Dest.Name(), len(m.DestProps))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "dump full models")

	return cmd
}
