// Command mapgen generates mapping functions for struct types annotated with
// a //mapgen:from directive.
//
// Usage:
//
//	mapgen gen [patterns...]    analyze and write *_mapping_gen.go files
//	mapgen check [patterns...]  analyze only; exit 1 on diagnostics
//	mapgen scan [patterns...]   list discovered mappings
//	mapgen cache dir|clean      show or clear the result cache
//	mapgen version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// errDiagnostics marks a run that reported diagnostics. They are already
// printed, so main only sets the exit code.
var errDiagnostics = errors.New("mapping diagnostics reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "mapgen:", err)
		}

		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "mapgen",
		Short:         "Generate mapping functions between Go struct types",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: mapgen.toml or mapgen.yaml found upwards)")
	flags.StringVar(&opts.color, "color", "auto", "colorize output (auto|on|off)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only print errors")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print debug logs")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "models evaluated in parallel (0 = GOMAXPROCS)")
	flags.StringVar(&opts.format, "format", "pretty", "diagnostic format (pretty|short|json)")

	root.AddCommand(
		newGenCmd(opts),
		newCheckCmd(opts),
		newScanCmd(opts),
		newCacheCmd(opts),
		newVersionCmd(),
	)

	return root
}
