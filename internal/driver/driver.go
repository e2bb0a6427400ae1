package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"mapgen/internal/analyze"
	"mapgen/internal/diagnostic"
	"mapgen/internal/gen"
	"mapgen/internal/logging"
	"mapgen/internal/match"
	"mapgen/internal/plan"
)

// ErrOutputDirPackages is returned when an output directory override is set
// but the models declare destinations in more than one package.
var ErrOutputDirPackages = errors.New("output directory requires destinations in a single package")

// Options configures a Run.
type Options struct {
	// Directive is the marker name; empty means analyze.DefaultDirective.
	Directive string
	// Jobs bounds parallelism; <= 0 means GOMAXPROCS.
	Jobs int
	// Generator configures emission.
	Generator gen.GeneratorConfig
	// AnalyzeOnly reports diagnostics without emitting code.
	AnalyzeOnly bool
	// Cache is optional.
	Cache *Cache
	// Reporter receives every diagnostic in model order once the run is
	// complete. Nil means diagnostic.Discard.
	Reporter diagnostic.Reporter
	// Logger is optional; nil means logging.NopLogger.
	Logger logging.Logger
}

func (o Options) jobs(n int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	return max(1, min(jobs, n))
}

// Result is the merged outcome of a run.
type Result struct {
	// Models is the number of eligible directives found.
	Models int
	// Units holds one unit per model without diagnostics, in model order.
	Units []gen.GeneratedUnit
	// Diagnostics are grouped per model in model order; within a model
	// missing properties come before incompatible types.
	Diagnostics []diagnostic.Diagnostic
	// CacheHits counts models served from the cache.
	CacheHits int
}

// HasErrors reports whether any diagnostic was produced.
func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// outcome is the result of one model.
type outcome struct {
	Unit        *gen.GeneratedUnit
	Diagnostics []diagnostic.Diagnostic
}

// Run scans provider and evaluates every model. Cancellation of ctx discards
// all partial results.
func Run(ctx context.Context, provider analyze.SymbolProvider, opts Options) (*Result, error) {
	start := time.Now()

	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}

	models := slices.Collect(plan.NewScanner(provider, opts.Directive).Models())
	generator := gen.NewGenerator(opts.Generator)

	logger.Debug(ctx, "scanned directives", "models", len(models))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !opts.AnalyzeOnly && opts.Generator.OutputDir != "" {
		if err := singlePackage(models); err != nil {
			return nil, err
		}
	}

	outcomes := make([]outcome, len(models))
	hits := make([]bool, len(models))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(models)))

	for i := range models {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, hit, err := evaluateCached(gctx, &models[i], generator, opts, logger)
			if err != nil {
				return err
			}

			outcomes[i], hits[i] = out, hit

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Models: len(models)}

	var all diagnostic.Diagnostics

	for i, out := range outcomes {
		if hits[i] {
			res.CacheHits++
		}

		all.Merge(diagnostic.Diagnostics{Errors: out.Diagnostics})

		if out.Unit != nil && !opts.AnalyzeOnly {
			res.Units = append(res.Units, *out.Unit)
		}
	}

	res.Diagnostics = all.Errors

	reporter := opts.Reporter
	if reporter == nil {
		reporter = diagnostic.Discard
	}

	for _, d := range res.Diagnostics {
		reporter.Report(d)
	}

	logger.Debug(ctx, "run finished",
		"models", res.Models,
		"units", len(res.Units),
		"diagnostics", all.Len(),
		"cache_hits", res.CacheHits,
		"cache_entries", opts.Cache.Len(),
		"elapsed", time.Since(start).Round(time.Microsecond),
	)

	return res, nil
}

// singlePackage fails unless every model's destination lives in one package,
// since generated files in a shared directory must agree on the package
// clause.
func singlePackage(models []plan.MappingModel) error {
	if len(models) == 0 {
		return nil
	}

	first := models[0].Dest.ID.PkgPath

	for _, m := range models[1:] {
		if m.Dest.ID.PkgPath != first {
			return fmt.Errorf("%w: %s and %s", ErrOutputDirPackages, first, m.Dest.ID.PkgPath)
		}
	}

	return nil
}

func evaluateCached(
	ctx context.Context,
	m *plan.MappingModel,
	generator *gen.Generator,
	opts Options,
	logger logging.Logger,
) (outcome, bool, error) {
	if opts.Cache == nil {
		out, err := evaluate(m, generator, opts.AnalyzeOnly)
		return out, false, err
	}

	key, err := cacheKey(m, generator.Config())
	if err != nil {
		return outcome{}, false, err
	}

	out, ok, err := opts.Cache.Get(key)
	if err != nil {
		logger.Debug(ctx, "cache read failed", "model", m.String(), "err", err)
	}

	if ok {
		logger.Debug(ctx, "cache hit", "model", m.String())
		return out, true, nil
	}

	out, err = evaluate(m, generator, opts.AnalyzeOnly)
	if err != nil {
		return outcome{}, false, err
	}

	// Analyze-only outcomes of clean models lack the unit.
	if opts.AnalyzeOnly && len(out.Diagnostics) == 0 {
		return out, false, nil
	}

	if err := opts.Cache.Put(key, out); err != nil {
		logger.Debug(ctx, "cache write failed", "model", m.String(), "err", err)
	}

	return out, false, nil
}

// evaluate runs one model through analysis, reporting and, when clean,
// emission.
func evaluate(m *plan.MappingModel, generator *gen.Generator, analyzeOnly bool) (outcome, error) {
	missing, incompatible := match.Analyze(m)

	var bag diagnostic.Diagnostics
	if diagnostic.Report(&bag, missing, incompatible) {
		return outcome{Diagnostics: bag.Errors}, nil
	}

	if analyzeOnly {
		return outcome{}, nil
	}

	unit, err := generator.Emit(m)
	if err != nil {
		return outcome{}, err
	}

	return outcome{Unit: &unit}, nil
}
