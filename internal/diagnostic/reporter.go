package diagnostic

// Reporter receives diagnostics on behalf of the host.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

// Report implements Reporter.
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Report forwards a model's diagnostics to r, missing first, and reports
// whether the model has errors and must not be emitted.
func Report(r Reporter, missing, incompatible []Diagnostic) (hasErrors bool) {
	for _, d := range missing {
		r.Report(d)
	}

	for _, d := range incompatible {
		r.Report(d)
	}

	return len(missing)+len(incompatible) > 0
}
