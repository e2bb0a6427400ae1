// Package diagnostic defines the two mapping diagnostics and how they reach
// the host.
//
// A Diagnostic is a plain value: a stable code, a location and a closed
// Payload variant (MissingProperty or IncompatibleType). Producing one has no
// side effect. Report forwards a model's diagnostics to a Reporter and tells
// the caller whether emission must be suppressed for that model.
package diagnostic
