package diagnostic

import (
	"errors"
	"fmt"

	"mapgen/internal/analyze"
)

// Payload is the closed set of diagnostic variants. Only this package can
// implement it.
type Payload interface {
	// Kind identifies the variant.
	Kind() Kind
	// Args returns the message arguments in template order.
	Args() []string

	isPayload()
}

// MissingProperty reports a destination property with no same-named
// readable source property.
type MissingProperty struct {
	DestProperty string
	DestType     string
	SrcType      string
}

// Kind implements Payload.
func (MissingProperty) Kind() Kind { return KindMissingProperty }

// Args implements Payload.
func (p MissingProperty) Args() []string {
	return []string{p.DestProperty, p.DestType, p.SrcType}
}

func (MissingProperty) isPayload() {}

// IncompatibleType reports a matched pair of properties whose types cannot
// be assigned.
type IncompatibleType struct {
	SrcType          string
	SrcProperty      string
	SrcPropertyType  string
	DestType         string
	DestProperty     string
	DestPropertyType string
}

// Kind implements Payload.
func (IncompatibleType) Kind() Kind { return KindIncompatibleType }

// Args implements Payload.
func (p IncompatibleType) Args() []string {
	return []string{p.SrcType, p.SrcProperty, p.SrcPropertyType, p.DestType, p.DestProperty, p.DestPropertyType}
}

func (IncompatibleType) isPayload() {}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Code is the stable identifier of the kind, e.g. "MAP001".
	Code     string
	Severity Severity
	Location analyze.Location
	Payload  Payload
	// Suggestions are notes for the reader; they never change the message.
	Suggestions []string
}

// New creates a diagnostic for payload at loc.
func New(loc analyze.Location, payload Payload) Diagnostic {
	desc := descriptors[payload.Kind()]

	return Diagnostic{
		Code:     desc.Code,
		Severity: desc.Severity,
		Location: loc,
		Payload:  payload,
	}
}

// ErrArgCount is returned by FromArgs when args do not fit the kind.
var ErrArgCount = errors.New("wrong number of diagnostic arguments")

// FromArgs rebuilds a diagnostic from its kind and ordered arguments, the
// inverse of Diagnostic.Args.
func FromArgs(kind Kind, loc analyze.Location, args []string) (Diagnostic, error) {
	switch kind {
	case KindMissingProperty:
		if len(args) != 3 {
			return Diagnostic{}, fmt.Errorf("%s: %w", kind, ErrArgCount)
		}

		return New(loc, MissingProperty{DestProperty: args[0], DestType: args[1], SrcType: args[2]}), nil

	case KindIncompatibleType:
		if len(args) != 6 {
			return Diagnostic{}, fmt.Errorf("%s: %w", kind, ErrArgCount)
		}

		return New(loc, IncompatibleType{
			SrcType: args[0], SrcProperty: args[1], SrcPropertyType: args[2],
			DestType: args[3], DestProperty: args[4], DestPropertyType: args[5],
		}), nil

	default:
		return Diagnostic{}, fmt.Errorf("unknown diagnostic kind %d", kind)
	}
}

// Kind returns the variant of the payload.
func (d Diagnostic) Kind() Kind {
	if d.Payload == nil {
		return 0
	}

	return d.Payload.Kind()
}

// Args returns the ordered message arguments.
func (d Diagnostic) Args() []string {
	if d.Payload == nil {
		return nil
	}

	return d.Payload.Args()
}

// Message renders the message template with the arguments.
func (d Diagnostic) Message() string {
	desc, ok := descriptors[d.Kind()]
	if !ok {
		return ""
	}

	args := d.Args()
	vals := make([]any, len(args))

	for i, a := range args {
		vals[i] = a
	}

	return fmt.Sprintf(desc.Format, vals...)
}

// WithSuggestions returns a copy of d carrying the given notes.
func (d Diagnostic) WithSuggestions(s ...string) Diagnostic {
	d.Suggestions = append([]string(nil), s...)
	return d
}

// String returns "location: severity CODE: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.Code, d.Message())
}

// Diagnostics collects reported diagnostics. It implements Reporter.
type Diagnostics struct {
	Errors []Diagnostic
}

// Report implements Reporter.
func (d *Diagnostics) Report(diag Diagnostic) {
	d.Errors = append(d.Errors, diag)
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Len returns the number of collected diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Errors)
}

// Merge appends other's diagnostics, keeping order.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
}
