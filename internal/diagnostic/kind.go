package diagnostic

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind enumerates the diagnostic variants.
type Kind int

const (
	KindMissingProperty  Kind = iota + 1 // MissingProperty
	KindIncompatibleType                 // IncompatibleType
)

// Severity of a diagnostic. Mapping diagnostics are always errors.
type Severity int

const (
	SeverityError Severity = iota
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "unknown"
}

// Descriptor is the static description of a diagnostic kind.
type Descriptor struct {
	Code     string
	Title    string
	Format   string // fmt format; verbs consume Args in order
	Category string
	Severity Severity
}

var descriptors = map[Kind]Descriptor{
	KindMissingProperty: {
		Code:     "MAP001",
		Title:    "Destination property has no matching source",
		Format:   "Property '%s' on destination type '%s' has no matching readable property on source type '%s'",
		Category: "Mapping",
		Severity: SeverityError,
	},
	KindIncompatibleType: {
		Code:     "MAP002",
		Title:    "Property types are incompatible",
		Format:   "Cannot assign source '%s.%s' (type '%s') to destination '%s.%s' (type '%s')",
		Category: "Mapping",
		Severity: SeverityError,
	},
}

// Describe returns the descriptor of k.
func Describe(k Kind) (Descriptor, bool) {
	d, ok := descriptors[k]
	return d, ok
}

// Code returns the stable code of k, e.g. "MAP001".
func (k Kind) Code() string {
	return descriptors[k].Code
}

// KindOfCode maps a stable code back to its kind.
func KindOfCode(code string) (Kind, bool) {
	for k, d := range descriptors {
		if d.Code == code {
			return k, true
		}
	}

	return 0, false
}
