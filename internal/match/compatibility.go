package match

import (
	"mapgen/internal/analyze"
	"mapgen/internal/common"
)

// Verdict is the compatibility of a source type with a destination type.
type Verdict int

const (
	// Incompatible means generated code cannot assign the source.
	Incompatible Verdict = iota
	// TextualConversion means the destination is string and the source is
	// converted to text.
	TextualConversion
	// Identical means the types are nominally equal and assigned directly.
	Identical
)

const (
	VerdictIdentical         = "identical"
	VerdictTextualConversion = "textual_conversion"
	VerdictIncompatible      = "incompatible"
)

// String returns a human-readable name for the verdict.
func (v Verdict) String() string {
	switch v {
	case Identical:
		return VerdictIdentical
	case TextualConversion:
		return VerdictTextualConversion
	case Incompatible:
		return VerdictIncompatible
	default:
		return common.UnknownStr
	}
}

// Compatible reports whether the verdict allows emission.
func (v Verdict) Compatible() bool {
	return v == Identical || v == TextualConversion
}

// Classify applies the coercion policy: nominal equality first, then any
// source into a string destination, otherwise incompatible. Assignability
// and numeric conversions are not considered.
func Classify(dst, src analyze.TypeRef) Verdict {
	if dst.Identical(src) {
		return Identical
	}

	if dst.Textual {
		return TextualConversion
	}

	return Incompatible
}
