package plan

import (
	"iter"

	"mapgen/internal/analyze"
	"mapgen/internal/common"
)

// Scanner finds mapping directives in a symbol snapshot.
type Scanner struct {
	provider  analyze.SymbolProvider
	directive string
}

// NewScanner creates a Scanner for the given directive marker name. An empty
// directive means analyze.DefaultDirective.
func NewScanner(provider analyze.SymbolProvider, directive string) *Scanner {
	if directive == "" {
		directive = analyze.DefaultDirective
	}

	return &Scanner{provider: provider, directive: directive}
}

// Scan is shorthand for NewScanner(provider, "").Models().
func Scan(provider analyze.SymbolProvider) iter.Seq[MappingModel] {
	return NewScanner(provider, "").Models()
}

// Models lazily yields one model per eligible declaration, in declaration order.
func (s *Scanner) Models() iter.Seq[MappingModel] {
	return func(yield func(MappingModel) bool) {
		for _, decl := range s.provider.Declarations() {
			m, ok := s.Build(decl)
			if !ok {
				continue
			}

			if !yield(m) {
				return
			}
		}
	}
}

// Build attempts to turn one declaration into a model. It reports false for
// declarations outside the generator's contract.
func (s *Scanner) Build(decl analyze.Declaration) (MappingModel, bool) {
	if common.IsEmpty(decl.Markers) {
		return MappingModel{}, false
	}

	dest, ok := s.provider.Lookup(decl.Type)
	if !ok || !dest.Exported || dest.Arity != 0 {
		return MappingModel{}, false
	}

	// Defined types over a struct type qualify through their underlying kind.
	if !decl.Struct && dest.Kind != analyze.TypeKindStruct {
		return MappingModel{}, false
	}

	directive, ok := common.First(decl.MarkersNamed(s.directive))
	if !ok || !common.IsSingle(directive.Args) {
		return MappingModel{}, false
	}

	src, ok := s.provider.Resolve(decl, directive.Args[0])
	if !ok || src.Arity != 0 {
		return MappingModel{}, false
	}

	return MappingModel{
		Namespace:         dest.Namespace(),
		PkgName:           dest.PkgName,
		Dest:              dest,
		Src:               src,
		DestProps:         filter(s.provider.Properties(dest.ID), analyze.PropertyDescriptor.IsDestinationCandidate),
		SrcProps:          filter(s.provider.Properties(src.ID), analyze.PropertyDescriptor.IsSourceCandidate),
		DirectiveLocation: directive.Location,
	}, true
}

func filter(props []analyze.PropertyDescriptor, keep func(analyze.PropertyDescriptor) bool) []analyze.PropertyDescriptor {
	out := make([]analyze.PropertyDescriptor, 0, len(props))

	for _, p := range props {
		if keep(p) {
			out = append(out, p)
		}
	}

	return out
}
