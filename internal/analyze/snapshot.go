package analyze

import (
	"go/token"
	"maps"
	"slices"
	"strings"
)

// Snapshot is an immutable SymbolProvider backed by plain values.
// Build one with a SnapshotBuilder or with Loader.Load.
type Snapshot struct {
	decls    []Declaration
	types    map[TypeID]TypeDescriptor
	props    map[TypeID][]PropertyDescriptor
	aliases  map[TypeID]TypeID
	packages map[string]struct{}
}

var _ SymbolProvider = (*Snapshot)(nil)

// Declarations implements SymbolProvider.
func (s *Snapshot) Declarations() []Declaration {
	return slices.Clone(s.decls)
}

// Lookup implements SymbolProvider.
func (s *Snapshot) Lookup(id TypeID) (TypeDescriptor, bool) {
	t, ok := s.types[id]
	return t, ok
}

// Properties implements SymbolProvider.
func (s *Snapshot) Properties(id TypeID) []PropertyDescriptor {
	return slices.Clone(s.props[id])
}

// Resolve implements SymbolProvider.
//
// Accepted forms are "Name" (declaring package), "alias.Name" (an import
// name of the declaring file) and "import/path.Name". A type alias resolves
// to the type it names.
func (s *Snapshot) Resolve(decl Declaration, arg string) (TypeDescriptor, bool) {
	id, ok := ParseTypeArg(decl, arg, s.hasPackage)
	if !ok {
		return TypeDescriptor{}, false
	}

	if target, ok := s.aliases[id]; ok {
		id = target
	}

	return s.Lookup(id)
}

func (s *Snapshot) hasPackage(path string) bool {
	_, ok := s.packages[path]
	return ok
}

// ParseTypeArg maps a marker argument to a TypeID without looking it up.
// knownPkg reports whether an unaliased qualifier is a package path.
func ParseTypeArg(decl Declaration, arg string, knownPkg func(string) bool) (TypeID, bool) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return TypeID{}, false
	}

	dot := strings.LastIndexByte(arg, '.')
	if dot < 0 {
		if !token.IsIdentifier(arg) {
			return TypeID{}, false
		}

		return TypeID{PkgPath: decl.Type.PkgPath, Name: arg}, true
	}

	qualifier, name := arg[:dot], arg[dot+1:]
	if qualifier == "" || !token.IsIdentifier(name) {
		return TypeID{}, false
	}

	if path, ok := decl.Imports[qualifier]; ok {
		return TypeID{PkgPath: path, Name: name}, true
	}

	if knownPkg != nil && knownPkg(qualifier) {
		return TypeID{PkgPath: qualifier, Name: name}, true
	}

	if strings.Contains(qualifier, "/") {
		return TypeID{PkgPath: qualifier, Name: name}, true
	}

	return TypeID{}, false
}

// SnapshotBuilder assembles a Snapshot. It is not safe for concurrent use.
type SnapshotBuilder struct {
	decls    []Declaration
	types    map[TypeID]TypeDescriptor
	props    map[TypeID][]PropertyDescriptor
	aliases  map[TypeID]TypeID
	packages map[string]struct{}
}

// NewSnapshotBuilder creates an empty builder.
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{
		types:    make(map[TypeID]TypeDescriptor),
		props:    make(map[TypeID][]PropertyDescriptor),
		aliases:  make(map[TypeID]TypeID),
		packages: make(map[string]struct{}),
	}
}

// AddType registers a type and its properties. Property owners are set to
// the type's ID. Registering the same ID again replaces it.
func (b *SnapshotBuilder) AddType(t TypeDescriptor, props ...PropertyDescriptor) *SnapshotBuilder {
	owned := make([]PropertyDescriptor, len(props))
	for i, p := range props {
		p.Owner = t.ID
		owned[i] = p
	}

	b.types[t.ID] = t
	b.props[t.ID] = owned
	b.packages[t.ID.PkgPath] = struct{}{}

	return b
}

// AddAlias records that the alias declared as alias names target. The target
// itself is registered with AddType.
func (b *SnapshotBuilder) AddAlias(alias, target TypeID) *SnapshotBuilder {
	b.aliases[alias] = target
	b.packages[alias.PkgPath] = struct{}{}

	return b
}

// HasType reports whether id was already registered.
func (b *SnapshotBuilder) HasType(id TypeID) bool {
	_, ok := b.types[id]
	return ok
}

// AddDeclaration appends a declaration; declaration order is preserved.
func (b *SnapshotBuilder) AddDeclaration(d Declaration) *SnapshotBuilder {
	d.Markers = slices.Clone(d.Markers)
	d.Imports = maps.Clone(d.Imports)
	b.decls = append(b.decls, d)

	return b
}

// Build returns an immutable snapshot of everything added so far.
func (b *SnapshotBuilder) Build() *Snapshot {
	props := make(map[TypeID][]PropertyDescriptor, len(b.props))
	for id, p := range b.props {
		props[id] = slices.Clone(p)
	}

	return &Snapshot{
		decls:    slices.Clone(b.decls),
		types:    maps.Clone(b.types),
		props:    props,
		aliases:  maps.Clone(b.aliases),
		packages: maps.Clone(b.packages),
	}
}
