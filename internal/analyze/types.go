package analyze

import (
	"fmt"

	"mapgen/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "mapgen/examples/orders"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the kind of a declared type.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindStruct           // struct type
	TypeKindOther            // any other named type (basic, interface, func, ...)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindStruct:
		return "struct"
	case TypeKindOther:
		return "other"
	default:
		return common.UnknownStr
	}
}

// TypeDescriptor describes a named type in the symbol snapshot.
type TypeDescriptor struct {
	ID TypeID
	// PkgName is the package clause name, which may differ from the last
	// element of the import path.
	PkgName  string
	Exported bool
	// Arity is the number of type parameters; only 0 is mappable.
	Arity int
	Kind  TypeKind
	// Dir is the directory holding the declaring package, if known.
	Dir string
}

// Name returns the simple type name.
func (t TypeDescriptor) Name() string {
	return t.ID.Name
}

// Namespace returns the declaring package path, empty for the root namespace.
func (t TypeDescriptor) Namespace() string {
	return t.ID.PkgPath
}

// Nilability describes how a property value can be nil.
type Nilability int

const (
	NotNilable       Nilability = iota
	NilablePointer              // *T: dereference before use
	NilableReference            // interface, map, slice, chan, func
)

// TypeRef identifies the type of a property.
type TypeRef struct {
	// ID is the fully qualified type string; two properties have the same
	// type iff their IDs are equal.
	ID string
	// Display is the type as a user reads it, qualified by package name.
	Display string
	// Textual is set only for the predeclared string type.
	Textual bool
	Nil     Nilability
}

// Identical reports nominal type equality.
func (r TypeRef) Identical(other TypeRef) bool {
	return r.ID == other.ID
}

// String implements fmt.Stringer.
func (r TypeRef) String() string {
	return r.Display
}

// StringType is the TypeRef of the predeclared string type.
var StringType = TypeRef{ID: "string", Display: "string", Textual: true}

// Accessor tells how a property value is read.
type Accessor int

const (
	AccessorField  Accessor = iota // x.Name
	AccessorGetter                 // x.Name()
)

// PropertyDescriptor describes a field or getter of a type.
type PropertyDescriptor struct {
	Owner    TypeID
	Name     string
	Type     TypeRef
	Exported bool
	Readable bool
	Writable bool
	Static   bool
	Accessor Accessor
	Location Location
}

// IsDestinationCandidate reports whether p can be assigned by generated code.
func (p PropertyDescriptor) IsDestinationCandidate() bool {
	return p.Exported && !p.Static && p.Writable
}

// IsSourceCandidate reports whether p can be read by generated code.
func (p PropertyDescriptor) IsSourceCandidate() bool {
	return p.Exported && !p.Static && p.Readable
}

// Location is a position in a source file. The zero value means "unknown".
type Location struct {
	File   string
	Line   uint32
	Column uint32
}

// IsValid reports whether the location points into a source file.
func (l Location) IsValid() bool {
	return l.File != "" && l.Line > 0
}

// String formats the location as file:line:column.
func (l Location) String() string {
	if !l.IsValid() {
		return "-"
	}

	if l.Column == 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}

	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Marker is one `//ns:name args...` comment line attached to a declaration.
type Marker struct {
	Name     string   // e.g., "mapgen:from"
	Args     []string // whitespace separated arguments
	Location Location
}

// Declaration is a syntactic type declaration together with its markers.
// Struct reports a struct type literal on the right-hand side; defined types
// such as `type A B` leave it false.
type Declaration struct {
	Type    TypeID
	Struct  bool
	Markers []Marker
	// Imports maps import names visible in the declaring file to package
	// paths; used to resolve qualified marker arguments.
	Imports map[string]string
}

// SymbolProvider is the read-only query contract the mapping core needs.
// Implementations must be safe for concurrent use and must not change
// between calls.
type SymbolProvider interface {
	// Declarations returns candidate declarations in a stable order.
	Declarations() []Declaration
	// Lookup returns the descriptor of a named type.
	Lookup(id TypeID) (TypeDescriptor, bool)
	// Properties returns the properties of a type in declaration order.
	Properties(id TypeID) []PropertyDescriptor
	// Resolve turns a marker argument written in decl's file into a type.
	Resolve(decl Declaration, arg string) (TypeDescriptor, bool)
}
