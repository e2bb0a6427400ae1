// Package analyzetest builds synthetic symbol snapshots for tests.
package analyzetest

import (
	"mapgen/internal/analyze"
	"mapgen/internal/common"
)

// OrdersPkg is the package path used by the order fixtures.
const OrdersPkg = "example.com/app/orders"

// Basic returns the TypeRef of a predeclared type such as "int" or "string".
func Basic(name string) analyze.TypeRef {
	if name == "string" {
		return analyze.StringType
	}

	return analyze.TypeRef{ID: name, Display: name}
}

// Named returns the TypeRef of a named type declared in pkgPath.
func Named(pkgPath, name string) analyze.TypeRef {
	return analyze.TypeRef{
		ID:      pkgPath + "." + name,
		Display: common.PkgAlias(pkgPath) + "." + name,
	}
}

// Pointer returns the TypeRef of *elem.
func Pointer(elem analyze.TypeRef) analyze.TypeRef {
	return analyze.TypeRef{
		ID:      "*" + elem.ID,
		Display: "*" + elem.Display,
		Nil:     analyze.NilablePointer,
	}
}

// Slice returns the TypeRef of []elem.
func Slice(elem analyze.TypeRef) analyze.TypeRef {
	return analyze.TypeRef{
		ID:      "[]" + elem.ID,
		Display: "[]" + elem.Display,
		Nil:     analyze.NilableReference,
	}
}

// Field returns an exported struct field.
func Field(name string, t analyze.TypeRef) analyze.PropertyDescriptor {
	return analyze.PropertyDescriptor{
		Name:     name,
		Type:     t,
		Exported: true,
		Readable: true,
		Writable: true,
		Accessor: analyze.AccessorField,
	}
}

// FieldAt is Field with a location on the given line of file.
func FieldAt(name string, t analyze.TypeRef, file string, line uint32) analyze.PropertyDescriptor {
	p := Field(name, t)
	p.Location = analyze.Location{File: file, Line: line, Column: 2}

	return p
}

// Getter returns an exported getter method.
func Getter(name string, t analyze.TypeRef) analyze.PropertyDescriptor {
	return analyze.PropertyDescriptor{
		Name:     name,
		Type:     t,
		Exported: true,
		Readable: true,
		Accessor: analyze.AccessorGetter,
	}
}

// Struct returns an exported, non-generic struct descriptor.
func Struct(pkgPath, name string) analyze.TypeDescriptor {
	return analyze.TypeDescriptor{
		ID:       analyze.TypeID{PkgPath: pkgPath, Name: name},
		PkgName:  common.PkgAlias(pkgPath),
		Exported: true,
		Kind:     analyze.TypeKindStruct,
	}
}

// Directive returns a declaration of typ carrying `//mapgen:from arg`.
func Directive(typ analyze.TypeDescriptor, args ...string) analyze.Declaration {
	return analyze.Declaration{
		Type:   typ.ID,
		Struct: typ.Kind == analyze.TypeKindStruct,
		Markers: []analyze.Marker{{
			Name:     analyze.DefaultDirective,
			Args:     args,
			Location: analyze.Location{File: "order_dto.go", Line: 5, Column: 1},
		}},
	}
}

// OrderID is the strongly typed identifier of the order fixtures.
var OrderID = Named(OrdersPkg, "OrderId")

// OrderProps returns the properties of the Order source type:
// Id OrderId, Status string, Quantity int.
func OrderProps() []analyze.PropertyDescriptor {
	return []analyze.PropertyDescriptor{
		FieldAt("Id", OrderID, "order.go", 6),
		FieldAt("Status", Basic("string"), "order.go", 7),
		FieldAt("Quantity", Basic("int"), "order.go", 8),
	}
}

// Orders builds a snapshot with Order and an OrderDto declared with
// `//mapgen:from Order` whose properties are destProps.
func Orders(destProps ...analyze.PropertyDescriptor) *analyze.Snapshot {
	order := Struct(OrdersPkg, "Order")
	dto := Struct(OrdersPkg, "OrderDto")

	return analyze.NewSnapshotBuilder().
		AddType(order, OrderProps()...).
		AddType(Struct(OrdersPkg, "OrderId")).
		AddType(dto, destProps...).
		AddDeclaration(Directive(dto, "Order")).
		Build()
}

// DestLine numbers destination fields from line 6 of order_dto.go.
func DestLine(props ...analyze.PropertyDescriptor) []analyze.PropertyDescriptor {
	out := make([]analyze.PropertyDescriptor, len(props))

	for i, p := range props {
		p.Location = analyze.Location{File: "order_dto.go", Line: uint32(6 + i), Column: 2}
		out[i] = p
	}

	return out
}
