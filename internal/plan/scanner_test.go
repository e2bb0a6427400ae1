package plan

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapgen/internal/analyze"
	"mapgen/internal/analyze/analyzetest"
)

var (
	order = analyzetest.Struct(analyzetest.OrdersPkg, "Order")
	dto   = analyzetest.Struct(analyzetest.OrdersPkg, "OrderDto")
)

func collect(provider analyze.SymbolProvider) []MappingModel {
	return slices.Collect(Scan(provider))
}

func builder() *analyze.SnapshotBuilder {
	return analyze.NewSnapshotBuilder().
		AddType(order, analyzetest.OrderProps()...).
		AddType(analyzetest.Struct(analyzetest.OrdersPkg, "OrderId"))
}

func TestScan_SingleModel(t *testing.T) {
	snap := analyzetest.Orders(analyzetest.DestLine(
		analyzetest.Field("Id", analyzetest.OrderID),
		analyzetest.Field("Status", analyzetest.Basic("string")),
	)...)

	models := collect(snap)
	require.Len(t, models, 1)

	m := models[0]
	assert.Equal(t, analyzetest.OrdersPkg, m.Namespace)
	assert.Equal(t, "orders", m.PkgName)
	assert.Equal(t, "OrderDto", m.Dest.Name())
	assert.Equal(t, "Order", m.Src.Name())
	assert.True(t, m.SamePackage())
	assert.Len(t, m.DestProps, 2)
	assert.Len(t, m.SrcProps, 3)
	assert.Equal(t, uint32(5), m.DirectiveLocation.Line)
	assert.Equal(t, "example.com/app/orders.Order -> example.com/app/orders.OrderDto", m.String())
}

func TestScan_SkipsIneligible(t *testing.T) {
	private := analyzetest.Struct(analyzetest.OrdersPkg, "orderRow")
	private.Exported = false

	generic := analyzetest.Struct(analyzetest.OrdersPkg, "Page")
	generic.Arity = 1

	genericSrc := analyzetest.Struct(analyzetest.OrdersPkg, "Box")
	genericSrc.Arity = 1

	iface := analyzetest.Struct(analyzetest.OrdersPkg, "Reader")
	iface.Kind = analyze.TypeKindOther

	noArgs := analyzetest.Struct(analyzetest.OrdersPkg, "NoArgs")
	twoArgs := analyzetest.Struct(analyzetest.OrdersPkg, "TwoArgs")
	unresolved := analyzetest.Struct(analyzetest.OrdersPkg, "Unresolved")
	fromGeneric := analyzetest.Struct(analyzetest.OrdersPkg, "FromGeneric")

	snap := builder().
		AddType(private).
		AddType(generic).
		AddType(genericSrc).
		AddType(iface).
		AddType(noArgs).
		AddType(twoArgs).
		AddType(unresolved).
		AddType(fromGeneric).
		AddDeclaration(analyzetest.Directive(private, "Order")).
		AddDeclaration(analyzetest.Directive(generic, "Order")).
		AddDeclaration(analyzetest.Directive(iface, "Order")).
		AddDeclaration(analyzetest.Directive(noArgs)).
		AddDeclaration(analyzetest.Directive(twoArgs, "Order", "Other")).
		AddDeclaration(analyzetest.Directive(unresolved, "Missing")).
		AddDeclaration(analyzetest.Directive(fromGeneric, "Box")).
		Build()

	assert.Empty(t, collect(snap))
}

func TestScan_DefinedStructType(t *testing.T) {
	record := analyzetest.Struct(analyzetest.OrdersPkg, "OrderRecord")

	// type OrderRecord Order
	decl := analyzetest.Directive(record, "Order")
	decl.Struct = false

	snap := builder().
		AddType(record, analyzetest.OrderProps()...).
		AddDeclaration(decl).
		Build()

	models := collect(snap)
	require.Len(t, models, 1)
	assert.Equal(t, "OrderRecord", models[0].Dest.Name())
	assert.Len(t, models[0].DestProps, 3)
}

func TestScan_AliasSource(t *testing.T) {
	legacy := analyzetest.Struct(analyzetest.OrdersPkg, "Legacy")
	legacy.Kind = analyze.TypeKindOther

	snap := builder().
		AddType(legacy).
		AddAlias(legacy.ID, order.ID).
		AddType(dto, analyzetest.Field("Status", analyzetest.Basic("string"))).
		AddDeclaration(analyzetest.Directive(dto, "Legacy")).
		Build()

	models := collect(snap)
	require.Len(t, models, 1)
	assert.Equal(t, order.ID, models[0].Src.ID)
	assert.Len(t, models[0].SrcProps, 3)
}

func TestScan_FirstDirectiveOnly(t *testing.T) {
	other := analyzetest.Struct(analyzetest.OrdersPkg, "Other")

	decl := analyzetest.Directive(dto, "Order")
	decl.Markers = append(decl.Markers,
		analyze.Marker{Name: analyze.DefaultDirective, Args: []string{"Other"}},
		analyze.Marker{Name: "json:ignore"},
	)

	snap := builder().
		AddType(other).
		AddType(dto).
		AddDeclaration(decl).
		Build()

	models := collect(snap)
	require.Len(t, models, 1)
	assert.Equal(t, "Order", models[0].Src.Name())
}

func TestScan_IgnoresForeignMarkers(t *testing.T) {
	decl := analyzetest.Directive(dto, "Order")
	decl.Markers[0].Name = "other:from"

	snap := builder().AddType(dto).AddDeclaration(decl).Build()

	assert.Empty(t, collect(snap))
}

func TestScan_CustomDirective(t *testing.T) {
	decl := analyzetest.Directive(dto, "Order")
	decl.Markers[0].Name = "acme:map"

	snap := builder().AddType(dto).AddDeclaration(decl).Build()

	models := slices.Collect(NewScanner(snap, "acme:map").Models())
	require.Len(t, models, 1)
	assert.Equal(t, "OrderDto", models[0].Dest.Name())
}

func TestScan_FiltersProperties(t *testing.T) {
	readOnly := analyzetest.Getter("Total", analyzetest.Basic("int64"))

	unexported := analyzetest.Field("note", analyzetest.Basic("string"))
	unexported.Exported = false

	static := analyzetest.Field("Version", analyzetest.Basic("int"))
	static.Static = true

	srcProps := append(analyzetest.OrderProps(), readOnly, unexported, static)

	snap := analyze.NewSnapshotBuilder().
		AddType(order, srcProps...).
		AddType(dto,
			analyzetest.Field("Id", analyzetest.OrderID),
			readOnly,
			unexported,
			static,
		).
		AddDeclaration(analyzetest.Directive(dto, "Order")).
		Build()

	models := collect(snap)
	require.Len(t, models, 1)

	names := func(props []analyze.PropertyDescriptor) []string {
		out := make([]string, 0, len(props))
		for _, p := range props {
			out = append(out, p.Name)
		}

		return out
	}

	assert.Equal(t, []string{"Id"}, names(models[0].DestProps))
	assert.Equal(t, []string{"Id", "Status", "Quantity", "Total"}, names(models[0].SrcProps))
}

func TestScan_CrossPackageSource(t *testing.T) {
	const shippingPkg = "example.com/app/shipping"

	line := analyzetest.Struct(shippingPkg, "ShipmentLine")

	decl := analyzetest.Directive(line, "orders.Order")
	decl.Imports = map[string]string{"orders": analyzetest.OrdersPkg}

	snap := builder().
		AddType(line, analyzetest.Field("Id", analyzetest.OrderID)).
		AddDeclaration(decl).
		Build()

	models := collect(snap)
	require.Len(t, models, 1)
	assert.Equal(t, shippingPkg, models[0].Namespace)
	assert.Equal(t, "shipping", models[0].PkgName)
	assert.False(t, models[0].SamePackage())
}

func TestScan_DeclarationOrder(t *testing.T) {
	a := analyzetest.Struct(analyzetest.OrdersPkg, "B")
	b := analyzetest.Struct(analyzetest.OrdersPkg, "A")

	snap := builder().
		AddType(a).
		AddType(b).
		AddDeclaration(analyzetest.Directive(a, "Order")).
		AddDeclaration(analyzetest.Directive(b, "Order")).
		Build()

	var got []string
	for m := range Scan(snap) {
		got = append(got, m.Dest.Name())
	}

	assert.Equal(t, []string{"B", "A"}, got)
}

func TestScan_StopsEarly(t *testing.T) {
	a := analyzetest.Struct(analyzetest.OrdersPkg, "A")
	b := analyzetest.Struct(analyzetest.OrdersPkg, "B")

	snap := builder().
		AddType(a).
		AddType(b).
		AddDeclaration(analyzetest.Directive(a, "Order")).
		AddDeclaration(analyzetest.Directive(b, "Order")).
		Build()

	count := 0
	for range Scan(snap) {
		count++

		break
	}

	assert.Equal(t, 1, count)
}

func TestMappingModel_LocationOf(t *testing.T) {
	m := MappingModel{DirectiveLocation: analyze.Location{File: "a.go", Line: 3, Column: 1}}

	at := analyzetest.FieldAt("Id", analyzetest.OrderID, "a.go", 7)
	assert.Equal(t, at.Location, m.LocationOf(at))
	assert.Equal(t, m.DirectiveLocation, m.LocationOf(analyzetest.Field("Id", analyzetest.OrderID)))
}

func TestMappingModel_Fingerprint(t *testing.T) {
	props := analyzetest.DestLine(analyzetest.Field("Id", analyzetest.OrderID))

	first := collect(analyzetest.Orders(props...))[0]
	second := collect(analyzetest.Orders(props...))[0]

	d1, err := first.Fingerprint()
	require.NoError(t, err)

	d2, err := second.Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1.String(), 64)

	changed := collect(analyzetest.Orders(analyzetest.DestLine(
		analyzetest.Field("Id", analyzetest.Basic("string")),
	)...))[0]

	d3, err := changed.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}
