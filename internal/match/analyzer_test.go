package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapgen/internal/analyze"
	"mapgen/internal/analyze/analyzetest"
	"mapgen/internal/diagnostic"
	"mapgen/internal/plan"
)

func model(t *testing.T, destProps ...analyze.PropertyDescriptor) *plan.MappingModel {
	t.Helper()

	snap := analyzetest.Orders(analyzetest.DestLine(destProps...)...)

	var models []plan.MappingModel
	for m := range plan.Scan(snap) {
		models = append(models, m)
	}

	require.Len(t, models, 1)

	return &models[0]
}

func codes(diags []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}

	return out
}

func TestAnalyze_AllMatching(t *testing.T) {
	m := model(t,
		analyzetest.Field("Id", analyzetest.OrderID),
		analyzetest.Field("Status", analyzetest.Basic("string")),
		analyzetest.Field("Quantity", analyzetest.Basic("int")),
	)

	missing, incompatible := Analyze(m)
	assert.Empty(t, missing)
	assert.Empty(t, incompatible)
}

func TestAnalyze_MissingProperty(t *testing.T) {
	m := model(t,
		analyzetest.Field("Id", analyzetest.OrderID),
		analyzetest.Field("Status", analyzetest.Basic("string")),
		analyzetest.Field("Quantity", analyzetest.Basic("int")),
		analyzetest.Field("Note", analyzetest.Basic("string")),
	)

	missing, incompatible := Analyze(m)
	assert.Empty(t, incompatible)
	require.Len(t, missing, 1)

	d := missing[0]
	assert.Equal(t, "MAP001", d.Code)
	assert.Equal(t,
		"Property 'Note' on destination type 'OrderDto' has no matching readable property on source type 'Order'",
		d.Message())
	assert.Equal(t, analyze.Location{File: "order_dto.go", Line: 9, Column: 2}, d.Location)
	assert.Empty(t, d.Suggestions)
}

func TestAnalyze_IncompatibleType(t *testing.T) {
	m := model(t,
		analyzetest.Field("Id", analyzetest.OrderID),
		analyzetest.Field("Status", analyzetest.Basic("int")),
	)

	missing, incompatible := Analyze(m)
	assert.Empty(t, missing)
	require.Len(t, incompatible, 1)

	want := diagnostic.IncompatibleType{
		SrcType: "Order", SrcProperty: "Status", SrcPropertyType: "string",
		DestType: "OrderDto", DestProperty: "Status", DestPropertyType: "int",
	}

	if diff := cmp.Diff(want, incompatible[0].Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_TextualConversionIsCompatible(t *testing.T) {
	m := model(t,
		analyzetest.Field("Id", analyzetest.Basic("string")),
		analyzetest.Field("Quantity", analyzetest.Basic("string")),
	)

	missing, incompatible := Analyze(m)
	assert.Empty(t, missing)
	assert.Empty(t, incompatible)
}

func TestAnalyze_OrderFollowsDestination(t *testing.T) {
	m := model(t,
		analyzetest.Field("Zeta", analyzetest.Basic("int")),
		analyzetest.Field("Status", analyzetest.Basic("bool")),
		analyzetest.Field("Alpha", analyzetest.Basic("int")),
		analyzetest.Field("Quantity", analyzetest.Basic("float64")),
	)

	missing, incompatible := Analyze(m)

	var names []string
	for _, d := range missing {
		names = append(names, d.Args()[0])
	}

	assert.Equal(t, []string{"Zeta", "Alpha"}, names)
	assert.Equal(t, []string{"MAP002", "MAP002"}, codes(incompatible))
	assert.Equal(t, "Status", incompatible[0].Args()[1])
	assert.Equal(t, "Quantity", incompatible[1].Args()[1])
}

func TestAnalyze_NameMatchIsCaseSensitive(t *testing.T) {
	m := model(t, analyzetest.Field("status", analyzetest.Basic("string")))

	missing, _ := Analyze(m)
	require.Len(t, missing, 1)
	assert.Equal(t, []string{"did you mean 'Status'?"}, missing[0].Suggestions)
}

func TestAnalyze_Suggestion(t *testing.T) {
	m := model(t,
		analyzetest.Field("Quantty", analyzetest.Basic("int")),
		analyzetest.Field("Whatever", analyzetest.Basic("int")),
	)

	missing, _ := Analyze(m)
	require.Len(t, missing, 2)
	assert.Equal(t, []string{"did you mean 'Quantity'?"}, missing[0].Suggestions)
	assert.Empty(t, missing[1].Suggestions)
}

func TestAnalyze_FallsBackToDirectiveLocation(t *testing.T) {
	snap := analyzetest.Orders(analyzetest.Field("Note", analyzetest.Basic("string")))

	var m plan.MappingModel
	for mm := range plan.Scan(snap) {
		m = mm
	}

	missing, _ := Analyze(&m)
	require.Len(t, missing, 1)
	assert.Equal(t, m.DirectiveLocation, missing[0].Location)
	assert.Equal(t, uint32(5), missing[0].Location.Line)
}

func TestAnalyze_GetterSource(t *testing.T) {
	order := analyzetest.Struct(analyzetest.OrdersPkg, "Order")
	view := analyzetest.Struct(analyzetest.OrdersPkg, "OrderView")

	snap := analyze.NewSnapshotBuilder().
		AddType(order, append(analyzetest.OrderProps(), analyzetest.Getter("Total", analyzetest.Basic("int64")))...).
		AddType(view, analyzetest.Field("Total", analyzetest.Basic("int64"))).
		AddDeclaration(analyzetest.Directive(view, "Order")).
		Build()

	for m := range plan.Scan(snap) {
		missing, incompatible := Analyze(&m)
		assert.Empty(t, missing)
		assert.Empty(t, incompatible)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	props := []analyze.PropertyDescriptor{
		analyzetest.Field("Note", analyzetest.Basic("string")),
		analyzetest.Field("Status", analyzetest.Basic("int")),
	}

	m1, m2 := model(t, props...), model(t, props...)

	miss1, inc1 := Analyze(m1)
	miss2, inc2 := Analyze(m2)

	assert.Equal(t, miss1, miss2)
	assert.Equal(t, inc1, inc2)
}
