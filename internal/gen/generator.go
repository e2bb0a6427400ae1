package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"mapgen/internal/analyze"
	"mapgen/internal/common"
	"mapgen/internal/match"
	"mapgen/internal/plan"
)

// DefaultFileSuffix is appended to the snake-cased destination name.
const DefaultFileSuffix = "_mapping_gen.go"

// ErrIncompatible is returned when asked to emit a model that has a property
// without a compatible source. Callers are expected to gate on diagnostics
// first.
var ErrIncompatible = errors.New("model has unmappable properties")

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is used for models without a namespace.
	PackageName string
	// OutputDir overrides the destination package directory when set.
	OutputDir string
	// FileSuffix replaces DefaultFileSuffix when set.
	FileSuffix string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName: "mapping",
		FileSuffix:  DefaultFileSuffix,
	}
}

// Generator renders models into source units.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.PackageName == "" {
		config.PackageName = DefaultGeneratorConfig().PackageName
	}

	if config.FileSuffix == "" {
		config.FileSuffix = DefaultFileSuffix
	}

	return &Generator{config: config}
}

// Config returns the effective configuration.
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// GeneratedUnit is one generated Go source file.
type GeneratedUnit struct {
	// Name is the destination type name.
	Name string
	// Filename is the base name, e.g. "order_dto_mapping_gen.go".
	Filename string
	// Dir is where the file belongs; empty means the working directory.
	Dir string
	// Content is the formatted Go source code.
	Content []byte
}

// Path joins Dir and Filename.
func (u GeneratedUnit) Path() string {
	if u.Dir == "" {
		return u.Filename
	}

	return filepath.Join(u.Dir, u.Filename)
}

// Emit renders m with the default configuration.
func Emit(m *plan.MappingModel) (GeneratedUnit, error) {
	return NewGenerator(DefaultGeneratorConfig()).Emit(m)
}

// Emit renders m. The model must be free of diagnostics.
func (g *Generator) Emit(m *plan.MappingModel) (GeneratedUnit, error) {
	data, err := g.buildTemplateData(m)
	if err != nil {
		return GeneratedUnit{}, fmt.Errorf("generating %s: %w", m, err)
	}

	unit := GeneratedUnit{
		Name:     m.Dest.Name(),
		Filename: common.SnakeCase(m.Dest.Name()) + g.config.FileSuffix,
		Dir:      g.dir(m),
	}

	var buf bytes.Buffer
	if err := mappingTemplate.Execute(&buf, data); err != nil {
		return GeneratedUnit{}, fmt.Errorf("executing template for %s: %w", m, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// Best-effort sidecar so the broken output can be inspected.
		_ = writeDebugUnformatted(unit.Dir, unit.Filename, buf.Bytes())

		unit.Content = buf.Bytes()

		return unit, fmt.Errorf("formatting code for %s: %w (unformatted code returned)", m, err)
	}

	unit.Content = formatted

	return unit, nil
}

func (g *Generator) dir(m *plan.MappingModel) string {
	if g.config.OutputDir != "" {
		return g.config.OutputDir
	}

	return m.Dest.Dir
}

// templateData holds all data needed for the mapping template.
type templateData struct {
	PackageName string
	Imports     []importSpec
	Dest        string
	Src         string
	Assignments []assignmentData
}

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// assignmentData is one destination property assignment.
type assignmentData struct {
	Target string
	// Expr reads the source property, e.g. "src.Id" or "src.Total()".
	Expr string
	// Convert wraps the value in fmt.Sprint.
	Convert bool
	// Guard tests the value for nil before converting.
	Guard bool
	// Deref converts *v instead of v inside the guard.
	Deref bool
}

func (g *Generator) buildTemplateData(m *plan.MappingModel) (*templateData, error) {
	data := &templateData{
		PackageName: m.PkgName,
		Dest:        m.Dest.Name(),
		Src:         m.Src.Name(),
	}

	if data.PackageName == "" {
		data.PackageName = g.config.PackageName
	}

	needFmt := false

	for _, dp := range m.DestProps {
		sp, ok := m.SourceFor(dp.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no source", ErrIncompatible, dp.Name)
		}

		a, err := buildAssignment(dp, sp)
		if err != nil {
			return nil, err
		}

		needFmt = needFmt || a.Convert
		data.Assignments = append(data.Assignments, a)
	}

	if needFmt {
		data.Imports = append(data.Imports, importSpec{Path: "fmt"})
	}

	if !m.SamePackage() && m.Src.ID.PkgPath != "" {
		imp := sourceImport(m, needFmt)
		data.Imports = append(data.Imports, imp)

		qualifier := imp.Alias
		if qualifier == "" {
			qualifier = m.Src.PkgName
		}

		data.Src = qualifier + "." + m.Src.Name()
	}

	slices.SortFunc(data.Imports, func(a, b importSpec) int {
		return strings.Compare(a.Path, b.Path)
	})

	return data, nil
}

func buildAssignment(dp, sp analyze.PropertyDescriptor) (assignmentData, error) {
	a := assignmentData{
		Target: dp.Name,
		Expr:   "src." + sp.Name,
	}

	if sp.Accessor == analyze.AccessorGetter {
		a.Expr += "()"
	}

	switch match.Classify(dp.Type, sp.Type) {
	case match.Identical:
	case match.TextualConversion:
		a.Convert = true
		a.Guard = sp.Type.Nil != analyze.NotNilable
		a.Deref = sp.Type.Nil == analyze.NilablePointer
	default:
		return assignmentData{}, fmt.Errorf("%w: %s (%s) from %s (%s)",
			ErrIncompatible, dp.Name, dp.Type, sp.Name, sp.Type)
	}

	return a, nil
}

// sourceImport picks an import for the source package, aliasing it when the
// package name would clash with the destination package, fmt, or does not
// match the last path element.
func sourceImport(m *plan.MappingModel, needFmt bool) importSpec {
	name := m.Src.PkgName
	if name == "" {
		name = common.PkgAlias(m.Src.ID.PkgPath)
	}

	clash := name == m.PkgName || (needFmt && name == "fmt")
	if clash {
		return importSpec{Alias: "src" + name, Path: m.Src.ID.PkgPath}
	}

	if name != path.Base(m.Src.ID.PkgPath) {
		return importSpec{Alias: name, Path: m.Src.ID.PkgPath}
	}

	return importSpec{Path: m.Src.ID.PkgPath}
}
