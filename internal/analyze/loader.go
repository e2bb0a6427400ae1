package analyze

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/tools/go/packages"

	"mapgen/internal/logging"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Loader builds a Snapshot from Go packages.
type Loader struct {
	// Dir is the working directory for package resolution; empty means the
	// current directory.
	Dir string
	// BuildTags are passed to the go command as -tags.
	BuildTags []string
	// Directive is the marker whose argument names a type to load.
	Directive string
	Logger    logging.Logger

	fset    *token.FileSet
	builder *SnapshotBuilder
	// known holds every types.Package that marker arguments may refer to.
	known map[string]*types.Package
	dirs  map[string]string
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, Directive: DefaultDirective, Logger: logging.NopLogger{}}
}

// Load loads the packages matching patterns and returns their snapshot.
// Patterns are standard Go package patterns (e.g., "./...", "mapgen/examples/orders").
func (l *Loader) Load(ctx context.Context, patterns ...string) (*Snapshot, error) {
	l.fset = token.NewFileSet()
	l.builder = NewSnapshotBuilder()
	l.known = make(map[string]*types.Package)
	l.dirs = make(map[string]string)

	pkgs, err := l.loadPackages(ctx, patterns, true)
	if err != nil {
		return nil, err
	}

	for _, pkg := range pkgs {
		l.indexPackage(pkg)
	}

	var pending []pendingDecl

	for _, pkg := range pkgs {
		pending = append(pending, l.collectDeclarations(pkg)...)
	}

	if err := l.loadMissingPackages(ctx, pending); err != nil {
		return nil, err
	}

	for _, p := range pending {
		l.registerMarkerTargets(p)
		l.builder.AddDeclaration(p.decl)
	}

	l.Logger.Debug(ctx, "packages loaded",
		"patterns", strings.Join(patterns, ","),
		"packages", len(pkgs),
		"declarations", len(pending))

	return l.builder.Build(), nil
}

// loadPackages loads patterns. When strict is false, packages with errors
// are dropped instead of failing the load.
func (l *Loader) loadPackages(ctx context.Context, patterns []string, strict bool) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode:    LoadMode,
		Context: ctx,
		Dir:     l.Dir,
		Fset:    l.fset,
	}

	if len(l.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(l.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var (
		errs []error
		ok   []*packages.Package
	)

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}

		if len(pkg.Errors) == 0 && pkg.Types != nil {
			ok = append(ok, pkg)
		}
	}

	if len(errs) > 0 {
		if strict {
			return nil, fmt.Errorf("package errors: %v", errs)
		}

		l.Logger.Debug(ctx, "skipping packages with errors", "errors", len(errs))

		pkgs = ok
	}

	sort.Slice(pkgs, func(i, j int) bool {
		return pkgs[i].PkgPath < pkgs[j].PkgPath
	})

	return pkgs, nil
}

// indexPackage registers every named type declared at package scope.
// Unexported types are registered too; the scanner decides eligibility.
func (l *Loader) indexPackage(pkg *packages.Package) {
	l.known[pkg.PkgPath] = pkg.Types
	l.dirs[pkg.PkgPath] = packageDir(pkg)

	for _, imp := range pkg.Types.Imports() {
		if _, ok := l.known[imp.Path()]; !ok {
			l.known[imp.Path()] = imp
		}
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		if tn, ok := scope.Lookup(name).(*types.TypeName); ok {
			l.registerType(tn)
		}
	}
}

type pendingDecl struct {
	decl Declaration
}

// collectDeclarations walks files in name order and returns every type
// declaration that has at least one marker.
func (l *Loader) collectDeclarations(pkg *packages.Package) []pendingDecl {
	files := slices.Clone(pkg.Syntax)
	sort.Slice(files, func(i, j int) bool {
		return l.fset.File(files[i].Pos()).Name() < l.fset.File(files[j].Pos()).Name()
	})

	var out []pendingDecl

	for _, file := range files {
		imports := l.fileImports(pkg.Types, file)

		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil && !gd.Lparen.IsValid() {
					doc = gd.Doc
				}

				markers, comments := markerComments(doc)
				if len(markers) == 0 {
					continue
				}

				for i, c := range comments {
					markers[i].Location = l.location(c.Pos())
				}

				_, isStruct := ts.Type.(*ast.StructType)

				out = append(out, pendingDecl{
					decl: Declaration{
						Type:    TypeID{PkgPath: pkg.PkgPath, Name: ts.Name.Name},
						Struct:  isStruct && !ts.Assign.IsValid(),
						Markers: markers,
						Imports: imports,
					},
				})
			}
		}
	}

	return out
}

// fileImports maps the names a file can use for its imports to their paths.
// Blank and dot imports are reachable by full path only.
func (l *Loader) fileImports(pkg *types.Package, file *ast.File) map[string]string {
	out := make(map[string]string, len(file.Imports))

	for _, spec := range file.Imports {
		path := strings.Trim(spec.Path.Value, `"`)

		if spec.Name != nil {
			if spec.Name.Name != "_" && spec.Name.Name != "." {
				out[spec.Name.Name] = path
			}

			continue
		}

		name := l.packageName(pkg, path)
		out[name] = path
	}

	return out
}

func (l *Loader) packageName(pkg *types.Package, path string) string {
	for _, imp := range pkg.Imports() {
		if imp.Path() == path {
			return imp.Name()
		}
	}

	return filepath.Base(path)
}

// loadMissingPackages loads packages named by full path in marker arguments
// that are neither matched by the patterns nor imported by them.
func (l *Loader) loadMissingPackages(ctx context.Context, pending []pendingDecl) error {
	missing := map[string]struct{}{}

	for _, p := range pending {
		for _, m := range p.decl.MarkersNamed(l.Directive) {
			if len(m.Args) != 1 {
				continue
			}

			id, ok := ParseTypeArg(p.decl, m.Args[0], l.isKnown)
			if !ok || l.isKnown(id.PkgPath) {
				continue
			}

			missing[id.PkgPath] = struct{}{}
		}
	}

	if len(missing) == 0 {
		return nil
	}

	paths := make([]string, 0, len(missing))
	for p := range missing {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	l.Logger.Debug(ctx, "loading packages referenced by markers", "paths", strings.Join(paths, ","))

	extra, err := l.loadPackages(ctx, paths, false)
	if err != nil {
		return fmt.Errorf("loading marker packages: %w", err)
	}

	for _, pkg := range extra {
		l.known[pkg.PkgPath] = pkg.Types
		l.dirs[pkg.PkgPath] = packageDir(pkg)
	}

	return nil
}

func (l *Loader) isKnown(path string) bool {
	_, ok := l.known[path]
	return ok
}

// registerMarkerTargets makes sure the types named by single-argument
// directive markers are present in the snapshot. Unresolvable arguments are
// left for the scanner to skip.
func (l *Loader) registerMarkerTargets(p pendingDecl) {
	for _, m := range p.decl.MarkersNamed(l.Directive) {
		if len(m.Args) != 1 {
			continue
		}

		id, ok := ParseTypeArg(p.decl, m.Args[0], l.isKnown)
		if !ok || l.builder.HasType(id) {
			continue
		}

		pkg, ok := l.known[id.PkgPath]
		if !ok {
			continue
		}

		if tn, ok := pkg.Scope().Lookup(id.Name).(*types.TypeName); ok {
			l.registerType(tn)
		}
	}
}

// registerType converts a go/types type name into descriptors.
func (l *Loader) registerType(tn *types.TypeName) {
	if tn.Pkg() == nil {
		return
	}

	id := TypeID{PkgPath: tn.Pkg().Path(), Name: tn.Name()}
	if l.builder.HasType(id) {
		return
	}

	desc := TypeDescriptor{
		ID:       id,
		PkgName:  tn.Pkg().Name(),
		Exported: tn.Exported(),
		Kind:     TypeKindOther,
		Dir:      l.dirs[id.PkgPath],
	}

	named, ok := types.Unalias(tn.Type()).(*types.Named)

	if tn.IsAlias() {
		l.builder.AddType(desc)

		// Aliases of instantiated generics name no declaration.
		if ok && named.Obj().Pkg() != nil && named.TypeArgs().Len() == 0 {
			target := named.Obj()
			l.registerType(target)
			l.builder.AddAlias(id, TypeID{PkgPath: target.Pkg().Path(), Name: target.Name()})
		}

		return
	}

	if !ok {
		l.builder.AddType(desc)
		return
	}

	desc.Arity = named.TypeParams().Len()

	var props []PropertyDescriptor

	if st, ok := named.Underlying().(*types.Struct); ok {
		desc.Kind = TypeKindStruct
		props = l.fieldProperties(st)
	}

	if desc.Arity == 0 {
		props = append(props, l.getterProperties(named)...)
	}

	l.builder.AddType(desc, props...)
}

// fieldProperties returns struct fields in declaration order. A Go field is
// both readable and writable.
func (l *Loader) fieldProperties(st *types.Struct) []PropertyDescriptor {
	props := make([]PropertyDescriptor, 0, st.NumFields())

	for i := range st.NumFields() {
		field := st.Field(i)

		props = append(props, PropertyDescriptor{
			Name:     field.Name(),
			Type:     typeRef(field.Type()),
			Exported: field.Exported(),
			Readable: true,
			Writable: true,
			Accessor: AccessorField,
			Location: l.location(field.Pos()),
		})
	}

	return props
}

// getterProperties returns methods shaped like getters: no parameters and
// exactly one result. The method set of *T is used, so pointer receivers
// count; method sets are sorted by name.
func (l *Loader) getterProperties(named *types.Named) []PropertyDescriptor {
	mset := types.NewMethodSet(types.NewPointer(named))

	var props []PropertyDescriptor

	for i := range mset.Len() {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}

		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 || sig.Variadic() {
			continue
		}

		props = append(props, PropertyDescriptor{
			Name:     fn.Name(),
			Type:     typeRef(sig.Results().At(0).Type()),
			Exported: fn.Exported(),
			Readable: true,
			Accessor: AccessorGetter,
			Location: l.location(fn.Pos()),
		})
	}

	return props
}

func (l *Loader) location(pos token.Pos) Location {
	if !pos.IsValid() {
		return Location{}
	}

	p := l.fset.Position(pos)

	line, err := safecast.Conv[uint32](p.Line)
	if err != nil {
		return Location{File: p.Filename}
	}

	col, err := safecast.Conv[uint32](p.Column)
	if err != nil {
		col = 0
	}

	return Location{File: p.Filename, Line: line, Column: col}
}

// typeRef builds the identity of t. Aliases are resolved so that an alias
// and its target compare equal.
func typeRef(t types.Type) TypeRef {
	t = types.Unalias(t)

	ref := TypeRef{
		ID:      types.TypeString(t, nil),
		Display: types.TypeString(t, (*types.Package).Name),
		Textual: types.Identical(t, types.Typ[types.String]),
	}

	switch t.Underlying().(type) {
	case *types.Pointer:
		ref.Nil = NilablePointer
	case *types.Interface, *types.Map, *types.Slice, *types.Chan, *types.Signature:
		ref.Nil = NilableReference
	}

	return ref
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) > 0 {
		return filepath.Dir(pkg.GoFiles[0])
	}

	return ""
}
