// Package analyze provides the read-only symbol view the mapping core works on.
//
// The core never touches go/types directly. It queries a SymbolProvider, and
// this package ships two of them:
//   - Snapshot: an immutable in-memory view, built by hand in tests
//   - Loader: an adapter that builds a Snapshot from golang.org/x/tools/go/packages
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeDescriptor: accessibility, generic arity and kind of a named type
//   - PropertyDescriptor: a field or getter with readable/writable flags
//   - Declaration: a syntactic type declaration and its marker comments
package analyze
