// Package gen renders mapping functions for analyzed models.
//
// Output is produced with text/template and normalized with go/format, so the
// same model always yields byte-identical source. Each unit contains:
//   - a hook type <Dest>MapHook
//   - the mapping function To<Dest>
//   - the extension point onAfterMap<Dest> that runs the hooks
package gen
