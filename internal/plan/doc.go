// Package plan turns mapping directives into MappingModels.
//
// Scanning pipeline, per declaration:
//  1. Syntactic pre-filter: struct declarations that carry markers
//  2. Eligibility: exported, non-generic destination
//  3. Directive: the first marker naming exactly one resolvable source type
//  4. Property sets: writable destination fields, readable source properties
//
// Declarations that fail steps 2 or 3 are skipped without a diagnostic; they
// are outside the generator's contract rather than misuses of it.
package plan
