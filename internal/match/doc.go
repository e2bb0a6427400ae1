// Package match decides whether destination properties can be filled from a
// source type.
//
// Key functions:
//   - Classify: the compatibility verdict for a destination/source type pair
//   - Analyze: MissingProperty and IncompatibleType diagnostics for a model
//   - Levenshtein: edit distance, used for "did you mean" notes
package match
