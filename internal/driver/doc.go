// Package driver runs the scan, analyze, report and emit pipeline over a
// symbol snapshot.
//
// Models are evaluated independently and in parallel; results are merged in
// declaration order, so output does not depend on scheduling.
package driver
