// Package internal provides the core functionality of the tscheck tool.
//
// This package coordinates the checking process: it discovers source
// files, drives the verifier over them and renders the per-file reports
// and the aggregate summary.
//
// Key components:
//
// Engine: the main checking engine. It parses each file, runs the
// bounded verification and collects the verdict, witness and timing
// into a Report.
//
// Watcher: a filesystem watcher that re-checks source files as they
// change, for use during development.
//
// The printing helpers format reports for terminal output, coloring
// verdicts and rendering solver witnesses in a stable order.
//
// Usage:
//
//	engine := internal.NewEngine(verify.DefaultOptions())
//	report := engine.Check(ctx, "path/to/file.tinyscript")
//	fmt.Print(internal.FormatReport(report))
//
// This package is intended for internal use within the tool; the public
// surface lives in the check package.
package internal
