// Package orchestrator drives one compilation request end to end:
// validate and normalise the request, select the module-resolution
// strategy, resolve the import map under its mutual-exclusion rule,
// build the module graph, analyse compiler options, emit, and merge
// graph-level errors into the emission diagnostics in a fixed order.
// Every stage is sequential and fail-fast; no partial result is ever
// returned to the caller.
package orchestrator
