// Package graph builds module dependency graphs and drives emission.
// The builder encodes its three-phase protocol in the type system: Add
// yields an Analyzer, analysing compiler options yields an EmitPhase,
// and only the EmitPhase can emit, so no phase can be skipped.
package graph
