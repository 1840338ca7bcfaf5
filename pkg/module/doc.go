// Package module exposes the public contracts for module resolution:
// specifier normalisation, media-type inference, and the Provider
// interface the graph builder consumes. Implementations live under
// internal/provider to keep fetch mechanics hidden from consumers.
package module
