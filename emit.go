package emit

import (
	"context"

	"github.com/goliatone/go-emit/pkg/graph"
	"github.com/goliatone/go-emit/pkg/module"
	"github.com/goliatone/go-emit/pkg/orchestrator"
	"github.com/goliatone/go-emit/pkg/permissions"
)

// Request describes one compilation; aliased from the orchestrator
// package for convenience.
type Request = orchestrator.Request

// Result is the structured value a successful compilation returns.
type Result = orchestrator.Result

// Diagnostic is a non-fatal finding attached to a successful result.
type Diagnostic = graph.Diagnostic

// Permissions is the ambient grant set consulted by the fetch
// provider.
type Permissions = permissions.Permissions

// NewOrchestrator exposes the orchestrator constructor from the
// top-level module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// EmitModule compiles the graph rooted at the request's specifier and
// returns the emitted files, diagnostics, ignored options, and stats.
// It is the simplest entry point for callers that just want one call.
func EmitModule(ctx context.Context, req Request, options ...orchestrator.Option) (*Result, error) {
	gen := orchestrator.New(options...)
	return gen.Emit(ctx, req)
}

// WithUnstableAPIs enables the gated emit operation.
func WithUnstableAPIs() orchestrator.Option {
	return orchestrator.WithUnstableAPIs()
}

// WithPermissions sets the ambient permission set cloned into each
// request's provider.
func WithPermissions(perms Permissions) orchestrator.Option {
	return orchestrator.WithPermissions(perms)
}

// WithProviderOptions configures the fetch provider (filesystem, HTTP
// client, timeouts).
func WithProviderOptions(options ...module.ProviderOption) orchestrator.Option {
	return orchestrator.WithProviderOptions(options...)
}
