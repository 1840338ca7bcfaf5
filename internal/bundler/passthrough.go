package bundler

import (
	"context"
	"fmt"

	"github.com/goliatone/go-emit/pkg/graph"
)

// Passthrough emits one JavaScript file per emittable module, keyed by
// the module specifier with a .js suffix. Non-emittable modules
// (declaration files, JSON) are skipped with an informational
// diagnostic.
type Passthrough struct{}

var _ graph.Emitter = Passthrough{}

// Name identifies the emitter in the registry.
func (Passthrough) Name() string { return "passthrough" }

// Emit transpiles every module independently.
func (Passthrough) Emit(ctx context.Context, g *graph.Graph, _ graph.EmitOptions) (map[string]string, graph.Diagnostics, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	files := make(map[string]string)
	var diagnostics graph.Diagnostics
	for _, m := range g.Modules() {
		if !m.MediaType.Emittable() {
			diagnostics = append(diagnostics, graph.Diagnostic{
				Specifier: m.Specifier,
				Message:   fmt.Sprintf("skipping emit for %s module", m.MediaType),
				Category:  graph.CategoryInfo,
			})
			continue
		}
		files[m.Specifier+".js"] = Transpile(m)
	}
	return files, diagnostics, nil
}
