// Package provider implements the two module.Provider strategies: an
// in-memory provider seeded from caller-supplied sources and a
// permissioned fetch provider for file, fs.FS, and HTTP specifiers.
package provider

import (
	"context"
	"fmt"

	"github.com/goliatone/go-emit/pkg/module"
)

// Memory serves modules from a fixed specifier→source map. It never
// falls back to an external fetch: a specifier outside the map is
// module.ErrNotFound, not a network call.
type Memory struct {
	modules map[string]module.Module
}

// Ensure the implementation satisfies the public interface.
var _ module.Provider = (*Memory)(nil)

// NewMemory seeds a provider with exactly the given entries. Keys are
// additionally indexed under their normalised specifier form so a
// caller can seed "/a.ts" and resolve "file:///a.ts".
func NewMemory(sources map[string]string) *Memory {
	modules := make(map[string]module.Module, len(sources))
	for specifier, source := range sources {
		m := module.Module{
			Specifier: specifier,
			MediaType: module.MediaTypeFromSpecifier(specifier),
			Source:    source,
		}
		modules[specifier] = m
		if resolved, err := module.ResolveURLOrPath(specifier); err == nil && resolved != specifier {
			if _, taken := sources[resolved]; !taken {
				resolvedModule := m
				resolvedModule.Specifier = resolved
				modules[resolved] = resolvedModule
			}
		}
	}
	return &Memory{modules: modules}
}

// Resolve looks the specifier up in the seeded map. The dynamic flag is
// ignored: memory resolution is not subject to permission checks.
func (p *Memory) Resolve(ctx context.Context, specifier string, _ bool) (module.Module, error) {
	select {
	case <-ctx.Done():
		return module.Module{}, ctx.Err()
	default:
	}

	m, ok := p.modules[specifier]
	if !ok {
		return module.Module{}, fmt.Errorf("%w: %q", module.ErrNotFound, specifier)
	}
	return m, nil
}
