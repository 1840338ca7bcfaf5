package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-emit/internal/ctxlog"
	"github.com/goliatone/go-emit/pkg/importmap"
	"github.com/goliatone/go-emit/pkg/module"
)

// Builder assembles a module graph from a root specifier. It is
// request-scoped: one provider, one optional import map, one graph.
type Builder struct {
	provider  module.Provider
	importMap *importmap.ImportMap
	graph     *Graph
	added     bool
}

// NewBuilder constructs a fresh builder. The import map may be nil.
func NewBuilder(provider module.Provider, m *importmap.ImportMap) *Builder {
	return &Builder{
		provider:  provider,
		importMap: m,
		graph: &Graph{
			modules: make(map[string]module.Module),
			edges:   make(map[string][]string),
		},
	}
}

// Add walks the graph from the root specifier. A root that cannot be
// resolved or fetched fails the whole build; dependency failures are
// recorded as graph errors and do not stop the walk. On success the
// returned Analyzer unlocks the next phase.
func (b *Builder) Add(ctx context.Context, rootSpecifier string, dynamic bool) (*Analyzer, error) {
	if b.added {
		return nil, errors.New("graph: root already added")
	}
	b.added = true
	b.graph.root = rootSpecifier

	root, err := b.fetch(ctx, rootSpecifier, dynamic)
	if err != nil {
		return nil, fmt.Errorf("graph: add root %q: %w", rootSpecifier, err)
	}

	visited := map[string]bool{rootSpecifier: true}
	b.walk(ctx, root, visited)
	return &Analyzer{builder: b}, nil
}

// walk records the module, then resolves and visits its dependencies
// depth-first so the graph order is dependency-first with the root
// last.
func (b *Builder) walk(ctx context.Context, m module.Module, visited map[string]bool) {
	logger := ctxlog.FromContext(ctx)

	var deps []string
	for _, imp := range ScanImports(m.Source) {
		if imp.TypeOnly {
			continue
		}
		resolved, err := b.resolve(imp.Specifier, m.Specifier)
		if err != nil {
			b.graph.errors = append(b.graph.errors,
				fmt.Errorf("cannot resolve %q from %q: %w", imp.Specifier, m.Specifier, err))
			continue
		}
		deps = append(deps, resolved)

		if visited[resolved] {
			continue
		}
		visited[resolved] = true

		dep, err := b.fetch(ctx, resolved, imp.Dynamic)
		if err != nil {
			logger.Debug("dependency fetch failed", "specifier", resolved, "referrer", m.Specifier)
			b.graph.errors = append(b.graph.errors,
				fmt.Errorf("cannot load %q imported from %q: %w", resolved, m.Specifier, err))
			continue
		}
		b.walk(ctx, dep, visited)
	}

	b.graph.edges[m.Specifier] = deps
	b.graph.modules[m.Specifier] = m
	b.graph.order = append(b.graph.order, m.Specifier)
}

func (b *Builder) resolve(specifier, referrer string) (string, error) {
	if mapped, ok := b.importMap.Resolve(specifier, referrer); ok {
		return module.ResolveImport(mapped, b.importMap.Base())
	}
	return module.ResolveImport(specifier, referrer)
}

func (b *Builder) fetch(ctx context.Context, specifier string, dynamic bool) (module.Module, error) {
	m, err := b.provider.Resolve(ctx, specifier, dynamic)
	if err != nil {
		return module.Module{}, err
	}
	b.graph.fetched++
	return m, nil
}

// Analyzer is the second phase: compiler-option analysis. It exists
// only after the root was added successfully.
type Analyzer struct {
	builder *Builder
}

// AnalyzeCompilerOptions validates the caller's raw options. Unknown
// keys are collected as ignored options (reported, non-fatal); values
// of the wrong kind fail the build. On success the returned EmitPhase
// unlocks emission.
func (a *Analyzer) AnalyzeCompilerOptions(options map[string]any) (*EmitPhase, error) {
	ignored, err := analyzeCompilerOptions(options)
	if err != nil {
		return nil, err
	}
	return &EmitPhase{builder: a.builder, ignored: ignored}, nil
}

// EmitPhase is the final phase: the graph is built and the options are
// analysed, so emission may run.
type EmitPhase struct {
	builder *Builder
	ignored []string
}

// Graph exposes the built graph for error inspection before emission.
func (p *EmitPhase) Graph() *Graph {
	return p.builder.graph
}

// Emit runs the graph's emission pass and attaches the ignored options
// recorded during analysis.
func (p *EmitPhase) Emit(ctx context.Context, opts EmitOptions) (map[string]string, ResultInfo, error) {
	files, info, err := p.builder.graph.Emit(ctx, opts)
	if err != nil {
		return nil, ResultInfo{}, err
	}
	if len(p.ignored) > 0 {
		info.IgnoredOptions = append([]string(nil), p.ignored...)
	}
	return files, info, nil
}
