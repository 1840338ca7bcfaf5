package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-emit/internal/ctxlog"
	"github.com/goliatone/go-emit/pkg/module"
)

// BundleType selects how emitted output is assembled.
type BundleType int

const (
	// BundleNone emits one file per module.
	BundleNone BundleType = iota
	// BundleModule emits a single ESM artifact.
	BundleModule
	// BundleClassic emits a single self-executing script.
	BundleClassic
)

func (b BundleType) String() string {
	switch b {
	case BundleModule:
		return "module"
	case BundleClassic:
		return "classic"
	default:
		return "none"
	}
}

// Graph is one built module graph: the root, every reachable module in
// dependency-first order, and the errors collected while walking.
type Graph struct {
	root    string
	modules map[string]module.Module
	order   []string
	edges   map[string][]string
	errors  []error
	fetched int64
}

// Root returns the root specifier.
func (g *Graph) Root() string { return g.root }

// Modules returns every module in dependency-first order (the root
// last), which is also the order bundlers concatenate in.
func (g *Graph) Modules() []module.Module {
	out := make([]module.Module, 0, len(g.order))
	for _, specifier := range g.order {
		out = append(out, g.modules[specifier])
	}
	return out
}

// Get returns the module for a specifier, if present.
func (g *Graph) Get(specifier string) (module.Module, bool) {
	m, ok := g.modules[specifier]
	return m, ok
}

// Dependencies returns the resolved dependency specifiers of a module.
func (g *Graph) Dependencies(specifier string) []string {
	return g.edges[specifier]
}

// Errors returns graph-level errors: dependencies that could not be
// resolved or fetched. These are non-fatal; they surface as trailing
// diagnostics in the emission result.
func (g *Graph) Errors() []error {
	return g.errors
}

// Emitter turns a built graph into output files. Implementations are
// registered by name; bundle types map onto emitter names.
type Emitter interface {
	Name() string
	Emit(ctx context.Context, g *Graph, opts EmitOptions) (map[string]string, Diagnostics, error)
}

// EmitOptions carries the knobs for one emission pass.
type EmitOptions struct {
	BundleType      BundleType
	Check           bool
	Debug           bool
	CompilerOptions map[string]any
	Emitter         Emitter
}

// ResultInfo accompanies emitted files: ordered diagnostics, options
// that were ignored during analysis, and compilation stats.
type ResultInfo struct {
	Diagnostics    Diagnostics
	IgnoredOptions []string
	Stats          Stats
}

// Emit runs one emission pass over the graph. Check diagnostics come
// first, then whatever the emitter reports; graph errors are the
// caller's to append. A nil emitter is a configuration fault, not a
// diagnostic.
func (g *Graph) Emit(ctx context.Context, opts EmitOptions) (map[string]string, ResultInfo, error) {
	if opts.Emitter == nil {
		return nil, ResultInfo{}, errors.New("graph: emitter is required")
	}
	started := time.Now()
	logger := ctxlog.FromContext(ctx)

	var diagnostics Diagnostics
	if opts.Check {
		diagnostics = g.checkModules()
	}

	if opts.Debug {
		logger.Debug("emitting graph",
			"root", g.root,
			"modules", len(g.order),
			"bundle", opts.BundleType.String(),
			"emitter", opts.Emitter.Name())
	}

	files, emitDiags, err := opts.Emitter.Emit(ctx, g, opts)
	if err != nil {
		return nil, ResultInfo{}, fmt.Errorf("graph: emit with %q: %w", opts.Emitter.Name(), err)
	}
	diagnostics = append(diagnostics, emitDiags...)

	checkFlag := int64(0)
	if opts.Check {
		checkFlag = 1
	}
	info := ResultInfo{
		Diagnostics: diagnostics,
		Stats: Stats{
			"total files":   int64(len(g.order)),
			"fetched":       g.fetched,
			"emitted files": int64(len(files)),
			"check":         checkFlag,
			"total time":    time.Since(started).Milliseconds(),
		},
	}
	return files, info, nil
}
