package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-emit/internal/bundler"
	"github.com/goliatone/go-emit/internal/ctxlog"
	internalProvider "github.com/goliatone/go-emit/internal/provider"
	"github.com/goliatone/go-emit/pkg/emitter"
	"github.com/goliatone/go-emit/pkg/graph"
	"github.com/goliatone/go-emit/pkg/importmap"
	"github.com/goliatone/go-emit/pkg/module"
	"github.com/goliatone/go-emit/pkg/permissions"
)

const unstableFeatureName = "emit"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithUnstableAPIs enables the gated emit operation. Without it every
// call fails immediately with FeatureDisabledError.
func WithUnstableAPIs() Option {
	return func(o *Orchestrator) {
		o.unstable = true
	}
}

// WithPermissions sets the ambient permission set. It is cloned twice
// per request — once for statically imported specifiers, once for
// dynamic imports — so no request can mutate the baseline.
func WithPermissions(perms permissions.Permissions) Option {
	return func(o *Orchestrator) {
		o.perms = perms
	}
}

// WithProviderOptions configures how the fetch provider reaches module
// sources (filesystem, HTTP client, timeouts).
func WithProviderOptions(options ...module.ProviderOption) Option {
	return func(o *Orchestrator) {
		o.providerOpts = module.NewProviderOptions(options...)
	}
}

// WithProvider injects a provider used whenever the request carries no
// inline sources, replacing the built-in permissioned fetch provider.
// Requests with Sources still resolve purely from memory.
func WithProvider(p module.Provider) Option {
	return func(o *Orchestrator) {
		o.provider = p
	}
}

// WithEmitterRegistry injects a custom emitter registry.
func WithEmitterRegistry(registry *emitter.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// Orchestrator coordinates the full pipeline from root specifier to
// emitted files. It applies sensible defaults (built-in emitters, no
// permissions) while remaining open to dependency injection.
type Orchestrator struct {
	unstable      bool
	perms         permissions.Permissions
	providerOpts  module.ProviderOptions
	provider      module.Provider
	registry      *emitter.Registry
	initialiseErr error
}

// New constructs an Orchestrator applying any provided options.
// Missing dependencies are initialised with the built-in
// implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.registry != nil {
		return
	}
	o.registry = emitter.NewRegistry()
	o.registry.MustRegister(bundler.Passthrough{})

	classic, err := bundler.NewClassic()
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: default classic emitter: %w", err)
		return
	}
	o.registry.MustRegister(classic)

	moduleBundle, err := bundler.NewModule()
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: default module emitter: %w", err)
		return
	}
	o.registry.MustRegister(moduleBundle)
}

// Emit runs one compilation request through the full pipeline:
// validate, select a provider, resolve the import map, build the
// graph, analyse options, emit, and merge diagnostics. The pipeline is
// strictly linear and fail-fast; no partial result is ever returned.
func (o *Orchestrator) Emit(ctx context.Context, req Request) (*Result, error) {
	// The gate comes first, before any provider or builder exists.
	if !o.unstable {
		return nil, &FeatureDisabledError{Feature: unstableFeatureName}
	}
	if ctx == nil {
		return nil, &ConfigurationError{Reason: "context is required"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	prov := o.selectProvider(req)

	resolvedMap, err := o.resolveImportMap(ctx, req, prov)
	if err != nil {
		return nil, err
	}

	rootSpecifier, err := module.ResolveURLOrPath(req.RootSpecifier)
	if err != nil {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("bad URL (%q) for root specifier", req.RootSpecifier),
		}
	}

	builder := graph.NewBuilder(prov, resolvedMap)
	// Dynamic-import semantics were already applied at the permission
	// level when the provider was constructed; the root itself joins
	// the graph as a static import.
	analyzer, err := builder.Add(ctx, rootSpecifier, false)
	if err != nil {
		return nil, &ResolutionError{Specifier: rootSpecifier}
	}

	emitPhase, err := analyzer.AnalyzeCompilerOptions(req.CompilerOptions)
	if err != nil {
		return nil, &AnalysisError{Reason: err.Error()}
	}

	bundleType, err := bundleTypeFor(req.Bundle)
	if err != nil {
		return nil, err
	}

	em, err := o.registry.Get(emitterNameFor(bundleType))
	if err != nil {
		return nil, &EmitError{Err: err}
	}

	check := true
	if req.Check != nil {
		check = *req.Check
	}

	g := emitPhase.Graph()
	graphErrors := g.Errors()

	files, info, err := emitPhase.Emit(ctx, graph.EmitOptions{
		BundleType:      bundleType,
		Check:           check,
		Debug:           ctxlog.FromContext(ctx).Enabled(ctx, slog.LevelDebug),
		CompilerOptions: req.CompilerOptions,
		Emitter:         em,
	})
	if err != nil {
		return nil, &EmitError{Err: err}
	}

	return &Result{
		Diagnostics:    info.Diagnostics.ExtendGraphErrors(graphErrors),
		Files:          files,
		IgnoredOptions: info.IgnoredOptions,
		Stats:          info.Stats,
	}, nil
}

// selectProvider derives the resolution strategy once per request:
// inline sources mean memory resolution with no external fallback;
// otherwise the permissioned fetch provider applies, with both grant
// slots seeded from the ambient set. A caller invoking emit at runtime
// is behaviourally a dynamic import, so the root must not see a looser
// grant than dynamic imports do.
func (o *Orchestrator) selectProvider(req Request) module.Provider {
	if req.Sources != nil {
		return internalProvider.NewMemory(req.Sources)
	}
	if o.provider != nil {
		return o.provider
	}
	return internalProvider.NewFetch(o.providerOpts, o.perms.Clone(), o.perms.Clone())
}

// resolveImportMap applies the loading protocol: no map, an inline
// value anchored at the path, or a single fetch of the path. An inline
// value without a path is illegal — the map would have no specifier
// identity to resolve relative addresses against.
func (o *Orchestrator) resolveImportMap(ctx context.Context, req Request, prov module.Provider) (*importmap.ImportMap, error) {
	if req.ImportMapPath == "" {
		if req.ImportMap != nil {
			return nil, &ConfigurationError{
				Reason: "an import map value was given without the required path",
			}
		}
		return nil, nil
	}

	mapSpecifier, err := module.ResolveURLOrPath(req.ImportMapPath)
	if err != nil {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("bad URL (%q) for import map", req.ImportMapPath),
		}
	}

	var raw []byte
	if req.ImportMap != nil {
		raw, err = json.Marshal(req.ImportMap)
		if err != nil {
			return nil, &ImportMapError{Specifier: mapSpecifier, Err: err}
		}
	} else {
		m, err := prov.Resolve(ctx, mapSpecifier, true)
		if err != nil {
			return nil, &ImportMapError{Specifier: mapSpecifier, Err: err}
		}
		raw = []byte(m.Source)
	}

	parsed, err := importmap.FromJSON(mapSpecifier, raw)
	if err != nil {
		return nil, &ImportMapError{Specifier: mapSpecifier, Err: err}
	}
	return parsed, nil
}

func bundleTypeFor(mode string) (graph.BundleType, error) {
	switch mode {
	case "":
		return graph.BundleNone, nil
	case BundleModeModule:
		return graph.BundleModule, nil
	case BundleModeClassic:
		return graph.BundleClassic, nil
	default:
		return graph.BundleNone, &ConfigurationError{
			Reason: fmt.Sprintf("unknown bundle mode %q", mode),
		}
	}
}

func emitterNameFor(bundleType graph.BundleType) string {
	switch bundleType {
	case graph.BundleModule:
		return "module"
	case graph.BundleClassic:
		return "classic"
	default:
		return "passthrough"
	}
}
