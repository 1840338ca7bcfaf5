package orchestrator

import "github.com/goliatone/go-emit/pkg/graph"

// Request describes one compilation. Only RootSpecifier is required.
type Request struct {
	// Bundle selects output assembly: "" (one file per module),
	// "module", or "classic".
	Bundle string `json:"bundle,omitempty"`

	// Check toggles the validation pass. Nil means true.
	Check *bool `json:"check,omitempty"`

	// CompilerOptions carries raw user options; unknown keys are
	// reported back as ignored, not rejected.
	CompilerOptions map[string]any `json:"compilerOptions,omitempty"`

	// ImportMap is an inline import-map value. When set, ImportMapPath
	// must also be set: the path is the map's identity and the base for
	// relative addresses inside it.
	ImportMap any `json:"importMap,omitempty"`

	// ImportMapPath locates the import map. With no inline value the
	// path is fetched through the active provider.
	ImportMapPath string `json:"importMapPath,omitempty"`

	// RootSpecifier is the module the graph grows from.
	RootSpecifier string `json:"rootSpecifier"`

	// Sources seeds in-memory resolution. When present, no specifier
	// outside this map is ever fetched externally.
	Sources map[string]string `json:"sources,omitempty"`
}

// Result is the single structured value a successful compilation
// returns. It is owned entirely by the caller.
type Result struct {
	// Diagnostics holds emission diagnostics first, then graph-level
	// errors, in that fixed order.
	Diagnostics graph.Diagnostics `json:"diagnostics"`

	// Files maps emitted specifiers to their emitted text.
	Files map[string]string `json:"files"`

	// IgnoredOptions lists user compiler options that were not
	// recognised; nil when every option was known.
	IgnoredOptions []string `json:"ignoredOptions"`

	// Stats carries opaque counters and timings.
	Stats graph.Stats `json:"stats"`
}

// Bundle mode names accepted by Request.Bundle.
const (
	BundleModeModule  = "module"
	BundleModeClassic = "classic"
)
