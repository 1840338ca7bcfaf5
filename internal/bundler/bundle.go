package bundler

import (
	"context"
	"embed"
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-emit/pkg/graph"
	"github.com/goliatone/go-emit/pkg/module"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

// BundleSpecifier keys the single artifact a bundle emission produces.
const BundleSpecifier = "emit:///bundle.js"

// Bundle concatenates the graph's modules in dependency order into a
// single artifact wrapped by a template. The classic flavour wraps the
// body in a self-executing function; the module flavour keeps the root
// module's exports so the artifact stays an ES module.
//
// Bundling here is deliberately naive: static import statements are
// stripped because their targets are inlined earlier in the same
// scope, so renamed imports and name collisions across modules are the
// caller's responsibility.
type Bundle struct {
	name        string
	keepExports bool
	template    *pongo2.Template
}

var _ graph.Emitter = (*Bundle)(nil)

// NewClassic constructs the classic-bundle emitter.
func NewClassic() (*Bundle, error) {
	return newBundle("classic", "templates/classic.js.tpl", false)
}

// NewModule constructs the module-bundle emitter.
func NewModule() (*Bundle, error) {
	return newBundle("module", "templates/module.js.tpl", true)
}

func newBundle(name, templatePath string, keepExports bool) (*Bundle, error) {
	set := pongo2.NewSet("emit", pongo2.NewFSLoader(templatesFS))
	tpl, err := set.FromFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("bundler: load template %q: %w", templatePath, err)
	}
	return &Bundle{name: name, keepExports: keepExports, template: tpl}, nil
}

// Name identifies the emitter in the registry.
func (b *Bundle) Name() string { return b.name }

// Emit renders the bundle wrapper around the prepared module bodies.
func (b *Bundle) Emit(ctx context.Context, g *graph.Graph, _ graph.EmitOptions) (map[string]string, graph.Diagnostics, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	var diagnostics graph.Diagnostics
	var entries []map[string]any
	root := g.Root()
	for _, m := range g.Modules() {
		if !m.MediaType.Emittable() {
			diagnostics = append(diagnostics, graph.Diagnostic{
				Specifier: m.Specifier,
				Message:   fmt.Sprintf("skipping bundle inclusion for %s module", m.MediaType),
				Category:  graph.CategoryInfo,
			})
			continue
		}
		keep := b.keepExports && m.Specifier == root
		entries = append(entries, map[string]any{
			"specifier": m.Specifier,
			"body":      prepareModuleBody(m, keep),
		})
	}

	out, err := b.template.Execute(pongo2.Context{
		"modules": entries,
		"root":    root,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("bundler: render %s bundle: %w", b.name, err)
	}

	return map[string]string{BundleSpecifier: out}, diagnostics, nil
}

// prepareModuleBody transpiles a module and rewrites it for inline
// concatenation: static imports vanish (their targets precede the
// module in the bundle) and export keywords are stripped unless the
// module keeps its exports.
func prepareModuleBody(m module.Module, keepExports bool) string {
	src := Transpile(m)
	src = stripStaticImports(src)
	if !keepExports {
		src = stripExports(src)
	}
	return src
}

func stripStaticImports(src string) string {
	var cuts []cut
	for _, imp := range graph.ScanImports(src) {
		if imp.Dynamic {
			continue
		}
		cuts = append(cuts, cut{start: imp.Start, end: imp.End})
	}
	return applyCuts(src, cuts)
}

// stripExports removes export syntax while keeping the declarations:
// `export const x` becomes `const x`, `export default expr` becomes an
// expression statement, and bare `export {...}` lists disappear.
func stripExports(src string) string {
	var cuts []cut
	w := newWalker(src)
	for !w.eof() {
		if w.skipTrivia() {
			continue
		}
		start := w.pos
		if w.readWord() != "export" {
			w.advance()
			continue
		}
		w.skipSpace()
		switch {
		case w.peek() == '{':
			w.skipToSemicolon()
			cuts = append(cuts, cut{start: start, end: w.pos})
		default:
			save := w.pos
			if w.readWord() == "default" {
				w.skipSpace()
				cuts = append(cuts, cut{start: start, end: w.pos})
			} else {
				w.pos = save
				cuts = append(cuts, cut{start: start, end: save})
			}
		}
	}
	return applyCuts(src, cuts)
}
