package bundler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-emit/pkg/graph"
	"github.com/goliatone/go-emit/pkg/module"
	"github.com/goliatone/go-emit/pkg/testsupport"
)

type fixtureProvider map[string]string

func (p fixtureProvider) Resolve(_ context.Context, specifier string, _ bool) (module.Module, error) {
	src, ok := p[specifier]
	if !ok {
		return module.Module{}, fmt.Errorf("%w: %q", module.ErrNotFound, specifier)
	}
	return module.Module{
		Specifier: specifier,
		MediaType: module.MediaTypeFromSpecifier(specifier),
		Source:    src,
	}, nil
}

func fixtureGraph(t *testing.T, sources map[string]string, root string) *graph.Graph {
	t.Helper()
	builder := graph.NewBuilder(fixtureProvider(sources), nil)
	analyzer, err := builder.Add(testsupport.Context(), root, false)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	phase, err := analyzer.AnalyzeCompilerOptions(nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return phase.Graph()
}

var bundleSources = map[string]string{
	"file:///src/main.ts":  "import { greet } from \"./greet.ts\";\nexport const message = greet(\"emit\");",
	"file:///src/greet.ts": "export function greet(name: string): string {\n  return \"hi \" + name;\n}",
}

func TestClassicBundle(t *testing.T) {
	em, err := NewClassic()
	if err != nil {
		t.Fatalf("new classic: %v", err)
	}
	if em.Name() != "classic" {
		t.Fatalf("name = %q", em.Name())
	}

	g := fixtureGraph(t, bundleSources, "file:///src/main.ts")
	files, diags, err := em.Emit(testsupport.Context(), g, graph.EmitOptions{})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	body, ok := files[BundleSpecifier]
	if !ok || len(files) != 1 {
		t.Fatalf("expected a single %q artifact, got %v", BundleSpecifier, files)
	}
	if !strings.HasPrefix(body, "(function () {") || !strings.Contains(body, `"use strict"`) {
		t.Fatalf("missing classic wrapper:\n%s", body)
	}
	if strings.Contains(body, "export ") || strings.Contains(body, "import ") {
		t.Fatalf("module syntax leaked into the classic bundle:\n%s", body)
	}
	// Dependency body precedes the root body.
	greetAt := strings.Index(body, "function greet(name)")
	rootAt := strings.Index(body, "const message")
	if greetAt < 0 || rootAt < 0 || greetAt > rootAt {
		t.Fatalf("concatenation order wrong (greet %d, root %d):\n%s", greetAt, rootAt, body)
	}
}

func TestModuleBundleKeepsRootExports(t *testing.T) {
	em, err := NewModule()
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	g := fixtureGraph(t, bundleSources, "file:///src/main.ts")
	files, _, err := em.Emit(testsupport.Context(), g, graph.EmitOptions{})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	body := files[BundleSpecifier]
	if !strings.Contains(body, "export const message") {
		t.Fatalf("root exports were stripped:\n%s", body)
	}
	if !strings.Contains(body, "function greet(name)") || strings.Contains(body, "export function greet") {
		t.Fatalf("dependency exports must be stripped:\n%s", body)
	}
	if strings.Contains(body, "(function () {") {
		t.Fatalf("module bundle carries the classic wrapper:\n%s", body)
	}
}

func TestBundleSkipsNonEmittableModules(t *testing.T) {
	em, err := NewClassic()
	if err != nil {
		t.Fatalf("new classic: %v", err)
	}

	g := fixtureGraph(t, map[string]string{
		"file:///src/main.ts":   "import \"./data.json\";\nexport const a = 1;",
		"file:///src/data.json": `{"fixture":true}`,
	}, "file:///src/main.ts")

	files, diags, err := em.Emit(testsupport.Context(), g, graph.EmitOptions{})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if strings.Contains(files[BundleSpecifier], "fixture") {
		t.Fatalf("json payload leaked into the bundle:\n%s", files[BundleSpecifier])
	}
	if len(diags) != 1 || diags[0].Category != graph.CategoryInfo {
		t.Fatalf("expected one info diagnostic, got %v", diags)
	}
}

func TestBundleHonoursCancelledContext(t *testing.T) {
	em, err := NewClassic()
	if err != nil {
		t.Fatalf("new classic: %v", err)
	}
	g := fixtureGraph(t, bundleSources, "file:///src/main.ts")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := em.Emit(ctx, g, graph.EmitOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestPassthroughEmitsOneFilePerModule(t *testing.T) {
	g := fixtureGraph(t, map[string]string{
		"file:///src/main.ts":   "import \"./greet.ts\";\nimport \"./data.json\";\nexport const a = 1;",
		"file:///src/greet.ts":  "export function greet(name: string) {}",
		"file:///src/data.json": `{"fixture":true}`,
	}, "file:///src/main.ts")

	files, diags, err := Passthrough{}.Emit(testsupport.Context(), g, graph.EmitOptions{})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	greet, ok := files["file:///src/greet.ts.js"]
	if !ok {
		t.Fatalf("missing greet output: %v", files)
	}
	if strings.Contains(greet, ": string") {
		t.Fatalf("annotations survived passthrough:\n%s", greet)
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "Json") {
		t.Fatalf("expected a skip diagnostic for the json module, got %v", diags)
	}
}
