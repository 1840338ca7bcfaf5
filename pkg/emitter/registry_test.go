package emitter_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emit/pkg/emitter"
	"github.com/goliatone/go-emit/pkg/graph"
)

type namedEmitter string

func (e namedEmitter) Name() string { return string(e) }

func (e namedEmitter) Emit(context.Context, *graph.Graph, graph.EmitOptions) (map[string]string, graph.Diagnostics, error) {
	return nil, nil, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := emitter.NewRegistry()
	if err := registry.Register(namedEmitter("passthrough")); err != nil {
		t.Fatalf("register: %v", err)
	}

	e, err := registry.Get("passthrough")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Name() != "passthrough" {
		t.Fatalf("unexpected emitter %q", e.Name())
	}
}

func TestRegistry_DuplicateNamesAreRejected(t *testing.T) {
	registry := emitter.NewRegistry()
	if err := registry.Register(namedEmitter("classic")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(namedEmitter("classic")); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_NilAndUnnamedEmitters(t *testing.T) {
	registry := emitter.NewRegistry()
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected error for nil emitter")
	}
	if err := registry.Register(namedEmitter("")); err == nil {
		t.Fatalf("expected error for unnamed emitter")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	registry := emitter.NewRegistry()
	if _, err := registry.Get("missing"); err == nil {
		t.Fatalf("expected error for unknown emitter")
	}
}

func TestRegistry_ListIsSorted(t *testing.T) {
	registry := emitter.NewRegistry()
	for _, name := range []string{"module", "classic", "passthrough"} {
		registry.MustRegister(namedEmitter(name))
	}

	want := []string{"classic", "module", "passthrough"}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has("classic") || registry.Has("iife") {
		t.Fatalf("has reported wrong membership")
	}
}

func TestRegistry_MustRegisterPanicsOnDuplicate(t *testing.T) {
	registry := emitter.NewRegistry()
	registry.MustRegister(namedEmitter("module"))

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate MustRegister")
		}
	}()
	registry.MustRegister(namedEmitter("module"))
}
