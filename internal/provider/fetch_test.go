package provider

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-emit/pkg/module"
	"github.com/goliatone/go-emit/pkg/permissions"
	"github.com/goliatone/go-emit/pkg/testsupport"
)

func TestFetch_ResolveFromFileSystem(t *testing.T) {
	files := fstest.MapFS{
		"src/main.ts": {Data: []byte("export const a = 1;")},
	}
	p := NewFetch(
		module.NewProviderOptions(module.WithFileSystem(files)),
		permissions.AllowAll(), permissions.AllowAll(),
	)

	m, err := p.Resolve(testsupport.Context(), "file:///src/main.ts", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.MediaType != module.MediaTypeTypeScript || m.Source != "export const a = 1;" {
		t.Fatalf("unexpected module %+v", m)
	}
}

func TestFetch_MissingFileIsNotFound(t *testing.T) {
	p := NewFetch(
		module.NewProviderOptions(module.WithFileSystem(fstest.MapFS{})),
		permissions.AllowAll(), permissions.AllowAll(),
	)

	_, err := p.Resolve(testsupport.Context(), "file:///src/missing.ts", false)
	if !errors.Is(err, module.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetch_GrantSelectionByDynamicFlag(t *testing.T) {
	files := fstest.MapFS{
		"src/main.ts": {Data: []byte("export {};")},
	}
	p := NewFetch(
		module.NewProviderOptions(module.WithFileSystem(files)),
		permissions.None(), permissions.AllowAll(),
	)

	if _, err := p.Resolve(testsupport.Context(), "file:///src/main.ts", false); err == nil {
		t.Fatalf("static grant should deny the read")
	}
	if _, err := p.Resolve(testsupport.Context(), "file:///src/main.ts", true); err != nil {
		t.Fatalf("dynamic grant should allow the read: %v", err)
	}
}

func TestFetch_HTTPResolution(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mod.ts":
			w.Header().Set("Content-Type", "application/typescript")
			_, _ = w.Write([]byte("export const remote = true;"))
		case "/broken.ts":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := NewFetch(
		module.NewProviderOptions(module.WithHTTPClient(server.Client())),
		permissions.AllowAll(), permissions.AllowAll(),
	)

	m, err := p.Resolve(testsupport.Context(), server.URL+"/mod.ts", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.MediaType != module.MediaTypeTypeScript {
		t.Fatalf("media type = %s", m.MediaType)
	}
	if m.Source != "export const remote = true;" {
		t.Fatalf("source = %q", m.Source)
	}

	if _, err := p.Resolve(testsupport.Context(), server.URL+"/missing.ts", false); !errors.Is(err, module.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for 404, got %v", err)
	}
	if _, err := p.Resolve(testsupport.Context(), server.URL+"/broken.ts", false); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestFetch_HTTPDisabledByDefault(t *testing.T) {
	p := NewFetch(module.NewProviderOptions(), permissions.AllowAll(), permissions.AllowAll())

	_, err := p.Resolve(testsupport.Context(), "https://deno.land/x/mod.ts", false)
	if err == nil || !strings.Contains(err.Error(), "http support disabled") {
		t.Fatalf("expected http-disabled error, got %v", err)
	}
}

func TestFetch_NetworkPermissionDenied(t *testing.T) {
	p := NewFetch(
		module.NewProviderOptions(module.WithHTTPFallback(0)),
		permissions.Permissions{AllowNet: []string{"deno.land"}},
		permissions.Permissions{AllowNet: []string{"deno.land"}},
	)

	_, err := p.Resolve(testsupport.Context(), "https://evil.test/mod.ts", false)
	if err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected permission denial, got %v", err)
	}
}
