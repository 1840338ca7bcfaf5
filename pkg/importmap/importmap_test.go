package importmap_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-emit/pkg/importmap"
)

const mapBase = "file:///src/import_map.json"

func mustMap(t *testing.T, raw string) *importmap.ImportMap {
	t.Helper()
	m, err := importmap.FromJSON(mapBase, []byte(raw))
	if err != nil {
		t.Fatalf("parse import map: %v", err)
	}
	return m
}

func TestFromJSON_BaseIsRequired(t *testing.T) {
	if _, err := importmap.FromJSON("  ", []byte(`{}`)); err == nil {
		t.Fatalf("expected error for missing base specifier")
	}
}

func TestFromJSON_AddressMustBeString(t *testing.T) {
	_, err := importmap.FromJSON(mapBase, []byte(`{"imports":{"lodash":42}}`))
	if err == nil || !strings.Contains(err.Error(), "must be a string") {
		t.Fatalf("expected string-address error, got %v", err)
	}
}

func TestFromJSON_PrefixKeysNeedPrefixAddresses(t *testing.T) {
	_, err := importmap.FromJSON(mapBase, []byte(`{"imports":{"lodash/":"https://cdn.test/lodash.js"}}`))
	if err == nil || !strings.Contains(err.Error(), "prefix") {
		t.Fatalf("expected prefix-entry error, got %v", err)
	}
}

func TestFromJSON_MalformedJSON(t *testing.T) {
	if _, err := importmap.FromJSON(mapBase, []byte(`{"imports"`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResolve_ExactEntry(t *testing.T) {
	m := mustMap(t, `{"imports":{"greet":"https://cdn.test/greet.ts"}}`)

	got, ok := m.Resolve("greet", "file:///src/main.ts")
	if !ok || got != "https://cdn.test/greet.ts" {
		t.Fatalf("resolve greet = (%q, %v)", got, ok)
	}
	if _, ok := m.Resolve("lodash", "file:///src/main.ts"); ok {
		t.Fatalf("unmapped specifier should miss")
	}
}

func TestResolve_RelativeAddressesAnchorAtBase(t *testing.T) {
	m := mustMap(t, `{"imports":{"greet":"./vendor/greet.ts"}}`)

	got, ok := m.Resolve("greet", "file:///src/main.ts")
	if !ok || got != "file:///src/vendor/greet.ts" {
		t.Fatalf("resolve greet = (%q, %v)", got, ok)
	}
}

func TestResolve_TrailingSlashRemapsPrefixes(t *testing.T) {
	m := mustMap(t, `{"imports":{"std/":"https://deno.land/std@0.90.0/"}}`)

	got, ok := m.Resolve("std/fmt/colors.ts", "file:///src/main.ts")
	if !ok || got != "https://deno.land/std@0.90.0/fmt/colors.ts" {
		t.Fatalf("resolve std/fmt/colors.ts = (%q, %v)", got, ok)
	}
}

func TestResolve_ScopesWinOverImports(t *testing.T) {
	m := mustMap(t, `{
		"imports": {"greet": "https://cdn.test/greet-v1.ts"},
		"scopes": {
			"file:///src/legacy/": {"greet": "https://cdn.test/greet-v0.ts"}
		}
	}`)

	got, ok := m.Resolve("greet", "file:///src/legacy/app.ts")
	if !ok || got != "https://cdn.test/greet-v0.ts" {
		t.Fatalf("scoped resolve = (%q, %v)", got, ok)
	}

	got, ok = m.Resolve("greet", "file:///src/main.ts")
	if !ok || got != "https://cdn.test/greet-v1.ts" {
		t.Fatalf("top-level resolve = (%q, %v)", got, ok)
	}
}

func TestResolve_MostSpecificScopeWins(t *testing.T) {
	m := mustMap(t, `{
		"imports": {},
		"scopes": {
			"file:///src/": {"greet": "https://cdn.test/greet-v1.ts"},
			"file:///src/legacy/": {"greet": "https://cdn.test/greet-v0.ts"}
		}
	}`)

	got, ok := m.Resolve("greet", "file:///src/legacy/app.ts")
	if !ok || got != "https://cdn.test/greet-v0.ts" {
		t.Fatalf("longest scope should win, got (%q, %v)", got, ok)
	}
}

func TestResolve_NilMapMissesSafely(t *testing.T) {
	var m *importmap.ImportMap
	if _, ok := m.Resolve("greet", "file:///src/main.ts"); ok {
		t.Fatalf("nil map must resolve nothing")
	}
}

func TestBase(t *testing.T) {
	m := mustMap(t, `{}`)
	if m.Base() != mapBase {
		t.Fatalf("base = %q, want %q", m.Base(), mapBase)
	}
}
