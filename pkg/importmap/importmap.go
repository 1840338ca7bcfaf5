// Package importmap parses import maps and resolves bare or relative
// import text against them. A map's identity is the specifier it was
// loaded from, which anchors relative addresses inside the map.
package importmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ImportMap holds the parsed imports and scopes of one map, already
// normalised against its base specifier.
type ImportMap struct {
	base    string
	imports map[string]string
	scopes  map[string]map[string]string
}

type rawMap struct {
	Imports map[string]json.RawMessage            `json:"imports"`
	Scopes  map[string]map[string]json.RawMessage `json:"scopes"`
}

// FromJSON parses raw JSON text into an ImportMap. The base specifier
// is required: relative addresses inside the map resolve against it,
// and a map without an origin has no identity to resolve them from.
func FromJSON(baseSpecifier string, raw []byte) (*ImportMap, error) {
	if strings.TrimSpace(baseSpecifier) == "" {
		return nil, errors.New("importmap: base specifier is required")
	}
	base, err := url.Parse(baseSpecifier)
	if err != nil {
		return nil, fmt.Errorf("importmap: invalid base specifier %q: %w", baseSpecifier, err)
	}

	var parsed rawMap
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("importmap: parse: %w", err)
	}

	imports, err := normaliseEntries(parsed.Imports, base)
	if err != nil {
		return nil, err
	}

	scopes := make(map[string]map[string]string, len(parsed.Scopes))
	for scopeKey, entries := range parsed.Scopes {
		normalised, err := normaliseEntries(entries, base)
		if err != nil {
			return nil, err
		}
		resolvedKey := resolveAddress(scopeKey, base)
		scopes[resolvedKey] = normalised
	}

	return &ImportMap{
		base:    base.String(),
		imports: imports,
		scopes:  scopes,
	}, nil
}

// Base returns the specifier the map was loaded from.
func (m *ImportMap) Base() string {
	return m.base
}

// Resolve maps import text to an absolute specifier. Scopes whose key
// prefixes the referrer win over top-level imports, most specific
// first. The boolean reports whether the map had a matching entry.
func (m *ImportMap) Resolve(specifier, referrer string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, scopeKey := range m.scopeKeysByLength() {
		if strings.HasPrefix(referrer, scopeKey) {
			if mapped, ok := resolveAgainst(m.scopes[scopeKey], specifier); ok {
				return mapped, true
			}
		}
	}
	return resolveAgainst(m.imports, specifier)
}

func (m *ImportMap) scopeKeysByLength() []string {
	keys := make([]string, 0, len(m.scopes))
	for key := range m.scopes {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func resolveAgainst(entries map[string]string, specifier string) (string, bool) {
	if mapped, ok := entries[specifier]; ok {
		return mapped, true
	}
	// Trailing-slash entries remap whole prefixes.
	var bestKey string
	for key := range entries {
		if strings.HasSuffix(key, "/") && strings.HasPrefix(specifier, key) && len(key) > len(bestKey) {
			bestKey = key
		}
	}
	if bestKey == "" {
		return "", false
	}
	return entries[bestKey] + specifier[len(bestKey):], true
}

func normaliseEntries(entries map[string]json.RawMessage, base *url.URL) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for key, raw := range entries {
		var address string
		if err := json.Unmarshal(raw, &address); err != nil {
			return nil, fmt.Errorf("importmap: address for %q must be a string", key)
		}
		if key == "" {
			return nil, errors.New("importmap: empty specifier key")
		}
		if strings.HasSuffix(key, "/") && !strings.HasSuffix(address, "/") {
			return nil, fmt.Errorf("importmap: prefix entry %q must map to a prefix address", key)
		}
		out[key] = resolveAddress(address, base)
	}
	return out, nil
}

func resolveAddress(address string, base *url.URL) string {
	ref, err := url.Parse(address)
	if err != nil {
		return address
	}
	if ref.Scheme != "" {
		return ref.String()
	}
	if strings.HasPrefix(address, "/") ||
		strings.HasPrefix(address, "./") ||
		strings.HasPrefix(address, "../") {
		return base.ResolveReference(ref).String()
	}
	return address
}
