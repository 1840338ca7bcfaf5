// Package permissions models the ambient permission set consulted by
// the fetch provider. Permission sets are explicit values passed into
// constructors, never shared mutable state; Clone produces the
// per-request copies the orchestrator hands to each provider slot.
package permissions

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Permissions is a closed grant set: either everything, or explicit
// net-host and read-path allowlists.
type Permissions struct {
	All       bool
	AllowNet  []string
	AllowRead []string
}

// AllowAll returns a grant set that permits every specifier.
func AllowAll() Permissions {
	return Permissions{All: true}
}

// None returns an empty grant set that denies every specifier.
func None() Permissions {
	return Permissions{}
}

// Clone copies the permission set so per-request mutations (or future
// grant revocations) never leak across requests.
func (p Permissions) Clone() Permissions {
	clone := Permissions{All: p.All}
	if len(p.AllowNet) > 0 {
		clone.AllowNet = append([]string(nil), p.AllowNet...)
	}
	if len(p.AllowRead) > 0 {
		clone.AllowRead = append([]string(nil), p.AllowRead...)
	}
	return clone
}

// CheckSpecifier verifies the grant set permits resolving the given
// absolute specifier. The dynamic flag only affects the denial message;
// callers select which grant set to consult before calling.
func (p Permissions) CheckSpecifier(specifier string, dynamic bool) error {
	parsed, err := url.Parse(specifier)
	if err != nil {
		return fmt.Errorf("permissions: invalid specifier %q: %w", specifier, err)
	}

	switch parsed.Scheme {
	case "http", "https":
		if err := p.CheckNet(parsed.Host); err != nil {
			return denial(err, specifier, dynamic)
		}
	case "file":
		if err := p.CheckRead(filepath.FromSlash(parsed.Path)); err != nil {
			return denial(err, specifier, dynamic)
		}
	case "data":
		// Inline payloads carry no external access.
	default:
		return fmt.Errorf("permissions: unsupported scheme %q in %q", parsed.Scheme, specifier)
	}
	return nil
}

// CheckNet verifies network access to a host (optionally host:port).
func (p Permissions) CheckNet(host string) error {
	if p.All {
		return nil
	}
	for _, allowed := range p.AllowNet {
		if hostMatches(allowed, host) {
			return nil
		}
	}
	return fmt.Errorf("permissions: network access to %q denied", host)
}

// CheckRead verifies read access to a filesystem path. Grants cover the
// named path and everything beneath it.
func (p Permissions) CheckRead(path string) error {
	if p.All {
		return nil
	}
	cleaned := filepath.Clean(path)
	for _, allowed := range p.AllowRead {
		prefix := filepath.Clean(allowed)
		if cleaned == prefix || strings.HasPrefix(cleaned, prefix+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("permissions: read access to %q denied", path)
}

func denial(cause error, specifier string, dynamic bool) error {
	if dynamic {
		return fmt.Errorf("permissions: dynamic import of %q denied: %w", specifier, cause)
	}
	return fmt.Errorf("permissions: import of %q denied: %w", specifier, cause)
}

func hostMatches(allowed, host string) bool {
	if allowed == host {
		return true
	}
	// A grant without a port covers every port on that host.
	if !strings.Contains(allowed, ":") {
		if idx := strings.LastIndex(host, ":"); idx > 0 {
			return allowed == host[:idx]
		}
	}
	return false
}
