package module

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrBareSpecifier marks import text that is neither a URL nor a
// relative/absolute path and therefore needs an import map to resolve.
var ErrBareSpecifier = errors.New("module: bare specifier requires an import map")

// ResolveURLOrPath normalises caller-supplied specifier text into an
// absolute specifier. Text that parses as a URL with a scheme is kept
// as-is; anything else is treated as a filesystem path, made absolute
// against the working directory, and converted to a file URL.
func ResolveURLOrPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("module: specifier is required")
	}

	if hasScheme(trimmed) {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return "", fmt.Errorf("module: invalid URL %q: %w", trimmed, err)
		}
		return parsed.String(), nil
	}

	abs := trimmed
	if !filepath.IsAbs(abs) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("module: resolve working directory: %w", err)
		}
		abs = filepath.Join(cwd, abs)
	}
	return fileURL(abs), nil
}

// ResolveImport resolves import text found in a module body against the
// referrer specifier. URLs pass through, relative and root-relative
// paths resolve against the referrer, and bare specifiers fail with
// ErrBareSpecifier so the caller can consult an import map first.
func ResolveImport(specifier, referrer string) (string, error) {
	if specifier == "" {
		return "", errors.New("module: import specifier is empty")
	}

	if hasScheme(specifier) {
		parsed, err := url.Parse(specifier)
		if err != nil {
			return "", fmt.Errorf("module: invalid URL %q: %w", specifier, err)
		}
		return parsed.String(), nil
	}

	if strings.HasPrefix(specifier, "/") ||
		strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") {
		base, err := url.Parse(referrer)
		if err != nil {
			return "", fmt.Errorf("module: invalid referrer %q: %w", referrer, err)
		}
		ref, err := url.Parse(specifier)
		if err != nil {
			return "", fmt.Errorf("module: invalid import %q: %w", specifier, err)
		}
		return base.ResolveReference(ref).String(), nil
	}

	return "", fmt.Errorf("%w: %q", ErrBareSpecifier, specifier)
}

// FilePath converts a file URL specifier back into a filesystem path.
func FilePath(specifier string) (string, error) {
	parsed, err := url.Parse(specifier)
	if err != nil {
		return "", fmt.Errorf("module: invalid specifier %q: %w", specifier, err)
	}
	if parsed.Scheme != "file" {
		return "", fmt.Errorf("module: specifier %q is not a file URL", specifier)
	}
	return filepath.FromSlash(parsed.Path), nil
}

func hasScheme(s string) bool {
	idx := strings.Index(s, "://")
	if idx <= 0 {
		return false
	}
	for _, r := range s[:idx] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '+' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

func fileURL(abs string) string {
	u := url.URL{Scheme: "file", Path: path.Clean(filepath.ToSlash(abs))}
	return u.String()
}
