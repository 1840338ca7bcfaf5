package module

// Provider contracts mirror the loader strategy split used across the
// codebase: an in-memory provider seeded from caller sources and a
// permissioned fetch provider. Implementations live under
// internal/provider but satisfy this contract.

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"
)

// ErrNotFound is returned when a provider cannot supply the requested
// specifier. The memory provider never falls back to a fetch; an
// unknown specifier is this error, not a network call.
var ErrNotFound = errors.New("module: specifier not found")

// Provider resolves an absolute specifier to its source text. The
// dynamic flag selects which permission grant applies for providers
// that enforce permissions; providers without permission semantics
// ignore it.
type Provider interface {
	Resolve(ctx context.Context, specifier string, dynamic bool) (Module, error)
}

// ProviderOptions configures how the fetch provider reaches module
// sources (filesystem abstraction, HTTP behaviour, timeouts).
type ProviderOptions struct {
	// FileSystem enables loading file URLs from an abstract filesystem;
	// defaults to the operating system if nil.
	FileSystem fs.FS

	// HTTPClient allows callers to inject custom HTTP behaviour
	// (timeouts, proxies). Nil means remote specifiers are disabled
	// unless AllowHTTPFallback is true.
	HTTPClient *http.Client

	// AllowHTTPFallback toggles a default HTTP client when no client is
	// supplied. Remote resolution stays opt-in.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration
}

// ProviderOption mutates ProviderOptions prior to construction.
type ProviderOption func(*ProviderOptions)

// WithFileSystem injects an fs.FS implementation for file specifiers.
func WithFileSystem(files fs.FS) ProviderOption {
	return func(opts *ProviderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote specifiers.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(opts *ProviderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading using a default client and
// assigns an optional timeout.
func WithHTTPFallback(timeout time.Duration) ProviderOption {
	return func(opts *ProviderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// NewProviderOptions applies a set of ProviderOption values and returns
// the resulting configuration.
func NewProviderOptions(options ...ProviderOption) ProviderOptions {
	cfg := ProviderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}
