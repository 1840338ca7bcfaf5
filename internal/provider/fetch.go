package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-emit/pkg/module"
	"github.com/goliatone/go-emit/pkg/permissions"
)

// Fetch resolves modules from the filesystem or the network under two
// independent permission grants: one consulted for statically imported
// specifiers, one for dynamic imports. The orchestrator seeds both
// from the caller's ambient set, which holds the root module to
// dynamic-import-grade checks.
type Fetch struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	static    permissions.Permissions
	dynamic   permissions.Permissions
}

var _ module.Provider = (*Fetch)(nil)

// NewFetch constructs a fetch provider from pre-resolved options and
// the two permission grants.
func NewFetch(options module.ProviderOptions, static, dynamic permissions.Permissions) *Fetch {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Fetch{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		static:    static,
		dynamic:   dynamic,
	}
}

// Resolve fetches the specifier's source after the applicable
// permission grant allows it.
func (p *Fetch) Resolve(ctx context.Context, specifier string, dynamic bool) (module.Module, error) {
	grant := p.static
	if dynamic {
		grant = p.dynamic
	}
	if err := grant.CheckSpecifier(specifier, dynamic); err != nil {
		return module.Module{}, err
	}

	parsed, err := url.Parse(specifier)
	if err != nil {
		return module.Module{}, fmt.Errorf("provider: invalid specifier %q: %w", specifier, err)
	}

	switch parsed.Scheme {
	case "file":
		return p.resolveFile(ctx, specifier)
	case "http", "https":
		if !p.allowHTTP {
			return module.Module{}, fmt.Errorf("provider: http support disabled for %q", specifier)
		}
		return p.resolveHTTP(ctx, specifier)
	default:
		return module.Module{}, fmt.Errorf("%w: unsupported scheme %q", module.ErrNotFound, parsed.Scheme)
	}
}

func (p *Fetch) resolveFile(ctx context.Context, specifier string) (module.Module, error) {
	select {
	case <-ctx.Done():
		return module.Module{}, ctx.Err()
	default:
	}

	path, err := module.FilePath(specifier)
	if err != nil {
		return module.Module{}, err
	}

	var data []byte
	if p.fs != nil {
		name := strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/")
		data, err = fs.ReadFile(p.fs, name)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return module.Module{}, fmt.Errorf("%w: %q", module.ErrNotFound, specifier)
		}
		return module.Module{}, fmt.Errorf("provider: read %q: %w", specifier, err)
	}

	return module.Module{
		Specifier: specifier,
		MediaType: module.MediaTypeFromSpecifier(specifier),
		Source:    string(data),
	}, nil
}

func (p *Fetch) resolveHTTP(ctx context.Context, specifier string) (module.Module, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if p.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, specifier, nil)
	if err != nil {
		return module.Module{}, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return module.Module{}, fmt.Errorf("provider: fetch %q: %w", specifier, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return module.Module{}, fmt.Errorf("%w: %q", module.ErrNotFound, specifier)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return module.Module{}, fmt.Errorf("provider: fetch %q: unexpected status %s", specifier, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return module.Module{}, fmt.Errorf("provider: read body of %q: %w", specifier, err)
	}

	return module.Module{
		Specifier: specifier,
		MediaType: module.MediaTypeFromContentType(resp.Header.Get("Content-Type"), specifier),
		Source:    string(data),
	}, nil
}
