// Package emitter stores graph emitters by name, providing discovery
// and duplication safeguards. Hosts can swap bundle strategies by
// registering their own emitters under the well-known names.
package emitter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-emit/pkg/graph"
)

// Registry stores emitters by name. Implementations can embed or wrap
// this for dependency injection.
type Registry struct {
	mu       sync.RWMutex
	emitters map[string]graph.Emitter
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		emitters: make(map[string]graph.Emitter),
	}
}

// Register adds an emitter by its Name(). Duplicate names return an
// error.
func (r *Registry) Register(e graph.Emitter) error {
	if e == nil {
		return fmt.Errorf("emitter: emitter is required")
	}
	name := e.Name()
	if name == "" {
		return fmt.Errorf("emitter: emitter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.emitters[name]; exists {
		return fmt.Errorf("emitter: emitter %q already registered", name)
	}

	r.emitters[name] = e
	return nil
}

// MustRegister panics on registration failure. Useful for init-time
// wiring.
func (r *Registry) MustRegister(e graph.Emitter) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Get retrieves an emitter by name.
func (r *Registry) Get(name string) (graph.Emitter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.emitters[name]
	if !ok {
		return nil, fmt.Errorf("emitter: emitter %q not found", name)
	}
	return e, nil
}

// List returns a sorted list of emitter names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.emitters))
	for name := range r.emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an emitter is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.emitters[name]
	return ok
}
