// Package registry maps application names to their entry points, the way a
// host dispatcher would.  Registration is idempotent and order-independent:
// re-registering a name replaces it, unregistering an unknown name is a
// no-op.
package registry

import (
	"context"
	"strings"
	"sync"
)

// Exec runs one application invocation with its raw argument string.
type Exec func(ctx context.Context, arg string) error

// Registry holds the registered applications.  Names are case-insensitive.
type Registry struct {
	mu   sync.RWMutex
	apps map[string]Exec
}

func New() *Registry {
	return &Registry{apps: make(map[string]Exec)}
}

func (r *Registry) Register(name string, exec Exec) {
	r.mu.Lock()
	r.apps[strings.ToLower(name)] = exec
	r.mu.Unlock()
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.apps, strings.ToLower(name))
	r.mu.Unlock()
}

func (r *Registry) Lookup(name string) (Exec, bool) {
	r.mu.RLock()
	exec, ok := r.apps[strings.ToLower(name)]
	r.mu.RUnlock()
	return exec, ok
}

// Names returns the registered application names, unordered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.apps))
	for name := range r.apps {
		names = append(names, name)
	}
	return names
}
