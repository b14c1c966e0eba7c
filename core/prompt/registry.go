package prompt

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps role names to constructed services. It replaces lazy
// construction-on-first-use: services are built explicitly during
// initialization and registered once, so there is no hidden global state.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*Service
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: map[string]*Service{}}
}

// Register adds a service under the given role name. Registering the same
// name twice is an error; replace a role by building a new registry.
func (r *Registry) Register(name string, service *Service) error {
	if service == nil {
		return fmt.Errorf("prompt: registry: service for %q must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		return fmt.Errorf("prompt: registry: role %q already registered", name)
	}
	r.services[name] = service
	return nil
}

// Get returns the service registered under name.
func (r *Registry) Get(name string) (*Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, ok := r.services[name]
	return service, ok
}

// Names returns the registered role names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
