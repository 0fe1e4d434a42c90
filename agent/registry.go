package agent

import (
	"fmt"
	"sync"

	"github.com/joinaiwms/horizon/core"
)

// Registry holds the handlers available for delegation. Registration order
// is preserved so classification prompts and status reports stay stable
// across runs. Handlers are never removed during operation.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]core.Handler
	order    []string
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]core.Handler)}
}

// Register adds a handler under its name. Registering a nil handler, an
// empty name, or a duplicate name is an error.
func (r *Registry) Register(h core.Handler) error {
	if h == nil {
		return fmt.Errorf("handler must not be nil")
	}

	name := h.Name()
	if name == "" {
		return fmt.Errorf("handler name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("handler %q already registered", name)
	}

	r.handlers[name] = h
	r.order = append(r.order, name)

	return nil
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (core.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]

	return h, ok
}

// Names returns the registered handler names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// Handlers returns the registered handlers in registration order.
func (r *Registry) Handlers() []core.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Handler, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.handlers[name])
	}

	return out
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}
