package hotkey

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// Registry is an in-memory Registrar. Activation is triggered by the owner, e.g. a
// line reader or a platform hook.
type Registry struct {
	mu        sync.RWMutex
	callbacks map[string]func()
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{callbacks: make(map[string]func())}
}

// Register implements Registrar. Keys are compared in normalized form.
func (r *Registry) Register(keys string, onActivate func()) error {
	key := NormalizeKeys(keys)
	if key == "" {
		return errors.New("empty key sequence")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.callbacks[key]; exists {
		return errors.Wrapf(ErrAlreadyRegistered, "%s", keys)
	}
	r.callbacks[key] = onActivate
	r.order = append(r.order, key)
	return nil
}

// Trigger invokes the callback registered for keys. It returns false if none is registered.
func (r *Registry) Trigger(keys string) bool {
	r.mu.RLock()
	cb, ok := r.callbacks[NormalizeKeys(keys)]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	cb()
	return true
}

// Keys returns the registered key sequences in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
