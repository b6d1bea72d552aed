package engine

import (
	"sort"
	"sync"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// Registry manages available engines.
type Registry struct {
	engines map[string]Engine
	mu      sync.RWMutex
}

// NewRegistry creates a new engine registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Engine),
	}
}

// Register adds an engine under its own name.
func (r *Registry) Register(e Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := e.Name()
	if _, exists := r.engines[name]; exists {
		return werrors.EngineErrorf(werrors.ErrEngineAlreadyRegistered, "engine %q already registered", name).
			WithContext("engine", name)
	}
	r.engines[name] = e
	return nil
}

// Get retrieves an engine by name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[name]
	if !ok {
		return nil, werrors.AttachSuggestions(werrors.EngineErrorf(werrors.ErrEngineNotFound,
			"engine %q is not registered", name).WithContext(werrors.ContextEngine, name))
	}
	return e, nil
}

// List returns all registered engine names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.engines))
	for name := range r.engines {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
