// Package format provides the built-in format adapters, the manifest loader
// for external command adapters, and the registry that holds them.
package format

import (
	"strconv"
	"strings"
	"sync"

	"reelbridge/internal/domain"
)

// Registry holds named format adapters in registration order. It satisfies
// domain.Registry; listing order is stable so discover output is reproducible.
type Registry struct {
	mu       sync.RWMutex
	adapters []domain.Adapter
	byName   map[string]domain.Adapter
	bySuffix map[string]domain.Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]domain.Adapter),
		bySuffix: make(map[string]domain.Adapter),
	}
}

// Register adds an adapter. Returns error if the name is already registered.
// The first adapter to claim a suffix keeps it.
func (r *Registry) Register(a domain.Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := a.Info()
	name := strings.ToLower(info.Name)
	if _, exists := r.byName[name]; exists {
		return domain.NewDomainError("registry.Register", domain.ErrDuplicateAdapter, info.Name)
	}
	r.adapters = append(r.adapters, a)
	r.byName[name] = a
	for _, s := range info.Suffixes {
		s = strings.ToLower(strings.TrimPrefix(s, "."))
		if s == "" {
			continue
		}
		if _, taken := r.bySuffix[s]; !taken {
			r.bySuffix[s] = a
		}
	}
	return nil
}

// Adapters returns all registered adapters in registration order.
func (r *Registry) Adapters() ([]domain.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out, nil
}

// ByName retrieves an adapter by its registered name (case-insensitive).
func (r *Registry) ByName(name string) (domain.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, domain.NewDomainError("registry.ByName", domain.ErrAdapterNotFound, "no adapter named "+strconv.Quote(name))
	}
	return a, nil
}

// BySuffix retrieves the adapter claiming a file suffix. The suffix may carry
// a leading dot and any casing.
func (r *Registry) BySuffix(suffix string) (domain.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := strings.ToLower(strings.TrimPrefix(suffix, "."))
	a, ok := r.bySuffix[s]
	if !ok {
		return nil, domain.NewDomainError("registry.BySuffix", domain.ErrAdapterNotFound, "no adapter for suffix "+strconv.Quote(suffix))
	}
	return a, nil
}

var _ domain.Registry = (*Registry)(nil)
