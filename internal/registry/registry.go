// Package registry provides the capability registry: a table mapping a
// capability name to its descriptor and specialist worker.
//
// The registry is populated once at engine start and read concurrently by
// scheduler workers; the read path is guarded by an RWMutex.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/worker"
)

// Entry pairs a capability descriptor with the worker that satisfies it.
type Entry struct {
	// Descriptor is the immutable capability contract.
	Descriptor domain.CapabilityDescriptor

	// Worker performs the capability's work.
	Worker worker.Worker
}

// Registry is a concurrency-safe capability table.
// The zero value is not usable; create one with New.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds a capability to the registry.
// Returns ErrDuplicateCapability if the name is already registered and
// ErrInvalidArgument for descriptors with no name, an unknown phase, or a
// nil worker.
func (r *Registry) Register(desc domain.CapabilityDescriptor, w worker.Worker) error {
	if desc.Name == "" {
		return fmt.Errorf("%w: capability name is required", conductorerrors.ErrInvalidArgument)
	}
	if !desc.Phase.IsValid() {
		return fmt.Errorf("%w: capability %q phase %q", conductorerrors.ErrUnknownPhase, desc.Name, desc.Phase)
	}
	if w == nil {
		return fmt.Errorf("%w: capability %q has no worker", conductorerrors.ErrInvalidArgument, desc.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[desc.Name]; exists {
		return fmt.Errorf("%w: %q", conductorerrors.ErrDuplicateCapability, desc.Name)
	}
	r.entries[desc.Name] = Entry{Descriptor: desc, Worker: w}
	return nil
}

// Resolve returns the entry for a capability name.
// Returns ErrCapabilityNotFound if the name is absent.
// Safe for concurrent use.
func (r *Registry) Resolve(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", conductorerrors.ErrCapabilityNotFound, name)
	}
	return entry, nil
}

// Has reports whether a capability name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[name]
	return ok
}

// List returns all registered descriptors, sorted by name for stable output.
func (r *Registry) List() []domain.CapabilityDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CapabilityDescriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
