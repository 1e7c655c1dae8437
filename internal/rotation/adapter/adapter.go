// Package adapter provides target adapters that apply rotated credentials to
// concrete downstream systems. The orchestrator treats adapters as capability
// objects: apply, probe, and revert must be safe to retry within its bounded
// windows.
package adapter

import (
	"context"
	"sync"

	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
)

// Credential is the unit an adapter applies or reverts.
type Credential struct {
	Path   string
	Fields map[string]string
}

// Notifier signals dependent consumers to reload after a credential change.
// The transport is adapter-specific; a nil notifier disables the signal.
type Notifier func(ctx context.Context, secretClass, path string) error

// TargetAdapter applies a rotated credential to a downstream system.
type TargetAdapter interface {
	// Class identifies the secret class this adapter serves.
	Class() string

	// Apply pushes the new credential to the live downstream system and
	// signals dependent consumers to reload.
	Apply(ctx context.Context, cred *Credential) error

	// HealthProbe checks that the downstream system accepts the most
	// recently applied credential.
	HealthProbe(ctx context.Context) error

	// Revert pushes the previous credential back to the downstream system.
	Revert(ctx context.Context, cred *Credential) error
}

// Registry holds the target adapters keyed by secret class.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]TargetAdapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]TargetAdapter)}
}

// Register adds an adapter, replacing any previous adapter for its class.
func (r *Registry) Register(adapter TargetAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Class()] = adapter
}

// Get returns the adapter for a secret class. Returns ErrUnknownSecretClass
// when no adapter is registered for it.
func (r *Registry) Get(secretClass string) (TargetAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[secretClass]
	if !ok {
		return nil, rotationDomain.ErrUnknownSecretClass
	}
	return adapter, nil
}

// Classes returns the registered secret classes.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := make([]string, 0, len(r.adapters))
	for class := range r.adapters {
		classes = append(classes, class)
	}
	return classes
}
