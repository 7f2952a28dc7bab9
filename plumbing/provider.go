// Package plumbing defines generic types for the dependency resolution
// mechanics used by the installer's collaborator packages.
package plumbing

import "sync"

// Factory is a function that takes a parameter of type R and returns a value
// of type T and a boolean indicating whether the factory could produce one.
type Factory[R any, T any] func(R) (T, bool)

// Provider is a generic provider of values of type T that can be initialized
// with a value of type R. Factories are tried in registration order and the
// first one that succeeds wins.
type Provider[R any, T any] struct {
	mu        sync.RWMutex
	factories []Factory[R, T]
	err       error
}

// Register adds a new factory to the provider.
func (p *Provider[R, T]) Register(f Factory[R, T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories = append(p.factories, f)
}

// Get retrieves the first value of type T from the factories in the
// Provider. If none can be found, the error supplied at creation time is
// returned.
func (p *Provider[R, T]) Get(r R) (T, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, f := range p.factories {
		if t, ok := f(r); ok {
			return t, nil
		}
	}
	return *new(T), p.err
}

// NewProvider creates a new instance of Provider. The error is returned from
// Get when no factory can produce a value of type T.
func NewProvider[R any, T any](err error) *Provider[R, T] {
	return &Provider[R, T]{err: err}
}
