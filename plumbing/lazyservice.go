package plumbing

import "sync"

// providers take a runner or a subset of it and return a value of type T or
// an error.
type provider[R any, T any] interface {
	Get(runner R) (T, error)
}

// LazyService defers collaborator detection until the collaborator is first
// needed. Detection runs commands on the host, so doing it eagerly for every
// collaborator would probe the system even when the plan never uses one.
type LazyService[R any, T any] struct {
	once     sync.Once
	provider provider[R, T]
	source   R
	value    T
	err      error
}

// NewLazyService creates a new instance of LazyService with the given provider.
func NewLazyService[R any, T any](p provider[R, T], source R) *LazyService[R, T] {
	return &LazyService[R, T]{
		provider: p,
		source:   source,
	}
}

// Get retrieves the service value, initializing it if necessary.
func (s *LazyService[R, T]) Get() (T, error) {
	s.once.Do(func() {
		s.value, s.err = s.provider.Get(s.source)
	})
	return s.value, s.err
}
