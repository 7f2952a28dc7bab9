package initsystem

import (
	"fmt"

	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/plumbing"
)

// ServiceManagerProvider returns a ServiceManager when given a runner.
type ServiceManagerProvider interface {
	Get(runner exec.ContextRunner) (ServiceManager, error)
}

// Service provides a lazily detected init system.
type Service struct {
	lazy *plumbing.LazyService[exec.ContextRunner, ServiceManager]
}

// GetServiceManager returns a ServiceManager or an error if no supported
// init system was detected.
func (s *Service) GetServiceManager() (ServiceManager, error) {
	sm, err := s.lazy.Get()
	if err != nil {
		return nil, fmt.Errorf("get service manager: %w", err)
	}
	return sm, nil
}

// NewInitSystemService creates a new instance of Service with the provided
// provider and runner.
func NewInitSystemService(provider ServiceManagerProvider, runner exec.ContextRunner) *Service {
	return &Service{plumbing.NewLazyService[exec.ContextRunner, ServiceManager](provider, runner)}
}
