package packagemanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/plumbing"
)

// Service provides a unified interface to the host's package manager. It
// ensures that a suitable package manager is lazily detected and made
// available for package operations.
type Service struct {
	lazy *plumbing.LazyService[exec.ContextRunner, PackageManager]
}

// GetPackageManager returns a PackageManager or an error if no supported
// package manager could be detected.
func (s *Service) GetPackageManager() (PackageManager, error) {
	pm, err := s.lazy.Get()
	if err != nil {
		return nil, fmt.Errorf("get package manager: %w", err)
	}
	return pm, nil
}

// PackageManager provides easy access to the underlying package manager
// instance. If the detection fails, a NullPackageManager instance is
// returned which will return the detection error on every operation that
// is attempted on it.
func (s *Service) PackageManager() PackageManager {
	pm, err := s.lazy.Get()
	if err != nil {
		return &NullPackageManager{Err: err}
	}
	return pm
}

// NewPackageManagerService creates a new instance of Service with the
// provided provider and runner.
func NewPackageManagerService(provider PackageManagerProvider, runner exec.ContextRunner) *Service {
	return &Service{plumbing.NewLazyService[exec.ContextRunner, PackageManager](provider, runner)}
}

// NullPackageManager is a package manager that always returns an error on
// every operation.
type NullPackageManager struct {
	Err error
}

func (n *NullPackageManager) err(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("context error: %w", ctx.Err())
	}
	return n.Err
}

// Install returns an error on every call.
func (n *NullPackageManager) Install(ctx context.Context, packageNames ...string) error {
	return fmt.Errorf("install packages (%s): %w", strings.Join(packageNames, ","), n.err(ctx))
}

// Remove returns an error on every call.
func (n *NullPackageManager) Remove(ctx context.Context, packageNames ...string) error {
	return fmt.Errorf("remove packages (%s): %w", strings.Join(packageNames, ","), n.err(ctx))
}

// Update returns an error on every call.
func (n *NullPackageManager) Update(ctx context.Context) error {
	return fmt.Errorf("update package list: %w", n.err(ctx))
}
