// Package initsystem provides an interface for managing system services.
// Only systemd is supported; L4T ships with it and the resume trigger
// depends on its oneshot unit semantics.
package initsystem

import (
	"context"
	"errors"
	"sync"

	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/plumbing"
)

// ServiceManager defines the methods for interacting with an init system.
type ServiceManager interface {
	StartService(ctx context.Context, h exec.ContextRunner, s string) error
	StopService(ctx context.Context, h exec.ContextRunner, s string) error
	EnableService(ctx context.Context, h exec.ContextRunner, s string) error
	DisableService(ctx context.Context, h exec.ContextRunner, s string) error
	ServiceIsEnabled(ctx context.Context, h exec.ContextRunner, s string) bool
	DaemonReload(ctx context.Context, h exec.ContextRunner) error
	CreateUnit(ctx context.Context, h exec.ContextRunner, s string, content string) error
	RemoveUnit(ctx context.Context, h exec.ContextRunner, s string) error
	UnitExists(ctx context.Context, h exec.ContextRunner, s string) bool
}

// ErrNoInitSystem is returned when no supported init system is found.
var ErrNoInitSystem = errors.New("no supported init system found")

// DefaultProvider is the default provider of init systems.
var DefaultProvider = sync.OnceValue(func() *Provider {
	provider := NewProvider()
	RegisterSystemd(provider)
	return provider
})

// Factory is an alias for plumbing.Factory specialized for ServiceManager.
type Factory = plumbing.Factory[exec.ContextRunner, ServiceManager]

// Provider is an alias for plumbing.Provider specialized for ServiceManager.
type Provider = plumbing.Provider[exec.ContextRunner, ServiceManager]

// NewProvider creates a new instance of the specialized Provider.
func NewProvider() *Provider {
	return plumbing.NewProvider[exec.ContextRunner, ServiceManager](ErrNoInitSystem)
}
