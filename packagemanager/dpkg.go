package packagemanager

import (
	"context"
	"fmt"

	"github.com/jetsonhacks/install-deep-stream/exec"
)

// Dpkg is a minimal package manager for hosts where apt-get is unavailable.
// It can only install and remove local archives and named packages, and its
// Update is a no-op.
type Dpkg struct {
	exec.ContextRunner
}

// NewDpkg creates a new dpkg package manager.
func NewDpkg(c exec.ContextRunner) *Dpkg {
	return &Dpkg{c}
}

// Install given local .deb archives.
func (d *Dpkg) Install(ctx context.Context, packageNames ...string) error {
	if err := d.ExecContext(ctx, buildCommand("dpkg", "-i", packageNames...), exec.StreamOutput()); err != nil {
		return fmt.Errorf("failed to install dpkg packages: %w", err)
	}
	return nil
}

// InstallLocal installs local .deb archives. For dpkg this is the same
// operation as Install.
func (d *Dpkg) InstallLocal(ctx context.Context, paths ...string) error {
	return d.Install(ctx, paths...)
}

// Remove given packages.
func (d *Dpkg) Remove(ctx context.Context, packageNames ...string) error {
	if err := d.ExecContext(ctx, buildCommand("dpkg", "-r", packageNames...)); err != nil {
		return fmt.Errorf("failed to remove dpkg packages: %w", err)
	}
	return nil
}

// Update is a no-op, dpkg has no package list to refresh.
func (d *Dpkg) Update(_ context.Context) error {
	return nil
}

// RegisterDpkg registers the dpkg package manager to a provider.
func RegisterDpkg(provider *Provider) {
	provider.Register(func(c exec.ContextRunner) (PackageManager, bool) {
		if c.ExecContext(context.Background(), "command -v dpkg") != nil {
			return nil, false
		}
		return NewDpkg(c), true
	})
}
