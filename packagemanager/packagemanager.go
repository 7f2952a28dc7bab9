// Package packagemanager provides a generic interface for package managers.
package packagemanager

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/alessio/shellescape"
	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/plumbing"
)

// PackageManager is a generic interface for package managers.
type PackageManager interface {
	Install(ctx context.Context, packageNames ...string) error
	Remove(ctx context.Context, packageNames ...string) error
	Update(ctx context.Context) error
}

// LocalInstaller is implemented by package managers that can install local
// package archives, such as a downloaded DeepStream .deb.
type LocalInstaller interface {
	InstallLocal(ctx context.Context, paths ...string) error
}

// PackageManagerProvider returns a package manager implementation from a
// provider when given a runner.
type PackageManagerProvider interface { //nolint:revive // stutter accepted for clarity at call sites
	Get(runner exec.ContextRunner) (PackageManager, error)
}

var (
	// DefaultProvider is the default provider of package managers. Jetsons
	// run L4T which is Ubuntu based, so apt is expected; dpkg is a fallback
	// for minimal images.
	DefaultProvider = sync.OnceValue(func() *Provider {
		provider := NewProvider()
		RegisterApt(provider)
		RegisterDpkg(provider)
		return provider
	})

	// ErrNoPackageManager is returned when no supported package manager is found.
	ErrNoPackageManager = errors.New("no supported package manager found")
)

// Factory is an alias for plumbing.Factory specialized for PackageManager.
type Factory = plumbing.Factory[exec.ContextRunner, PackageManager]

// Provider is an alias for plumbing.Provider specialized for PackageManager.
type Provider = plumbing.Provider[exec.ContextRunner, PackageManager]

// NewProvider creates a new instance of the specialized Provider.
func NewProvider() *Provider {
	return plumbing.NewProvider[exec.ContextRunner, PackageManager](ErrNoPackageManager)
}

func buildCommand(basecmd, keyword string, packages ...string) string {
	cmd := &strings.Builder{}
	cmd.WriteString(basecmd)
	if keyword != "" {
		cmd.WriteRune(' ')
		cmd.WriteString(keyword)
	}
	for _, pkg := range packages {
		cmd.WriteRune(' ')
		cmd.WriteString(shellescape.Quote(pkg))
	}
	return cmd.String()
}
