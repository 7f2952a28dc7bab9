package packagemanager

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alessio/shellescape"
	"github.com/jetsonhacks/install-deep-stream/exec"
)

// Apt is the apt package manager found on Debian derivatives, including the
// Ubuntu based L4T that Jetsons run.
type Apt struct {
	exec.ContextRunner
}

// NewApt creates a new apt package manager.
func NewApt(c exec.ContextRunner) *Apt {
	return &Apt{c}
}

// Install given packages. Already-installed packages at the candidate
// version are a no-op for apt, which keeps steps re-runnable.
func (a *Apt) Install(ctx context.Context, packageNames ...string) error {
	if err := a.ExecContext(ctx, "DEBIAN_FRONTEND=noninteractive APT_LISTCHANGES_FRONTEND=none "+buildCommand("apt-get", "install -y", packageNames...), exec.StreamOutput()); err != nil {
		return fmt.Errorf("failed to install apt packages: %w", err)
	}
	return nil
}

// InstallLocal installs local .deb archives. Paths are made absolute so apt
// treats them as files rather than package names.
func (a *Apt) InstallLocal(ctx context.Context, paths ...string) error {
	abs := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			abs[i] = p
		} else {
			abs[i] = "./" + p
		}
	}
	if err := a.ExecContext(ctx, "DEBIAN_FRONTEND=noninteractive "+buildCommand("apt-get", "install -y", abs...), exec.StreamOutput()); err != nil {
		return fmt.Errorf("failed to install local archives: %w", err)
	}
	return nil
}

// Remove given packages. Packages that are not installed are skipped rather
// than treated as an error.
func (a *Apt) Remove(ctx context.Context, packageNames ...string) error {
	var present []string
	for _, pkg := range packageNames {
		if a.ExecContext(ctx, "dpkg -s "+shellescape.Quote(pkg)+" > /dev/null 2>&1") == nil {
			present = append(present, pkg)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := a.ExecContext(ctx, "DEBIAN_FRONTEND=noninteractive "+buildCommand("apt-get", "remove -y", present...)); err != nil {
		return fmt.Errorf("failed to remove apt packages: %w", err)
	}
	return nil
}

// Update the package lists.
func (a *Apt) Update(ctx context.Context) error {
	if err := a.ExecContext(ctx, "DEBIAN_FRONTEND=noninteractive apt-get update", exec.StreamOutput()); err != nil {
		return fmt.Errorf("failed to update apt: %w", err)
	}
	return nil
}

// RegisterApt registers the apt package manager to a provider.
func RegisterApt(provider *Provider) {
	provider.Register(func(c exec.ContextRunner) (PackageManager, bool) {
		if c.ExecContext(context.Background(), "command -v apt-get") != nil {
			return nil, false
		}
		return NewApt(c), true
	})
}
