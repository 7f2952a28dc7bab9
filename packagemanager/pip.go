package packagemanager

import (
	"context"
	"fmt"

	"github.com/jetsonhacks/install-deep-stream/exec"
)

// Pip installs Python packages with python3 -m pip. It is not part of the
// system package manager detection chain; the Ultralytics plan constructs
// one explicitly.
type Pip struct {
	exec.ContextRunner
	breakSystemPackages bool
}

// PipOption is a functional option for the Pip package manager.
type PipOption func(*Pip)

// BreakSystemPackages makes pip bypass PEP 668 managed-environment
// protection. Required on JetPack 6 where Ubuntu marks the system Python as
// externally managed.
func BreakSystemPackages() PipOption {
	return func(p *Pip) {
		p.breakSystemPackages = true
	}
}

// NewPip creates a new pip package manager.
func NewPip(c exec.ContextRunner, opts ...PipOption) *Pip {
	pip := &Pip{ContextRunner: c}
	for _, opt := range opts {
		opt(pip)
	}
	return pip
}

func (p *Pip) base(action string) string {
	cmd := "python3 -m pip " + action
	if p.breakSystemPackages {
		cmd += " --break-system-packages"
	}
	return cmd
}

// Install given packages or wheel files. pip treats an already satisfied
// requirement as a no-op.
func (p *Pip) Install(ctx context.Context, packageNames ...string) error {
	if err := p.ExecContext(ctx, buildCommand(p.base("install"), "", packageNames...), exec.StreamOutput()); err != nil {
		return fmt.Errorf("failed to install pip packages: %w", err)
	}
	return nil
}

// InstallLocal installs local wheel files; same operation as Install for pip.
func (p *Pip) InstallLocal(ctx context.Context, paths ...string) error {
	return p.Install(ctx, paths...)
}

// Remove given packages. Not-installed packages are tolerated.
func (p *Pip) Remove(ctx context.Context, packageNames ...string) error {
	for _, pkg := range packageNames {
		if p.ExecContext(ctx, buildCommand("python3 -m pip", "show -q", pkg)) != nil {
			continue
		}
		if err := p.ExecContext(ctx, buildCommand(p.base("uninstall"), "-y", pkg)); err != nil {
			return fmt.Errorf("failed to uninstall pip package %s: %w", pkg, err)
		}
	}
	return nil
}

// Update upgrades pip itself.
func (p *Pip) Update(ctx context.Context) error {
	if err := p.ExecContext(ctx, p.base("install")+" --upgrade pip"); err != nil {
		return fmt.Errorf("failed to upgrade pip: %w", err)
	}
	return nil
}
