package initsystem

import (
	"context"
	"fmt"

	"github.com/alessio/shellescape"
	"github.com/jetsonhacks/install-deep-stream/exec"
)

// Systemd is found by default on L4T and most Linux distributions today.
type Systemd struct{}

func unitPath(s string) string {
	return "/etc/systemd/system/" + s + ".service"
}

// StartService starts a service.
func (i Systemd) StartService(ctx context.Context, h exec.ContextRunner, s string) error {
	if err := h.ExecContext(ctx, "systemctl start "+shellescape.Quote(s)+" 2> /dev/null"); err != nil {
		return fmt.Errorf("failed to start service %s: %w", s, err)
	}
	return nil
}

// StopService stops a service.
func (i Systemd) StopService(ctx context.Context, h exec.ContextRunner, s string) error {
	if err := h.ExecContext(ctx, "systemctl stop "+shellescape.Quote(s)+" 2> /dev/null"); err != nil {
		return fmt.Errorf("failed to stop service %s: %w", s, err)
	}
	return nil
}

// EnableService enables a service.
func (i Systemd) EnableService(ctx context.Context, h exec.ContextRunner, s string) error {
	if err := h.ExecContext(ctx, "systemctl enable "+shellescape.Quote(s)+" 2> /dev/null"); err != nil {
		return fmt.Errorf("failed to enable service %s: %w", s, err)
	}
	return nil
}

// DisableService disables a service.
func (i Systemd) DisableService(ctx context.Context, h exec.ContextRunner, s string) error {
	if err := h.ExecContext(ctx, "systemctl disable "+shellescape.Quote(s)+" 2> /dev/null"); err != nil {
		return fmt.Errorf("failed to disable service %s: %w", s, err)
	}
	return nil
}

// ServiceIsEnabled returns true if the service is enabled.
func (i Systemd) ServiceIsEnabled(ctx context.Context, h exec.ContextRunner, s string) bool {
	return h.ExecContext(ctx, "systemctl is-enabled --quiet "+shellescape.Quote(s)+" 2> /dev/null") == nil
}

// DaemonReload reloads init system configuration.
func (i Systemd) DaemonReload(ctx context.Context, h exec.ContextRunner) error {
	if err := h.ExecContext(ctx, "systemctl daemon-reload 2> /dev/null"); err != nil {
		return fmt.Errorf("failed to daemon-reload: %w", err)
	}
	return nil
}

// CreateUnit writes a unit file for the service and reloads the daemon.
// The content travels over stdin so it needs no quoting.
func (i Systemd) CreateUnit(ctx context.Context, h exec.ContextRunner, s string, content string) error {
	if err := h.ExecContext(ctx, "tee "+shellescape.Quote(unitPath(s))+" > /dev/null", exec.StdinString(content)); err != nil {
		return fmt.Errorf("failed to write unit file for %s: %w", s, err)
	}
	return i.DaemonReload(ctx, h)
}

// RemoveUnit deletes the unit file of the service and reloads the daemon.
// A missing unit file is not an error.
func (i Systemd) RemoveUnit(ctx context.Context, h exec.ContextRunner, s string) error {
	if err := h.ExecContext(ctx, "rm -f "+shellescape.Quote(unitPath(s))); err != nil {
		return fmt.Errorf("failed to remove unit file for %s: %w", s, err)
	}
	return i.DaemonReload(ctx, h)
}

// UnitExists returns true if a unit file exists for the service.
func (i Systemd) UnitExists(ctx context.Context, h exec.ContextRunner, s string) bool {
	return h.ExecContext(ctx, "test -f "+shellescape.Quote(unitPath(s))) == nil
}

// RegisterSystemd registers systemd into a provider.
func RegisterSystemd(provider *Provider) {
	provider.Register(func(c exec.ContextRunner) (ServiceManager, bool) {
		if c.ExecContext(context.Background(), "stat /run/systemd/system") != nil {
			return nil, false
		}
		return Systemd{}, true
	})
}
