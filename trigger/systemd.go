package trigger

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/initsystem"
	"github.com/jetsonhacks/install-deep-stream/log"
)

// UnitName is the name of the resume trigger's systemd unit.
const UnitName = "jetson-install-resume"

var safeWordRe = regexp.MustCompile(`^[a-zA-Z0-9._/:=@%+-]+$`)

// execStartWord quotes an ExecStart= argument when it contains characters
// systemd would split on.
func execStartWord(s string) string {
	if safeWordRe.MatchString(s) {
		return s
	}
	return strconv.Quote(s)
}

// Systemd implements Trigger with a oneshot unit that runs the installer in
// resume mode after the next boot, once the network and the multi-user
// target are up. The unit disables itself after firing so it can never
// activate twice even if the resumed run dies before cleaning up.
type Systemd struct {
	log.LoggerInjectable

	runner  exec.ContextRunner
	manager initsystem.ServiceManager
	// execPath is the absolute path of the installer binary the unit starts.
	execPath string
	// configPath is forwarded to the resumed invocation so it reads the
	// same configuration as the run that installed the trigger. Empty when
	// the run used defaults.
	configPath string
}

// NewSystemd returns a resume trigger managed through the given service
// manager. execPath is the installer binary the trigger invokes, configPath
// the configuration file of the current run, empty for defaults.
func NewSystemd(runner exec.ContextRunner, manager initsystem.ServiceManager, execPath, configPath string) *Systemd {
	return &Systemd{runner: runner, manager: manager, execPath: execPath, configPath: configPath}
}

func (t *Systemd) unitContent(plan string) string {
	execStart := fmt.Sprintf("%s resume --plan %s", execStartWord(t.execPath), execStartWord(plan))
	if t.configPath != "" {
		execStart += " --config " + execStartWord(t.configPath)
	}
	return fmt.Sprintf(`[Unit]
Description=Resume interrupted jetson-install run
After=network-online.target multi-user.target
Wants=network-online.target

[Service]
Type=oneshot
ExecStart=%s
ExecStartPost=/bin/systemctl disable %%n

[Install]
WantedBy=multi-user.target
`, execStart)
}

// Install implements Trigger.
func (t *Systemd) Install(ctx context.Context, plan string) error {
	if err := t.manager.CreateUnit(ctx, t.runner, UnitName, t.unitContent(plan)); err != nil {
		return fmt.Errorf("%w: create unit: %w", ErrTrigger, err)
	}
	if err := t.manager.EnableService(ctx, t.runner, UnitName); err != nil {
		return fmt.Errorf("%w: enable unit: %w", ErrTrigger, err)
	}
	t.Log().Info("resume trigger installed", log.KeyUnit, UnitName, log.KeyPlan, plan)
	return nil
}

// Remove implements Trigger.
func (t *Systemd) Remove(ctx context.Context) error {
	if !t.manager.UnitExists(ctx, t.runner, UnitName) {
		return nil
	}
	if t.manager.ServiceIsEnabled(ctx, t.runner, UnitName) {
		if err := t.manager.DisableService(ctx, t.runner, UnitName); err != nil {
			return fmt.Errorf("%w: disable unit: %w", ErrTrigger, err)
		}
	}
	if err := t.manager.RemoveUnit(ctx, t.runner, UnitName); err != nil {
		return fmt.Errorf("%w: remove unit: %w", ErrTrigger, err)
	}
	t.Log().Info("resume trigger removed", log.KeyUnit, UnitName)
	return nil
}

// IsInstalled implements Trigger.
func (t *Systemd) IsInstalled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrTrigger, err)
	}
	return t.manager.UnitExists(ctx, t.runner, UnitName), nil
}
