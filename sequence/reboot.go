package sequence

import (
	"context"
	"fmt"

	"github.com/jetsonhacks/install-deep-stream/exec"
)

// SystemdRebooter reboots the host through systemd. Reboot does not return;
// the process is terminated when the system goes down.
type SystemdRebooter struct {
	Runner exec.ContextRunner
}

// Reboot implements Rebooter.
func (r SystemdRebooter) Reboot(ctx context.Context) error {
	if err := r.Runner.ExecContext(ctx, "systemctl reboot"); err != nil {
		return fmt.Errorf("request reboot: %w", err)
	}
	// the reboot is irreversible, wait for the process to be killed
	select {}
}
