package plan

import (
	"context"
	"fmt"

	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/jetsonhacks/install-deep-stream/log"
	"github.com/jetsonhacks/install-deep-stream/osrelease"
	"github.com/jetsonhacks/install-deep-stream/packagemanager"
	"github.com/jetsonhacks/install-deep-stream/sequence"
)

// checkPlatform verifies the host is a Jetson running a supported L4T
// release before anything is installed.
func checkPlatform(h *jetson.Host) sequence.Step {
	return sequence.Step{
		ID: "check-platform",
		Action: func(ctx context.Context) error {
			osr, err := h.OSRelease(ctx)
			if err != nil {
				return err
			}
			if !osr.IsLike("debian") {
				return fmt.Errorf("unsupported operating system %s", osr)
			}
			j, err := h.Jetson(ctx)
			if err != nil {
				return err
			}
			if j.JetPack == 0 {
				return fmt.Errorf("%w: unsupported L4T release %s", osrelease.ErrNotJetson, j.L4T)
			}
			h.Log().Info("platform detected", log.KeyVersion, j.String())
			return nil
		},
	}
}

// aptUpdate refreshes the package indexes.
func aptUpdate(h *jetson.Host) sequence.Step {
	return sequence.Step{
		ID: "apt-update",
		Action: func(ctx context.Context) error {
			return h.PackageManager().Update(ctx)
		},
	}
}

// localInstaller returns the package manager's local archive installer.
func localInstaller(pm packagemanager.PackageManager) (packagemanager.LocalInstaller, error) {
	installer, ok := pm.(packagemanager.LocalInstaller)
	if !ok {
		return nil, fmt.Errorf("package manager %T can't install local archives", pm)
	}
	return installer, nil
}

// hostPip returns a pip frontend for the host. On JetPack 6 the system
// python is externally managed, so installs need --break-system-packages.
func hostPip(ctx context.Context, h *jetson.Host) *packagemanager.Pip {
	var opts []packagemanager.PipOption
	if j, err := h.Jetson(ctx); err == nil && j.JetPack >= 6 {
		opts = append(opts, packagemanager.BreakSystemPackages())
	}
	return h.Pip(opts...)
}
