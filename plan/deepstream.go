package plan

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alessio/shellescape"
	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/log"
	"github.com/jetsonhacks/install-deep-stream/sequence"
	"github.com/jetsonhacks/install-deep-stream/version"
)

// DeepStream needs a newer GLib than Ubuntu 22.04 ships with.
const (
	glibMinVersion = "2.76.6"
	glibSourceURL  = "https://download.gnome.org/sources/glib/2.76/glib-2.76.6.tar.xz"
)

var deepstreamDependencies = []string{
	"libssl3",
	"libssl-dev",
	"libgstreamer1.0-0",
	"gstreamer1.0-tools",
	"gstreamer1.0-plugins-good",
	"gstreamer1.0-plugins-bad",
	"gstreamer1.0-plugins-ugly",
	"gstreamer1.0-libav",
	"libgstreamer-plugins-base1.0-dev",
	"libgstrtspserver-1.0-0",
	"libjansson4",
	"libyaml-cpp-dev",
	"libjsoncpp-dev",
	"protobuf-compiler",
	"gcc",
	"make",
	"git",
	"python3",
}

type deepstreamRelease struct {
	version string
	file    string
	url     string
}

// DeepStream releases per JetPack major version.
var deepstreamReleases = map[int]deepstreamRelease{
	6: {
		version: "7.0",
		file:    "deepstream-7.0_7.0.0-1_arm64.deb",
		url:     "https://api.ngc.nvidia.com/v2/resources/nvidia/deepstream/versions/7.0/files/deepstream-7.0_7.0.0-1_arm64.deb",
	},
	5: {
		version: "6.3",
		file:    "deepstream-6.3_6.3.0-1_arm64.deb",
		url:     "https://api.ngc.nvidia.com/v2/resources/nvidia/deepstream/versions/6.3/files/deepstream-6.3_6.3.0-1_arm64.deb",
	},
}

func init() {
	register(&Plan{
		Name:        "deepstream",
		Description: "Install NVIDIA DeepStream SDK with its dependencies",
		Steps:       deepstreamSteps,
	})
}

func deepstreamSteps(h *jetson.Host) []sequence.Step {
	return []sequence.Step{
		checkPlatform(h),
		aptUpdate(h),
		{
			ID: "install-dependencies",
			Action: func(ctx context.Context) error {
				return h.PackageManager().Install(ctx, deepstreamDependencies...)
			},
		},
		{
			ID: "rebuild-glib",
			Action: func(ctx context.Context) error {
				return rebuildGLib(ctx, h)
			},
		},
		{
			ID: "download-deepstream",
			Action: func(ctx context.Context) error {
				release, err := deepstreamReleaseFor(ctx, h)
				if err != nil {
					return err
				}
				return h.Fetcher().Fetch(ctx, release.url, filepath.Join(h.Config().DownloadDir, release.file))
			},
		},
		{
			ID: "install-deepstream",
			Action: func(ctx context.Context) error {
				release, err := deepstreamReleaseFor(ctx, h)
				if err != nil {
					return err
				}
				installer, err := localInstaller(h.PackageManager())
				if err != nil {
					return err
				}
				return installer.InstallLocal(ctx, filepath.Join(h.Config().DownloadDir, release.file))
			},
		},
		{
			ID: "verify-deepstream",
			Action: func(ctx context.Context) error {
				out, err := h.Runner().ExecOutputContext(ctx, "deepstream-app --version")
				if err != nil {
					return fmt.Errorf("deepstream-app not runnable: %w", err)
				}
				h.Log().Info("deepstream installed", log.KeyVersion, out)
				return nil
			},
		},
	}
}

func deepstreamReleaseFor(ctx context.Context, h *jetson.Host) (deepstreamRelease, error) {
	j, err := h.Jetson(ctx)
	if err != nil {
		return deepstreamRelease{}, err
	}
	release, ok := deepstreamReleases[j.JetPack]
	if !ok {
		return deepstreamRelease{}, fmt.Errorf("no deepstream release known for JetPack %d", j.JetPack)
	}
	return release, nil
}

// rebuildGLib builds GLib from source when the system version is too old
// for DeepStream. The version check makes the step idempotent, a rebuilt
// system skips straight through.
func rebuildGLib(ctx context.Context, h *jetson.Host) error {
	required := version.ParseLoose(glibMinVersion)
	out, err := h.Runner().ExecOutputContext(ctx, "pkg-config --modversion glib-2.0")
	var installed version.Version
	if err == nil {
		installed = version.ParseLoose(out)
	}
	if installed.AtLeast(required) {
		h.Log().Info("glib is recent enough, skipping rebuild", log.KeyVersion, installed.String())
		return nil
	}
	h.Log().Info("rebuilding glib from source", log.KeyVersion, glibMinVersion)

	if err := h.PackageManager().Install(ctx, "meson", "ninja-build", "cmake", "libpcre2-dev", "libffi-dev", "libmount-dev"); err != nil {
		return fmt.Errorf("install glib build dependencies: %w", err)
	}

	tarball := filepath.Join(h.Config().DownloadDir, filepath.Base(glibSourceURL))
	if err := h.Fetcher().Fetch(ctx, glibSourceURL, tarball); err != nil {
		return err
	}

	srcdir := "/tmp/glib-" + glibMinVersion
	build := "rm -rf " + shellescape.Quote(srcdir) +
		" && tar -C /tmp -xf " + shellescape.Quote(tarball) +
		" && meson setup " + shellescape.Quote(srcdir+"/_build") + " " + shellescape.Quote(srcdir) + " --prefix=/usr" +
		" && ninja -C " + shellescape.Quote(srcdir+"/_build") +
		" && ninja -C " + shellescape.Quote(srcdir+"/_build") + " install" +
		" && ldconfig"
	if err := h.Sudo().ExecContext(ctx, build, exec.StreamOutput()); err != nil {
		return fmt.Errorf("build glib: %w", err)
	}
	return nil
}
