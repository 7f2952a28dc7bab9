package osrelease

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/version"
)

// ErrNotJetson is returned when the host does not look like a Jetson device.
var ErrNotJetson = errors.New("not a jetson device")

// Jetson holds the platform details of a Jetson host.
type Jetson struct {
	// Model is the device model string, e.g. "NVIDIA Jetson Orin Nano Developer Kit".
	Model string
	// L4T is the Linux for Tegra release, e.g. 36.3.0.
	L4T version.Version
	// JetPack is the JetPack major release matching the L4T version.
	JetPack int
}

func (j Jetson) String() string {
	return fmt.Sprintf("%s (L4T %s, JetPack %d)", j.Model, j.L4T, j.JetPack)
}

// first line of /etc/nv_tegra_release looks like:
// # R36 (release), REVISION: 3.0, GCID: 36106755, BOARD: generic, EABI: aarch64, DATE: ...
var tegraReleaseRe = regexp.MustCompile(`# R(\d+) \(\w+\), REVISION: ([\d.]+)`)

// ParseTegraRelease parses the contents of /etc/nv_tegra_release into an
// L4T version.
func ParseTegraRelease(s string) (version.Version, error) {
	m := tegraReleaseRe.FindStringSubmatch(s)
	if m == nil {
		return version.Version{}, fmt.Errorf("%w: unrecognized nv_tegra_release content", ErrNotJetson)
	}
	return version.Parse(m[1] + "." + m[2])
}

// JetPackMajor maps an L4T major release to the JetPack major release it
// ships with. Zero is returned for releases the installer does not know.
func JetPackMajor(l4t version.Version) int {
	switch l4t.Major() {
	case 36:
		return 6
	case 34, 35:
		return 5
	case 32:
		return 4
	default:
		return 0
	}
}

// ResolveJetson reads the Jetson platform details of the host.
func ResolveJetson(ctx context.Context, runner exec.ContextRunner) (*Jetson, error) {
	release, err := runner.ExecOutputContext(ctx, "cat /etc/nv_tegra_release")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotJetson, err)
	}
	l4t, err := ParseTegraRelease(release)
	if err != nil {
		return nil, err
	}

	model, err := runner.ExecOutputContext(ctx, "tr -d '\\0' < /proc/device-tree/model")
	if err != nil {
		model = "unknown jetson"
	}

	return &Jetson{
		Model:   strings.TrimSpace(model),
		L4T:     l4t,
		JetPack: JetPackMajor(l4t),
	}, nil
}
