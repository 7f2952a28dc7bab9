package packagemanager_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/jetsontest"
	"github.com/jetsonhacks/install-deep-stream/packagemanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceDetectsApt(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommand(jetsontest.Equal("command -v apt-get"), func(_ *jetsontest.A) error {
		return nil
	})
	runner.AddCommand(jetsontest.Contains("apt-get install"), func(_ *jetsontest.A) error {
		return nil
	})
	conn := runner.MockConnection

	svc := packagemanager.NewPackageManagerService(packagemanager.DefaultProvider(), runner)

	pm, err := svc.GetPackageManager()
	require.NoError(t, err)
	require.NotNil(t, pm)

	require.NoError(t, pm.Install(context.Background(), "libgstreamer1.0-0", "libssl3"))
	require.NoError(t, conn.Received(jetsontest.Contains("apt-get install -y libgstreamer1.0-0 libssl3")))
	require.NoError(t, conn.Received(jetsontest.Contains("DEBIAN_FRONTEND=noninteractive")))
}

func TestServiceDetectionFailure(t *testing.T) {
	mockErr := errors.New("mock error")
	runner := jetsontest.NewMockRunner()
	runner.ErrDefault = mockErr

	svc := packagemanager.NewPackageManagerService(packagemanager.DefaultProvider(), runner)

	pm, err := svc.GetPackageManager()
	require.ErrorIs(t, err, packagemanager.ErrNoPackageManager)
	require.Nil(t, pm)

	require.NotNil(t, svc.PackageManager())
	err = svc.PackageManager().Install(context.Background(), "deepstream-7.0")
	require.ErrorContains(t, err, "get package manager")

	for _, c := range runner.Commands() {
		assert.NotContains(t, c, "deepstream-7.0")
	}
}

func TestAptInstallLocal(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	apt := packagemanager.NewApt(runner)

	require.NoError(t, apt.InstallLocal(context.Background(), "/tmp/deepstream-7.0_arm64.deb"))
	require.NoError(t, runner.Received(jetsontest.Contains("apt-get install -y /tmp/deepstream-7.0_arm64.deb")))
}

func TestAptRemoveSkipsAbsent(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommand(jetsontest.HasPrefix("dpkg -s installed-pkg"), func(_ *jetsontest.A) error {
		return nil
	})
	runner.AddCommandFailure(jetsontest.HasPrefix("dpkg -s missing-pkg"), errors.New("not installed"))
	runner.AddCommand(jetsontest.Contains("apt-get remove"), func(_ *jetsontest.A) error {
		return nil
	})
	apt := packagemanager.NewApt(runner)

	require.NoError(t, apt.Remove(context.Background(), "installed-pkg", "missing-pkg"))
	require.NoError(t, runner.Received(jetsontest.Contains("apt-get remove -y installed-pkg")))
	require.Error(t, runner.Received(jetsontest.Contains("remove -y missing-pkg")))
}

func TestAptRemoveAllAbsent(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommandFailure(jetsontest.HasPrefix("dpkg -s"), errors.New("not installed"))
	apt := packagemanager.NewApt(runner)

	// uninstall-if-present is a no-op when nothing is installed
	require.NoError(t, apt.Remove(context.Background(), "ghost"))
	require.Error(t, runner.Received(jetsontest.Contains("apt-get remove")))
}

func TestPipBreakSystemPackages(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	pip := packagemanager.NewPip(runner, packagemanager.BreakSystemPackages())

	require.NoError(t, pip.Install(context.Background(), "ultralytics"))
	require.NoError(t, runner.Received(jetsontest.Equal("python3 -m pip install --break-system-packages ultralytics")))
}

func TestPipRemoveTolerant(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommandFailure(jetsontest.Contains("pip show"), errors.New("not found"))
	pip := packagemanager.NewPip(runner)

	require.NoError(t, pip.Remove(context.Background(), "onnxruntime"))
	require.Error(t, runner.Received(jetsontest.Contains("uninstall")))
}

var _ exec.ContextRunner = (*jetsontest.MockRunner)(nil)
