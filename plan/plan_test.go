package plan_test

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/jetsonhacks/install-deep-stream/download"
	"github.com/jetsonhacks/install-deep-stream/jetsontest"
	"github.com/jetsonhacks/install-deep-stream/plan"
	"github.com/jetsonhacks/install-deep-stream/sequence"
	"github.com/jetsonhacks/install-deep-stream/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tegraReleaseJP6 = "# R36 (release), REVISION: 3.0, GCID: 36106755, BOARD: generic, EABI: aarch64, DATE: Thu Apr 18 19:57:24 UTC 2024\n"

const osReleaseJammy = `NAME="Ubuntu"
ID=ubuntu
ID_LIKE=debian
VERSION_ID="22.04"
PRETTY_NAME="Ubuntu 22.04.4 LTS"
`

// fakeTransport serves every request with a canned body so download steps
// never touch the network.
type fakeTransport struct{}

func (fakeTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode:    http.StatusOK,
		Status:        "200 OK",
		Body:          io.NopCloser(strings.NewReader("archive contents")),
		ContentLength: int64(len("archive contents")),
		Request:       r,
	}, nil
}

// recordingTrigger stands in for the systemd resume trigger so tests can
// inspect the reference the sequencer hands to it.
type recordingTrigger struct {
	installed bool
	ref       string
}

func (r *recordingTrigger) Install(_ context.Context, plan string) error {
	r.installed = true
	r.ref = plan
	return nil
}

func (r *recordingTrigger) Remove(context.Context) error {
	r.installed = false
	return nil
}

func (r *recordingTrigger) IsInstalled(context.Context) (bool, error) {
	return r.installed, nil
}

type countingRebooter struct{ reboots int }

func (c *countingRebooter) Reboot(context.Context) error {
	c.reboots++
	return nil
}

func testHost(t *testing.T, runner *jetsontest.MockRunner, opts ...jetson.Option) *jetson.Host {
	t.Helper()
	runner.AddCommandOutput(jetsontest.HasPrefix("cat /etc/os-release"), osReleaseJammy)
	runner.AddCommandOutput(jetsontest.HasPrefix("cat /etc/nv_tegra_release"), tegraReleaseJP6)
	runner.AddCommandOutput(jetsontest.Contains("device-tree/model"), "NVIDIA Jetson Orin Nano Developer Kit")

	cfg := &jetson.Config{
		StatePath:       filepath.Join(t.TempDir(), "state.json"),
		LogPath:         filepath.Join(t.TempDir(), "install.log"),
		DownloadDir:     t.TempDir(),
		ExecPath:        "/usr/local/bin/jetson-install",
		DownloadRetries: 1,
	}
	opts = append([]jetson.Option{
		jetson.WithRunner(runner),
		jetson.WithFetcher(download.NewFetcher(download.WithClient(&http.Client{Transport: fakeTransport{}}))),
	}, opts...)
	h, err := jetson.NewHost(cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, h.Connect(context.Background()))
	return h
}

func findStep(t *testing.T, steps []sequence.Step, id string) sequence.Step {
	t.Helper()
	for _, s := range steps {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("step %s not found", id)
	return sequence.Step{}
}

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"deepstream", "ultralytics"}, plan.Names())

	p, err := plan.Resolve("deepstream")
	require.NoError(t, err)
	assert.Equal(t, "deepstream", p.Name)
	assert.Equal(t, "deepstream", p.ResumeRef(), "built-in plans resume by name")

	_, err = plan.Resolve("nonexistent")
	require.ErrorIs(t, err, plan.ErrUnknownPlan)
}

func TestDeepstreamGLibSkippedWhenRecent(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommandOutput(jetsontest.HasPrefix("pkg-config --modversion glib-2.0"), "2.80.0\n")
	h := testHost(t, runner)

	p, _ := plan.Builtin("deepstream")
	step := findStep(t, p.Steps(h), "rebuild-glib")
	require.NoError(t, step.Action(context.Background()))
	require.Error(t, runner.Received(jetsontest.Contains("meson")), "no build should happen on a recent glib")
}

func TestDeepstreamGLibRebuiltWhenOld(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommandOutput(jetsontest.HasPrefix("pkg-config --modversion glib-2.0"), "2.72.4\n")
	h := testHost(t, runner)

	p, _ := plan.Builtin("deepstream")
	step := findStep(t, p.Steps(h), "rebuild-glib")
	require.NoError(t, step.Action(context.Background()))

	require.NoError(t, runner.Received(jetsontest.Contains("apt-get install -y meson")))
	require.NoError(t, runner.Received(jetsontest.Contains("meson setup")))
	require.NoError(t, runner.Received(jetsontest.Contains("ninja")))

	_, err := os.Stat(filepath.Join(h.Config().DownloadDir, "glib-2.76.6.tar.xz"))
	require.NoError(t, err, "glib source should have been downloaded")
}

func TestDeepstreamDownloadAndInstall(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	h := testHost(t, runner)

	p, _ := plan.Builtin("deepstream")
	steps := p.Steps(h)

	require.NoError(t, findStep(t, steps, "download-deepstream").Action(context.Background()))
	deb := filepath.Join(h.Config().DownloadDir, "deepstream-7.0_7.0.0-1_arm64.deb")
	_, err := os.Stat(deb)
	require.NoError(t, err)

	require.NoError(t, findStep(t, steps, "install-deepstream").Action(context.Background()))
	require.NoError(t, runner.Received(jetsontest.Contains("apt-get install -y "+deb)))
}

func TestUltralyticsPipOnJetPack6(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	h := testHost(t, runner)

	p, _ := plan.Builtin("ultralytics")
	step := findStep(t, p.Steps(h), "pip-install-ultralytics")
	require.NoError(t, step.Action(context.Background()))
	require.NoError(t, runner.Received(jetsontest.Equal("python3 -m pip install --break-system-packages ultralytics")))
}

func TestUltralyticsRebootStep(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	h := testHost(t, runner)

	p, _ := plan.Builtin("ultralytics")
	steps := p.Steps(h)

	var rebootIdx, verifyIdx int
	for i, s := range steps {
		switch s.ID {
		case "configure-cuda-paths":
			rebootIdx = i
			assert.True(t, s.RequiresReboot)
		case "verify-ultralytics":
			verifyIdx = i
		}
	}
	assert.Greater(t, verifyIdx, rebootIdx, "verification belongs to the post-reboot phase")
}

func TestCheckPlatformRejectsNonJetson(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommandOutput(jetsontest.HasPrefix("cat /etc/os-release"), osReleaseJammy)
	runner.AddCommandFailure(jetsontest.HasPrefix("cat /etc/nv_tegra_release"), os.ErrNotExist)

	cfg := &jetson.Config{StatePath: filepath.Join(t.TempDir(), "s.json"), DownloadDir: t.TempDir(), ExecPath: "x", DownloadRetries: 1}
	h, err := jetson.NewHost(cfg, jetson.WithRunner(runner))
	require.NoError(t, err)
	require.NoError(t, h.Connect(context.Background()))

	p, _ := plan.Builtin("deepstream")
	step := findStep(t, p.Steps(h), "check-platform")
	require.Error(t, step.Action(context.Background()))
}

func TestLoadCustomPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: my-setup
steps:
  - id: refresh
    run: apt-get update
  - id: kernel-modules
    run: apt-get install -y extra-modules
    requires_reboot: true
`), 0o644))

	p, err := plan.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "my-setup", p.Name)

	runner := jetsontest.NewMockRunner()
	h := testHost(t, runner)
	steps := p.Steps(h)
	require.Len(t, steps, 2)
	assert.True(t, steps[1].RequiresReboot)

	require.NoError(t, steps[0].Action(context.Background()))
	require.NoError(t, runner.Received(jetsontest.Equal("apt-get update")))
}

func TestCustomPlanResumesByFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my-setup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: my-setup
steps:
  - id: kernel-modules
    run: apt-get install -y extra-modules
    requires_reboot: true
  - id: verify
    run: modinfo extra-modules
`), 0o644))

	p, err := plan.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "my-setup", p.Name)
	assert.Equal(t, path, p.ResumeRef(), "a file plan can only be rebuilt from its path")

	trig := &recordingTrigger{}
	rebooter := &countingRebooter{}
	runner := jetsontest.NewMockRunner()
	h := testHost(t, runner, jetson.WithTrigger(trig), jetson.WithRebooter(rebooter))

	seq, err := p.Sequencer(h)
	require.NoError(t, err)
	require.NoError(t, seq.Run(context.Background()))
	require.Equal(t, sequence.StatusAwaitingReboot, seq.Status())
	require.Equal(t, 1, rebooter.reboots)
	assert.Equal(t, path, trig.ref, "the trigger must carry the plan file path, not the name")

	rs, err := h.Store().Load()
	require.NoError(t, err)
	assert.Equal(t, path, rs.Plan)
	assert.Equal(t, "verify", rs.NextStepID)

	// post-boot invocation: the trigger's reference resolves to the same plan
	resumed, err := plan.Resolve(trig.ref)
	require.NoError(t, err)
	seq, err = resumed.Sequencer(h)
	require.NoError(t, err)
	require.NoError(t, seq.Run(context.Background()))
	assert.Equal(t, sequence.StatusCompleted, seq.Status())

	var installs, verifies int
	for _, cmd := range runner.Commands() {
		switch cmd {
		case "apt-get install -y extra-modules":
			installs++
		case "modinfo extra-modules":
			verifies++
		}
	}
	assert.Equal(t, 1, installs, "the pre-reboot step must not re-run on resume")
	assert.Equal(t, 1, verifies)
	assert.False(t, trig.installed, "no trigger residue after completion")
	_, err = h.Store().Load()
	require.ErrorIs(t, err, state.ErrNoState)
}

func TestLoadCustomPlanNameDefaultsToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site-setup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - id: one\n    run: \"true\"\n"), 0o644))

	p, err := plan.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "site-setup", p.Name)
}

func TestLoadCustomPlanRejectsMalformedCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - id: one\n    run: \"echo 'unclosed\"\n"), 0o644))

	_, err := plan.Load(path)
	require.Error(t, err)
}

func TestLoadCustomPlanRejectsEmptySteps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: empty\n"), 0o644))

	_, err := plan.Load(path)
	require.Error(t, err)
}
