package osrelease_test

import (
	"context"
	"testing"

	"github.com/jetsonhacks/install-deep-stream/jetsontest"
	"github.com/jetsonhacks/install-deep-stream/osrelease"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jammyOSRelease = `PRETTY_NAME="Ubuntu 22.04.4 LTS"
NAME="Ubuntu"
VERSION_ID="22.04"
VERSION="22.04.4 LTS (Jammy Jellyfish)"
ID=ubuntu
ID_LIKE=debian
HOME_URL="https://www.ubuntu.com/"
`

const tegraRelease = `# R36 (release), REVISION: 3.0, GCID: 36106755, BOARD: generic, EABI: aarch64, DATE: Thu Apr 18 19:57:24 UTC 2024
`

func TestDecode(t *testing.T) {
	osr, err := osrelease.DecodeString(jammyOSRelease)
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", osr.ID)
	assert.Equal(t, "22.04", osr.VersionID)
	assert.Equal(t, "Ubuntu 22.04.4 LTS", osr.PrettyName)
	assert.Equal(t, "https://www.ubuntu.com/", osr.Extra["HOME_URL"])
	assert.True(t, osr.IsLike("debian"))
	assert.False(t, osr.IsLike("rhel"))
}

func TestResolve(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommandOutput(jetsontest.HasPrefix("cat /etc/os-release"), jammyOSRelease)

	osr, err := osrelease.Resolve(context.Background(), runner)
	require.NoError(t, err)
	assert.Equal(t, "Ubuntu 22.04.4 LTS", osr.String())
}

func TestParseTegraRelease(t *testing.T) {
	l4t, err := osrelease.ParseTegraRelease(tegraRelease)
	require.NoError(t, err)
	assert.Equal(t, "36.3.0", l4t.String())
	assert.Equal(t, 6, osrelease.JetPackMajor(l4t))
}

func TestParseTegraReleaseInvalid(t *testing.T) {
	_, err := osrelease.ParseTegraRelease("no such file")
	require.ErrorIs(t, err, osrelease.ErrNotJetson)
}

func TestResolveJetson(t *testing.T) {
	runner := jetsontest.NewMockRunner()
	runner.AddCommandOutput(jetsontest.HasPrefix("cat /etc/nv_tegra_release"), tegraRelease)
	runner.AddCommandOutput(jetsontest.Contains("device-tree/model"), "NVIDIA Jetson Orin Nano Developer Kit")

	j, err := osrelease.ResolveJetson(context.Background(), runner)
	require.NoError(t, err)
	assert.Equal(t, 6, j.JetPack)
	assert.Equal(t, "NVIDIA Jetson Orin Nano Developer Kit (L4T 36.3.0, JetPack 6)", j.String())
}
