package version_test

import (
	"testing"

	"github.com/jetsonhacks/install-deep-stream/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := version.Parse("2.76.6")
	require.NoError(t, err)
	assert.Equal(t, "2.76.6", v.String())
	assert.Equal(t, 2, v.Major())
}

func TestParsePrefixAndSuffix(t *testing.T) {
	v, err := version.Parse("R36.3")
	require.NoError(t, err)
	assert.Equal(t, "36.3", v.String())

	v, err = version.Parse("1.16.3-1ubuntu2.1")
	require.NoError(t, err)
	assert.Equal(t, "1.16.3", v.String())
}

func TestParseInvalid(t *testing.T) {
	_, err := version.Parse("")
	require.ErrorIs(t, err, version.ErrInvalidVersion)

	_, err = version.Parse("not a version")
	require.ErrorIs(t, err, version.ErrInvalidVersion)
}

func TestCompare(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want int
	}{
		{"2.76.6", "2.76.6", 0},
		{"2.76", "2.76.0", 0},
		{"2.76.5", "2.76.6", -1},
		{"2.80.0", "2.76.6", 1},
		{"36.3.0", "35.4.1", 1},
		{"10.1.0", "9.9.9", 1},
	} {
		assert.Equal(t, tc.want, version.ParseLoose(tc.a).Compare(version.ParseLoose(tc.b)), "%s vs %s", tc.a, tc.b)
	}
}

func TestAtLeast(t *testing.T) {
	assert.True(t, version.ParseLoose("2.76.6").AtLeast(version.ParseLoose("2.76.6")))
	assert.True(t, version.ParseLoose("2.80").AtLeast(version.ParseLoose("2.76.6")))
	assert.False(t, version.ParseLoose("2.72.4").AtLeast(version.ParseLoose("2.76.6")))
}

func TestZeroMeansUpdateRequired(t *testing.T) {
	var zero version.Version
	assert.True(t, zero.IsZero())
	assert.Equal(t, "unknown", zero.String())
	// an unknown installed version must never satisfy a requirement
	assert.False(t, zero.AtLeast(version.ParseLoose("0.0.0")))
	assert.False(t, version.ParseLoose("garbage").AtLeast(version.ParseLoose("1.0")))
}
