// Package version provides ordered comparison of dotted version strings as
// reported by tools like pkg-config and apt. The grammar is deliberately
// loose: "2.76.6", "R36.3.0" and "1.16.3-1ubuntu2" all parse.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a string contains no version number at all.
var ErrInvalidVersion = errors.New("invalid version")

// Version is an ordered tuple of numeric version components. The zero value
// compares older than any real version, so a missing or unreadable version
// naturally means "update required".
type Version struct {
	parts []int
	raw   string
}

// Parse parses a dotted version string. A leading non-numeric prefix (like
// the R in R36) and anything after the first character that is neither a
// digit nor a dot is ignored.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	start := strings.IndexFunc(trimmed, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if start == -1 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	trimmed = trimmed[start:]
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end != -1 {
		trimmed = trimmed[:end]
	}

	var parts []int
	for _, p := range strings.Split(trimmed, ".") {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		parts = append(parts, n)
	}
	if len(parts) == 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return Version{parts: parts, raw: strings.TrimSpace(s)}, nil
}

// ParseLoose parses a dotted version string, returning the zero Version for
// anything unparsable.
func ParseLoose(s string) Version {
	v, err := Parse(s)
	if err != nil {
		return Version{}
	}
	return v
}

// IsZero returns true for an empty version.
func (v Version) IsZero() bool {
	return len(v.parts) == 0
}

// Major returns the first version component, or zero for an empty version.
func (v Version) Major() int {
	if len(v.parts) == 0 {
		return 0
	}
	return v.parts[0]
}

// String returns the version in dotted form.
func (v Version) String() string {
	if len(v.parts) == 0 {
		return "unknown"
	}
	strs := make([]string, len(v.parts))
	for i, p := range v.parts {
		strs[i] = strconv.Itoa(p)
	}
	return strings.Join(strs, ".")
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than
// other. Missing components compare as zero, so 2.76 equals 2.76.0.
func (v Version) Compare(other Version) int {
	n := len(v.parts)
	if len(other.parts) > n {
		n = len(other.parts)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.parts) {
			a = v.parts[i]
		}
		if i < len(other.parts) {
			b = other.parts[i]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// AtLeast returns true if v is the same as or newer than other. An empty v
// is never at least anything.
func (v Version) AtLeast(other Version) bool {
	if v.IsZero() {
		return false
	}
	return v.Compare(other) >= 0
}
