// Package osrelease detects the host operating system and the Jetson
// platform details the installer needs to pick the right packages.
package osrelease

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jetsonhacks/install-deep-stream/exec"
)

// OSRelease holds the fields of os-release(5) that the installer uses.
type OSRelease struct {
	// Name is a string identifying the operating system without a version
	// component, e.g. "Ubuntu".
	Name string `osrelease:"NAME"`
	// Version identifies the operating system version, e.g. "22.04.4 LTS (Jammy Jellyfish)".
	Version string `osrelease:"VERSION"`
	// ID is a lower-case string identifying the operating system, e.g. "ubuntu".
	ID string `osrelease:"ID"`
	// IDLike is a whitespace-separated list of compatible operating system IDs.
	IDLike string `osrelease:"ID_LIKE"`
	// VersionID identifies the operating system version, e.g. "22.04".
	VersionID string `osrelease:"VERSION_ID"`
	// PrettyName is a name suitable for presentation, e.g. "Ubuntu 22.04.4 LTS".
	PrettyName string `osrelease:"PRETTY_NAME"`
	// Extra holds any other fields present in the file.
	Extra map[string]string
}

// String returns a printable representation of the OSRelease.
func (o OSRelease) String() string {
	switch {
	case o.PrettyName != "":
		return o.PrettyName
	case o.Name != "" && o.VersionID != "":
		return o.Name + " " + o.VersionID
	default:
		return o.Name
	}
}

// IsLike returns true if the OS is or is compatible with the given id.
func (o OSRelease) IsLike(id string) bool {
	if o.ID == id {
		return true
	}
	for _, v := range strings.Fields(o.IDLike) {
		if v == id {
			return true
		}
	}
	return false
}

// Decode decodes an os-release file from an io.Reader.
func Decode(r io.Reader) (*OSRelease, error) {
	osr := &OSRelease{Extra: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "NAME":
			osr.Name = value
		case "VERSION":
			osr.Version = value
		case "ID":
			osr.ID = value
		case "ID_LIKE":
			osr.IDLike = value
		case "VERSION_ID":
			osr.VersionID = value
		case "PRETTY_NAME":
			osr.PrettyName = value
		default:
			osr.Extra[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan os-release: %w", err)
	}
	return osr, nil
}

// DecodeString decodes an os-release file from a string.
func DecodeString(s string) (*OSRelease, error) {
	return Decode(strings.NewReader(s))
}

// Resolve reads the os-release information of the host.
func Resolve(ctx context.Context, runner exec.ContextRunner) (*OSRelease, error) {
	output, err := runner.ExecOutputContext(ctx, "cat /etc/os-release || cat /usr/lib/os-release")
	if err != nil {
		return nil, fmt.Errorf("read os-release: %w", err)
	}
	return DecodeString(output)
}
