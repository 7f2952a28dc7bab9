// Package localhost provides a protocol implementation for the local host
// using the os/exec package. The installer always runs on the Jetson it is
// installing to, so this is the only protocol.
package localhost

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jetsonhacks/install-deep-stream/protocol"
	"github.com/kballard/go-shellquote"
)

// Connection is a direct localhost connection.
type Connection struct{}

// NewConnection creates a new localhost connection. Error is currently always nil.
func NewConnection() (*Connection, error) {
	return &Connection{}, nil
}

// Protocol returns the protocol name, "Local".
func (c *Connection) Protocol() string {
	return "Local"
}

// String returns the connection's printable name.
func (c *Connection) String() string {
	return "localhost"
}

// StartProcess starts a command on the host and uses the passed in streams
// for stdin, stdout and stderr. It returns a Waiter whose Wait() blocks
// until the command finishes and returns an error if the exit code is not
// zero.
func (c *Connection) StartProcess(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (protocol.Waiter, error) {
	command := exec.CommandContext(ctx, "sh", "-c", "--", cmd)
	command.Stdin = stdin
	command.Stdout = stdout
	command.Stderr = stderr

	if err := command.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	return command, nil
}

// ExecInteractive executes a command on the host, passing the process
// streams through as-is. An empty command starts a login shell.
func (c *Connection) ExecInteractive(cmd string, stdin io.Reader, stdout, stderr io.Writer) error {
	if cmd == "" {
		cmd = os.Getenv("SHELL") + " -l"
	}

	parts, err := shellquote.Split(cmd)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}

	command := exec.Command(parts[0], parts[1:]...)
	command.Stdin = stdin
	command.Stdout = stdout
	command.Stderr = stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("interactive command: %w", err)
	}
	return nil
}
