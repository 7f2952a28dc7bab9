// Package exec defines types and functions for running commands.
package exec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jetsonhacks/install-deep-stream/protocol"
)

// ErrInvalidCommand is returned when a command is somehow invalid.
var ErrInvalidCommand = errors.New("invalid command")

// DecorateFunc is a function that takes a command string and returns a
// decorated command string, such as one wrapped in a sudo call.
type DecorateFunc func(string) string

// Formatter is an interface that can format commands.
type Formatter interface {
	Command(cmd string) string
}

// SimpleRunner is a command runner that can run commands without a context.
type SimpleRunner interface {
	fmt.Stringer
	Exec(command string, opts ...ExecOption) error
	ExecOutput(command string, opts ...ExecOption) (string, error)
	ExecReader(command string, opts ...ExecOption) io.Reader
	ExecScanner(command string, opts ...ExecOption) *bufio.Scanner
}

// ContextRunner is a command runner that can run commands with a context.
type ContextRunner interface {
	fmt.Stringer
	ExecContext(ctx context.Context, command string, opts ...ExecOption) error
	ExecOutputContext(ctx context.Context, command string, opts ...ExecOption) (string, error)
	ExecReaderContext(ctx context.Context, command string, opts ...ExecOption) io.Reader
	Start(ctx context.Context, command string, opts ...ExecOption) (protocol.Waiter, error)
}

// Runner is a full featured command runner.
type Runner interface {
	Formatter
	SimpleRunner
	ContextRunner
	// ProcessStarter is included to allow runners to accept another runner
	// as their connection for chaining.
	protocol.ProcessStarter
}
