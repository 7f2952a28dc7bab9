// Package protocol contains the interfaces implemented by process starting
// backends.
package protocol

import (
	"context"
	"fmt"
	"io"
)

// Waiter is a process that can be waited to finish.
type Waiter interface {
	Wait() error
}

// ProcessStarter can start processes.
type ProcessStarter interface {
	StartProcess(ctx context.Context, cmd string, stdin io.Reader, stdout io.Writer, stderr io.Writer) (Waiter, error)
}

// InteractiveExecer is a connection that can start an interactive session.
type InteractiveExecer interface {
	ExecInteractive(cmd string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error
}

// Connection is the minimum interface for process starting backends.
type Connection interface {
	fmt.Stringer
	Protocol() string
	ProcessStarter
}
