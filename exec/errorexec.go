package exec

import (
	"bufio"
	"context"
	"io"

	"github.com/jetsonhacks/install-deep-stream/protocol"
)

// ErrorExecutor is a Runner that returns the same error on every operation.
// Service facades hand one out when collaborator detection has failed, so
// the failure surfaces at the point of use instead of as a nil dereference.
type ErrorExecutor struct {
	Err error
}

// NewErrorExecutor returns a new ErrorExecutor with the given error.
func NewErrorExecutor(err error) *ErrorExecutor {
	return &ErrorExecutor{Err: err}
}

func (r *ErrorExecutor) Command(cmd string) string { return cmd }
func (r *ErrorExecutor) String() string            { return "error-executor" }

func (r *ErrorExecutor) Start(_ context.Context, _ string, _ ...ExecOption) (protocol.Waiter, error) {
	return nil, r.Err
}

func (r *ErrorExecutor) ExecContext(_ context.Context, _ string, _ ...ExecOption) error {
	return r.Err
}

func (r *ErrorExecutor) Exec(_ string, _ ...ExecOption) error { return r.Err }

func (r *ErrorExecutor) ExecOutputContext(_ context.Context, _ string, _ ...ExecOption) (string, error) {
	return "", r.Err
}

func (r *ErrorExecutor) ExecOutput(_ string, _ ...ExecOption) (string, error) {
	return "", r.Err
}

func (r *ErrorExecutor) ExecReaderContext(_ context.Context, _ string, _ ...ExecOption) io.Reader {
	pr, pw := io.Pipe()
	pw.CloseWithError(r.Err)
	return pr
}

func (r *ErrorExecutor) ExecReader(command string, opts ...ExecOption) io.Reader {
	return r.ExecReaderContext(context.Background(), command, opts...)
}

func (r *ErrorExecutor) ExecScannerContext(ctx context.Context, command string, opts ...ExecOption) *bufio.Scanner {
	return bufio.NewScanner(r.ExecReaderContext(ctx, command, opts...))
}

func (r *ErrorExecutor) ExecScanner(command string, opts ...ExecOption) *bufio.Scanner {
	return r.ExecScannerContext(context.Background(), command, opts...)
}

func (r *ErrorExecutor) StartProcess(_ context.Context, _ string, _ io.Reader, _ io.Writer, _ io.Writer) (protocol.Waiter, error) {
	return nil, r.Err
}
