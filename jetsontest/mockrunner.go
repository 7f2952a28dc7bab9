// Package jetsontest provides testing utilities for mocking the command
// running layer of the installer.
package jetsontest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/protocol"
)

var _ protocol.Connection = (*MockConnection)(nil)

type matcher struct {
	fn       CommandMatcher
	waiterFn CommandHandler
}

// A is the struct passed to the command handling functions.
type A struct {
	// Ctx is the context passed to the command
	Ctx context.Context //nolint:containedctx
	// Stdin is the standard input of the command
	Stdin io.Reader
	// Stdout is the standard output of the command
	Stdout io.Writer
	// Stderr is the standard error of the command
	Stderr io.Writer
	// Command is the command line
	Command string
}

// CommandHandler is a function that handles a mocked command.
type CommandHandler func(a *A) error

// CommandMatcher is a function that checks if a command matches a certain criteria.
type CommandMatcher func(string) bool

// HasPrefix returns a CommandMatcher that checks if a command starts with a given prefix.
func HasPrefix(prefix string) CommandMatcher {
	return func(cmd string) bool {
		return strings.HasPrefix(cmd, prefix)
	}
}

// Contains returns a CommandMatcher that checks if a command contains a given substring.
func Contains(substring string) CommandMatcher {
	return func(cmd string) bool {
		return strings.Contains(cmd, substring)
	}
}

// Equal returns a CommandMatcher that checks if a command equals a given string.
func Equal(str string) CommandMatcher {
	return func(cmd string) bool {
		return cmd == str
	}
}

// Matches returns a CommandMatcher that checks if a command matches a given regular expression.
func Matches(pattern string) CommandMatcher {
	regex := regexp.MustCompile(pattern)
	return func(cmd string) bool {
		return regex.MatchString(cmd)
	}
}

// MockRunner runs commands on a mock connection.
type MockRunner struct {
	exec.Runner
	*MockConnection
}

// NewMockRunner creates a new mock runner.
func NewMockRunner() *MockRunner {
	connection := NewMockConnection()
	return &MockRunner{
		Runner:         exec.NewExecutor(connection),
		MockConnection: connection,
	}
}

// String returns the string representation of the runner.
func (m *MockRunner) String() string {
	return "[MockRunner] " + m.MockConnection.String()
}

// StartProcess starts a process on the mock connection.
func (m *MockRunner) StartProcess(ctx context.Context, cmd string, stdin io.Reader, stdout io.Writer, stderr io.Writer) (protocol.Waiter, error) {
	return m.MockConnection.StartProcess(ctx, cmd, stdin, stdout, stderr)
}

// MockConnection simulates a localhost connection in tests.
type MockConnection struct {
	commands []string
	*MockStarter
	mu sync.Mutex
}

// NewMockConnection creates a new mock connection.
func NewMockConnection() *MockConnection {
	return &MockConnection{
		MockStarter: NewMockStarter(),
	}
}

// String returns the string representation of the connection.
func (m *MockConnection) String() string { return "mockconnection" }

// Protocol returns the protocol of the connection.
func (m *MockConnection) Protocol() string { return "mock" }

// StartProcess simulates a start of a process on the connection.
func (m *MockConnection) StartProcess(ctx context.Context, cmd string, stdin io.Reader, stdout io.Writer, stderr io.Writer) (protocol.Waiter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, cmd)
	return m.MockStarter.StartProcess(ctx, cmd, stdin, stdout, stderr)
}

// Reset clears the command history.
func (m *MockConnection) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = []string{}
}

// Received returns nil if a command matching the matcher was received.
func (m *MockConnection) Received(matchFn CommandMatcher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cmd := range m.commands {
		if matchFn(cmd) {
			return nil
		}
	}
	return errors.New("a matching command was not received")
}

// Len returns the number of commands received.
func (m *MockConnection) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commands)
}

// Commands returns a copy of the commands received.
func (m *MockConnection) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	dup := make([]string, len(m.commands))
	copy(dup, m.commands)
	return dup
}

// LastCommand returns the last command received.
func (m *MockConnection) LastCommand() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.commands) == 0 {
		return ""
	}
	return m.commands[len(m.commands)-1]
}

// MockWaiter is a mock process waiter.
type MockWaiter struct {
	cmd    string
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	ctx    context.Context //nolint:containedctx
	fn     CommandHandler
}

// Wait simulates a process wait.
func (m *MockWaiter) Wait() error {
	return m.fn(&A{Ctx: m.ctx, Stdin: m.in, Stdout: m.out, Stderr: m.errOut, Command: m.cmd})
}

// MockStarter is a mock process starter.
type MockStarter struct {
	ErrImmediate bool
	ErrDefault   error
	matchers     []matcher
}

// NewMockStarter creates a new mock starter.
func NewMockStarter() *MockStarter {
	return &MockStarter{}
}

// StartProcess simulates a start of a process. Add matchers to the starter
// to simulate different behaviors for different commands.
func (m *MockStarter) StartProcess(ctx context.Context, cmd string, stdin io.Reader, stdout io.Writer, stderr io.Writer) (protocol.Waiter, error) {
	if m.ErrImmediate && m.ErrDefault != nil {
		return nil, m.ErrDefault
	}

	for _, matcher := range m.matchers {
		if matcher.waiterFn != nil && matcher.fn(cmd) {
			return &MockWaiter{cmd: cmd, in: stdin, out: stdout, errOut: stderr, ctx: ctx, fn: matcher.waiterFn}, nil
		}
	}

	return &MockWaiter{fn: func(_ *A) error { return m.ErrDefault }}, nil
}

// AddCommand adds a mocked command handler which is called when the matcher
// matches the command line.
func (m *MockStarter) AddCommand(matchFn CommandMatcher, waitFn CommandHandler) {
	m.matchers = append(m.matchers, matcher{fn: matchFn, waiterFn: waitFn})
}

// AddCommandOutput adds a matcher and a handler that writes the given output
// to the stdout of the process.
func (m *MockStarter) AddCommandOutput(matchFn CommandMatcher, output string) {
	m.matchers = append(m.matchers, matcher{fn: matchFn, waiterFn: func(a *A) error {
		_, err := a.Stdout.Write([]byte(output))
		if err != nil {
			return fmt.Errorf("command stdout write: %w", err)
		}
		return nil
	}})
}

// AddCommandFailure adds a matcher and a handler that fails with the given error.
func (m *MockStarter) AddCommandFailure(matchFn CommandMatcher, err error) {
	m.matchers = append(m.matchers, matcher{fn: matchFn, waiterFn: func(_ *A) error {
		return err
	}})
}
