// Package sudo provides support for various methods of running commands
// with elevated privileges.
//
// The installer never re-executes itself to gain privileges. When no method
// is available, operations fail fast with ErrNoSudo and the decision to
// elevate is left to the operator.
package sudo

import (
	"errors"

	"github.com/alessio/shellescape"
	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/plumbing"
)

var (
	// ErrNoSudo is returned when no supported sudo method is found.
	ErrNoSudo = errors.New("no supported sudo method found")

	// DefaultProvider is the default provider of sudo methods.
	DefaultProvider = defaultProvider()
)

// Factory is an alias for plumbing.Factory specialized for sudo runners.
type Factory = plumbing.Factory[exec.Runner, exec.Runner]

// Provider is an alias for plumbing.Provider specialized for sudo runners.
type Provider = plumbing.Provider[exec.Runner, exec.Runner]

// NewProvider creates a new instance of the specialized Provider.
func NewProvider() *Provider {
	return plumbing.NewProvider[exec.Runner, exec.Runner](ErrNoSudo)
}

func defaultProvider() *Provider {
	provider := NewProvider()
	RegisterUID0Noop(provider)
	RegisterSudo(provider)
	RegisterDoas(provider)
	return provider
}

// Sudo is a DecorateFunc that will wrap the given command in a non-interactive
// sudo call.
func Sudo(cmd string) string {
	return `sudo -n -- "${SHELL-sh}" -c ` + shellescape.Quote(cmd)
}

// Doas is a DecorateFunc that will wrap the given command in a doas call.
func Doas(cmd string) string {
	return `doas -n -- "${SHELL-sh}" -c ` + shellescape.Quote(cmd)
}

// Noop is a DecorateFunc that returns the given command unmodified.
func Noop(cmd string) string {
	return cmd
}

// RegisterUID0Noop registers a noop runner factory with the given provider
// which is used when the current user is root.
func RegisterUID0Noop(provider *Provider) {
	provider.Register(func(c exec.Runner) (exec.Runner, bool) {
		if c.Exec(`[ "$(id -u)" = 0 ]`, exec.HideCommand(), exec.HideOutput()) != nil {
			return nil, false
		}
		return exec.NewExecutor(c, Noop), true
	})
}

// RegisterSudo registers a sudo runner factory with the given provider.
func RegisterSudo(provider *Provider) {
	provider.Register(func(c exec.Runner) (exec.Runner, bool) {
		if c.Exec(Sudo("true"), exec.HideCommand(), exec.HideOutput()) != nil {
			return nil, false
		}
		return exec.NewExecutor(c, Sudo), true
	})
}

// RegisterDoas registers a doas runner factory with the given provider.
func RegisterDoas(provider *Provider) {
	provider.Register(func(c exec.Runner) (exec.Runner, bool) {
		if c.Exec(Doas("true"), exec.HideCommand(), exec.HideOutput()) != nil {
			return nil, false
		}
		return exec.NewExecutor(c, Doas), true
	})
}
