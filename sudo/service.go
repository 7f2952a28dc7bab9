package sudo

import (
	"fmt"

	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/plumbing"
)

// SudoProvider returns a privileged runner when given a plain runner.
type SudoProvider interface { //nolint:revive // stutter accepted for clarity at call sites
	Get(runner exec.Runner) (exec.Runner, error)
}

// Service provides a lazily initialized privileged runner.
type Service struct {
	lazy *plumbing.LazyService[exec.Runner, exec.Runner]
}

// GetSudoRunner returns a runner with a sudo decorator or an error if no
// method of elevation is available.
func (s *Service) GetSudoRunner() (exec.Runner, error) {
	runner, err := s.lazy.Get()
	if err != nil {
		return nil, fmt.Errorf("get sudo runner: %w", err)
	}
	return runner, nil
}

// SudoRunner returns a runner with a sudo decorator. If the runner
// initialization failed, an error runner is returned which will return the
// initialization error on every operation that is attempted on it.
func (s *Service) SudoRunner() exec.Runner {
	runner, err := s.lazy.Get()
	if err != nil {
		return exec.NewErrorExecutor(err)
	}
	return runner
}

// NewSudoService creates a new instance of Service with the provided
// provider and runner.
func NewSudoService(provider SudoProvider, runner exec.Runner) *Service {
	return &Service{plumbing.NewLazyService[exec.Runner, exec.Runner](provider, runner)}
}
