// Package plan defines the installation plans the sequencer executes.
//
// A plan is a named, ordered list of idempotent steps built against a Host.
// The step ids are recorded in the run state, so they must stay stable
// across releases of the installer.
package plan

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/jetsonhacks/install-deep-stream/sequence"
)

// ErrUnknownPlan is returned when a plan name matches neither a built-in
// plan nor a readable plan file.
var ErrUnknownPlan = errors.New("unknown plan")

// Plan builds the steps of one installation.
type Plan struct {
	// Name identifies the plan and is shown in the CLI.
	Name string
	// Source is the absolute path of the plan file for plans loaded from
	// disk, empty for built-in plans.
	Source string
	// Description is a one-line summary shown in the CLI.
	Description string
	// Steps builds the step list against the host.
	Steps func(h *jetson.Host) []sequence.Step
}

// ResumeRef returns the reference the post-reboot invocation passes back to
// Resolve: the source file path for plans loaded from disk, the name for
// built-in plans. A file plan can only be rebuilt from its file, so the run
// state and the resume trigger must carry the path, not the name.
func (p *Plan) ResumeRef() string {
	if p.Source != "" {
		return p.Source
	}
	return p.Name
}

// Sequencer builds a sequencer for the plan on the given host.
func (p *Plan) Sequencer(h *jetson.Host) (*sequence.Sequencer, error) {
	return h.Sequencer(p.ResumeRef(), p.Steps(h))
}

var builtins = map[string]*Plan{}

func register(p *Plan) {
	builtins[p.Name] = p
}

// Builtin returns the built-in plan with the given name.
func Builtin(name string) (*Plan, bool) {
	p, ok := builtins[name]
	return p, ok
}

// Names returns the names of the built-in plans, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the plan for a name: a built-in plan when the name
// matches one, otherwise the name is treated as the path of a plan file.
func Resolve(name string) (*Plan, error) {
	if p, ok := Builtin(name); ok {
		return p, nil
	}
	if _, err := os.Stat(name); err != nil {
		return nil, fmt.Errorf("%w: %q is not one of [%s] and not a readable file", ErrUnknownPlan, name, strings.Join(Names(), ", "))
	}
	return Load(name)
}
