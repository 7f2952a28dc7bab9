package plan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/jetsonhacks/install-deep-stream/exec"
	"github.com/jetsonhacks/install-deep-stream/sequence"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// planFile is the YAML shape of a custom plan:
//
//	name: my-setup
//	steps:
//	  - id: refresh
//	    run: apt-get update
//	  - id: kernel-modules
//	    run: apt-get install -y my-modules
//	    requires_reboot: true
type planFile struct {
	Name  string     `yaml:"name"`
	Steps []stepFile `yaml:"steps"`
}

type stepFile struct {
	ID             string `yaml:"id"`
	Run            string `yaml:"run"`
	RequiresReboot bool   `yaml:"requires_reboot"`
}

// Load reads a custom plan from a YAML file. Step commands run through the
// privileged runner, so file authors are expected to write them idempotent
// like built-in steps.
func Load(path string) (*Plan, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand plan path: %w", err)
	}
	// the resume trigger fires in a fresh boot with a different working
	// directory, so the recorded source must be absolute
	source, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolve plan path: %w", err)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	pf := &planFile{}
	if err := yaml.Unmarshal(data, pf); err != nil {
		return nil, fmt.Errorf("parse plan file %s: %w", path, err)
	}
	if pf.Name == "" {
		pf.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	if len(pf.Steps) == 0 {
		return nil, fmt.Errorf("plan file %s has no steps", path)
	}
	for _, step := range pf.Steps {
		if step.ID == "" {
			return nil, fmt.Errorf("plan file %s: step without an id", path)
		}
		// reject commands the shell would not accept
		words, err := shlex.Split(step.Run)
		if err != nil {
			return nil, fmt.Errorf("plan file %s: step %s: malformed command: %w", path, step.ID, err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("plan file %s: step %s: empty command", path, step.ID)
		}
	}

	steps := pf.Steps
	return &Plan{
		Name:        pf.Name,
		Source:      source,
		Description: "custom plan from " + path,
		Steps: func(h *jetson.Host) []sequence.Step {
			built := make([]sequence.Step, 0, len(steps))
			for _, step := range steps {
				run := step.Run
				built = append(built, sequence.Step{
					ID:             step.ID,
					RequiresReboot: step.RequiresReboot,
					Action: func(ctx context.Context) error {
						return h.Sudo().ExecContext(ctx, run, exec.StreamOutput())
					},
				})
			}
			return built
		},
	}, nil
}
