// Package sequence implements a reboot-surviving install sequencer.
//
// A sequence is an ordered list of idempotent steps. When a step requires a
// reboot, the sequencer persists the resume position, registers a one-shot
// resume trigger and reboots the host; the post-boot invocation picks up at
// the recorded step. Each step executes at most once across the whole
// multi-boot run, and no state or trigger residue remains after success or
// failure.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jetsonhacks/install-deep-stream/log"
	"github.com/jetsonhacks/install-deep-stream/state"
	"github.com/jetsonhacks/install-deep-stream/trigger"
)

var (
	// ErrInvalidSequence is returned when a step list can't form a valid
	// sequence.
	ErrInvalidSequence = errors.New("invalid sequence")
	// ErrStepFailed is returned when a step's action fails.
	ErrStepFailed = errors.New("step failed")
	// ErrStateCorrupt is returned when a run state record exists but does
	// not name a known step of this sequence.
	ErrStateCorrupt = errors.New("run state does not match sequence")
)

// Step is one unit of installation work.
//
// Actions must be idempotent: safe to invoke on a system where an earlier
// attempt already partially or fully ran. The sequencer never deduplicates
// side effects, so existence and version checks belong inside the action.
type Step struct {
	// ID uniquely identifies the step within its sequence. It is recorded
	// in the run state, so it must stay stable across releases.
	ID string
	// RequiresReboot makes the host reboot after the step succeeds. The
	// sequence resumes at the following step after the boot.
	RequiresReboot bool
	// Action performs the work of the step.
	Action func(ctx context.Context) error
}

// Status describes where a sequencer is in its lifecycle.
type Status int

const (
	// StatusNotStarted means Run has not been called yet.
	StatusNotStarted Status = iota
	// StatusRunning means a step action is executing.
	StatusRunning
	// StatusAwaitingReboot means a reboot was requested and the sequence
	// continues on the next boot.
	StatusAwaitingReboot
	// StatusCompleted means every step finished successfully.
	StatusCompleted
	// StatusFailed means a step failed and the run was aborted.
	StatusFailed
)

// String returns the status in the form shown to the operator.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusRunning:
		return "running"
	case StatusAwaitingReboot:
		return "awaiting reboot"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}

// Rebooter reboots the host. The production implementation never returns;
// the process ends when the operating system goes down.
type Rebooter interface {
	Reboot(ctx context.Context) error
}

// Sequencer executes a named sequence of steps to completion across reboots.
type Sequencer struct {
	log.LoggerInjectable

	plan     string
	steps    []Step
	store    state.Store
	trigger  trigger.Trigger
	rebooter Rebooter
	status   Status
}

// New validates the step list and returns a Sequencer for it.
func New(plan string, steps []Step, store state.Store, trig trigger.Trigger, rebooter Rebooter) (*Sequencer, error) {
	if plan == "" {
		return nil, fmt.Errorf("%w: plan name is empty", ErrInvalidSequence)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidSequence)
	}
	if store == nil || trig == nil || rebooter == nil {
		return nil, fmt.Errorf("%w: missing store, trigger or rebooter", ErrInvalidSequence)
	}
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		if step.ID == "" {
			return nil, fmt.Errorf("%w: step with empty id", ErrInvalidSequence)
		}
		if step.Action == nil {
			return nil, fmt.Errorf("%w: step %s has no action", ErrInvalidSequence, step.ID)
		}
		if _, ok := seen[step.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate step id %s", ErrInvalidSequence, step.ID)
		}
		seen[step.ID] = struct{}{}
	}
	return &Sequencer{
		plan:     plan,
		steps:    steps,
		store:    store,
		trigger:  trig,
		rebooter: rebooter,
	}, nil
}

// Plan returns the name of the sequence.
func (s *Sequencer) Plan() string {
	return s.plan
}

// Status returns the current lifecycle status.
func (s *Sequencer) Status() Status {
	return s.status
}

func (s *Sequencer) stepIndex(id string) int {
	for i, step := range s.steps {
		if step.ID == id {
			return i
		}
	}
	return -1
}

// startIndex determines where this invocation should start. A resumed run
// consumes its run state record before any step executes, so a crash during
// the resumed run falls back to a fresh start instead of re-running the
// recorded step.
func (s *Sequencer) startIndex() (int, error) {
	rs, err := s.store.Load()
	if errors.Is(err, state.ErrNoState) {
		s.Log().Debug("no run state, starting fresh", log.KeyPlan, s.plan)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStateCorrupt, err)
	}
	if rs.Plan != s.plan {
		return 0, fmt.Errorf("%w: record belongs to plan %q, not %q", ErrStateCorrupt, rs.Plan, s.plan)
	}
	if !rs.InProgress {
		return 0, fmt.Errorf("%w: record is not marked in progress", ErrStateCorrupt)
	}
	idx := s.stepIndex(rs.NextStepID)
	if idx == -1 {
		return 0, fmt.Errorf("%w: unknown step id %q", ErrStateCorrupt, rs.NextStepID)
	}
	if err := s.store.Clear(); err != nil {
		return 0, fmt.Errorf("consume run state: %w", err)
	}
	s.Log().Info("resuming interrupted run", log.KeyPlan, s.plan, log.KeyStep, rs.NextStepID)
	return idx, nil
}

// cleanup removes any run state and resume trigger residue.
func (s *Sequencer) cleanup(ctx context.Context) {
	if err := s.store.Clear(); err != nil {
		s.Log().Warn("failed to clear run state", log.KeyError, err)
	}
	if err := s.trigger.Remove(ctx); err != nil {
		s.Log().Warn("failed to remove resume trigger", log.KeyError, err)
	}
}

// suspend persists the resume position, installs the resume trigger and
// reboots the host. In production the reboot ends the process and this
// function never returns.
func (s *Sequencer) suspend(ctx context.Context, next Step) error {
	if err := s.store.Save(&state.RunState{Plan: s.plan, NextStepID: next.ID, InProgress: true}); err != nil {
		return fmt.Errorf("persist run state: %w", err)
	}
	if err := s.trigger.Install(ctx, s.plan); err != nil {
		return fmt.Errorf("install resume trigger: %w", err)
	}
	s.status = StatusAwaitingReboot
	s.Log().Info("rebooting, run resumes after boot", log.KeyPlan, s.plan, log.KeyStep, next.ID)
	if err := s.rebooter.Reboot(ctx); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}

// Run executes the sequence from the position determined by the run state.
//
// On the first failure the run is aborted, all residue is removed and an
// error wrapping ErrStepFailed is returned; the whole run must then be
// restarted manually from the beginning. A nil return means either the
// sequence completed or a reboot is pending, distinguishable via Status.
func (s *Sequencer) Run(ctx context.Context) error {
	start, err := s.startIndex()
	if err != nil {
		s.status = StatusFailed
		s.cleanup(ctx)
		return err
	}

	for i := start; i < len(s.steps); i++ {
		step := s.steps[i]
		if err := ctx.Err(); err != nil {
			s.status = StatusFailed
			s.cleanup(ctx)
			return fmt.Errorf("%w: %s: %w", ErrStepFailed, step.ID, err)
		}

		s.status = StatusRunning
		s.Log().Info("executing step", log.KeyPlan, s.plan, log.KeyStep, step.ID)
		if err := step.Action(ctx); err != nil {
			s.status = StatusFailed
			s.Log().Error("step failed", log.KeyPlan, s.plan, log.KeyStep, step.ID, log.KeyError, err)
			s.cleanup(ctx)
			return fmt.Errorf("%w: %s: %w", ErrStepFailed, step.ID, err)
		}

		if !step.RequiresReboot {
			continue
		}
		if i == len(s.steps)-1 {
			// nothing left to resume, reboot without leaving residue
			s.cleanup(ctx)
			s.status = StatusAwaitingReboot
			s.Log().Info("rebooting after final step", log.KeyPlan, s.plan, log.KeyStep, step.ID)
			if err := s.rebooter.Reboot(ctx); err != nil {
				return fmt.Errorf("reboot: %w", err)
			}
			return nil
		}
		if err := s.suspend(ctx, s.steps[i+1]); err != nil {
			s.status = StatusFailed
			s.cleanup(ctx)
			return err
		}
		return nil
	}

	s.cleanup(ctx)
	s.status = StatusCompleted
	s.Log().Info("sequence completed", log.KeyPlan, s.plan)
	return nil
}
