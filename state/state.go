// Package state persists the sequencer's resume position across reboots.
//
// The record is a small JSON file at a well-known location. Its absence is
// the signal "start from the beginning"; its presence names the step the
// next invocation should resume at.
package state

import (
	"errors"
	"time"
)

var (
	// ErrNoState is returned by Load when no run state record exists.
	ErrNoState = errors.New("no run state")
	// ErrCorrupt is returned when a run state record exists but can't be
	// decoded. A corrupt record is fatal, it is never guessed around.
	ErrCorrupt = errors.New("corrupt run state")
)

// RunState is the durable record of an interrupted run.
type RunState struct {
	// Plan is the resume reference of the plan being executed: a built-in
	// plan name or the absolute path of a plan file.
	Plan string `json:"plan"`
	// NextStepID is the id of the step to execute on the next invocation.
	NextStepID string `json:"next_step_id"`
	// InProgress is always written true; the sequencer rejects a record
	// without it as corrupt.
	InProgress bool `json:"in_progress"`
	// CreatedAt is the time the record was written.
	CreatedAt time.Time `json:"created_at"`
}

// Store provides durable storage for the run state record.
type Store interface {
	// Load returns the stored run state, ErrNoState when none exists or
	// ErrCorrupt when the record can't be decoded.
	Load() (*RunState, error)
	// Save writes the run state record, replacing any existing one.
	Save(rs *RunState) error
	// Clear removes the run state record. Clearing an absent record is not
	// an error.
	Clear() error
}
