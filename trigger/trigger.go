// Package trigger manages the one-shot activation that re-invokes the
// installer after a reboot.
//
// A trigger is registered with the host's startup mechanism when a step
// requests a reboot and is deregistered once the resumed run completes or
// permanently fails. At most one trigger exists at any time.
package trigger

import (
	"context"
	"errors"
)

// ErrTrigger is returned when a resume trigger can't be installed, queried
// or removed.
var ErrTrigger = errors.New("resume trigger")

// Trigger registers a one-shot activation that resumes an interrupted run
// after the next boot.
type Trigger interface {
	// Install registers the trigger for the named plan, replacing any
	// existing one.
	Install(ctx context.Context, plan string) error
	// Remove deregisters the trigger. Removing an absent trigger is not an
	// error.
	Remove(ctx context.Context) error
	// IsInstalled returns true when a trigger is currently registered.
	IsInstalled(ctx context.Context) (bool, error)
}
