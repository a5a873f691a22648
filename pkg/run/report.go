package run

import (
	"fmt"
	"time"

	"github.com/forgecad/mandrel/pkg/resolve"
	"github.com/forgecad/mandrel/pkg/tree"
)

// Status is the outcome of one plan execution.
type Status int

const (
	// StatusCompleted means every planned step was confirmed.
	StatusCompleted Status = iota
	// StatusPartialFailure means the run stopped at a failing step, leaving
	// the already-confirmed features in the live model.
	StatusPartialFailure
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusPartialFailure:
		return "partial_failure"
	default:
		return "unknown"
	}
}

// StepState tracks a single planned step through the sequencer.
type StepState int

const (
	StepPending StepState = iota
	StepResolving
	StepExecuting
	StepConfirmed
	StepAborted
)

func (s StepState) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepResolving:
		return "resolving"
	case StepExecuting:
		return "executing"
	case StepConfirmed:
		return "confirmed"
	case StepAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// StepFailure identifies the failing step of a partial run.
type StepFailure struct {
	Index int // 0-based plan index
	Err   error
}

func (f StepFailure) Error() string {
	return fmt.Sprintf("step %d: %v", f.Index, f.Err)
}

// Unwrap exposes the underlying resolution or kernel error.
func (f StepFailure) Unwrap() error { return f.Err }

// Report is the result of one run. A run either fully completes or stops at
// the first unrecoverable error; confirmed features are never rolled back.
type Report struct {
	RunID     string
	Status    Status
	Confirmed []tree.FeatureNode        // in creation order
	Resolved  []resolve.ResolvedFeature // audit trail of confirmed steps
	Failing   *StepFailure              // set when Status is StatusPartialFailure
	Duration  time.Duration
}

// KernelCallError wraps a collaborator failure with the operation that
// produced it.
type KernelCallError struct {
	Op  string
	Err error
}

func (e KernelCallError) Error() string {
	return fmt.Sprintf("kernel %s: %v", e.Op, e.Err)
}

// Unwrap exposes the collaborator-defined error.
func (e KernelCallError) Unwrap() error { return e.Err }
