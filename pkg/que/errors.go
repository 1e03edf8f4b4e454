package que

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrCallableMustBeSet = errors.New("callable must be set")
	ErrErrorMustBeSet    = errors.New("error must be set")
	ErrTargetMustBeSet   = errors.New("target must be set")
)

// StepError is returned by Exec when a step fails.
type StepError[K comparable, V any] struct {
	// Step is the name of the failing step.
	Step K
	// Err is the error returned by the step.
	Err error
	// Changes holds the results of the steps that ran before the failing one.
	// It is empty when the failure was detected before execution started.
	Changes Changes[K, V]
	// Prevalidated is set when the step was rejected before any step ran.
	Prevalidated bool
}

func (e *StepError[K, V]) Error() string {
	return fmt.Sprintf("step %v failed: %v", e.Step, e.Err)
}

func (e *StepError[K, V]) Unwrap() error {
	return e.Err
}

// DuplicateStepError is the panic value raised when a step name is added twice.
type DuplicateStepError[K comparable] struct {
	Name  K
	Steps []string
}

func (e *DuplicateStepError[K]) Error() string {
	return fmt.Sprintf("step %v is already defined in pipeline [%s]", e.Name, strings.Join(e.Steps, ", "))
}

// MalformedResultError is the panic value raised when a dispatched method cannot
// be called with the changes map or does not return exactly a value and an error.
type MalformedResultError[K comparable] struct {
	Step   K
	Reason string
	// Result holds what the method returned, if it was called.
	Result []any
}

func (e *MalformedResultError[K]) Error() string {
	if e.Result == nil {
		return fmt.Sprintf("step %v: %s", e.Step, e.Reason)
	}

	return fmt.Sprintf("step %v returned %v: %s", e.Step, e.Result, e.Reason)
}
