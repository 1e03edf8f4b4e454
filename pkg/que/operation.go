package que

import (
	"fmt"
	"slices"

	"github.com/gpedic/go-que/pkg/que/model"
)

// Operation is the work attached to a step. Its Kind tells which accessor is meaningful.
type Operation[K comparable, V any] struct {
	kind    model.StepKind
	value   V
	call    Callable[K, V]
	inspect InspectOptions[K]
	err     error
}

// Kind returns the operation tag.
func (o Operation[K, V]) Kind() model.StepKind {
	return o.kind
}

// Value returns the literal value of a put operation.
func (o Operation[K, V]) Value() V {
	return o.value
}

// Callable returns the computation of a run operation.
func (o Operation[K, V]) Callable() Callable[K, V] {
	if d, ok := o.call.(Dispatch[K, V]); ok {
		d.Args = slices.Clone(d.Args)

		return d
	}

	return o.call
}

// InspectOptions returns the options of an inspect operation.
func (o Operation[K, V]) InspectOptions() InspectOptions[K] {
	return InspectOptions[K]{Only: slices.Clone(o.inspect.Only)}
}

// Err returns the error of an error operation.
func (o Operation[K, V]) Err() error {
	return o.err
}

func (o Operation[K, V]) String() string {
	switch o.kind {
	case model.PutStep:
		return fmt.Sprintf("put(%v)", o.value)
	case model.RunStep:
		if d, ok := o.call.(Dispatch[K, V]); ok {
			return fmt.Sprintf("run(%T.%s)", d.Target, d.Method)
		}

		return "run"
	case model.InspectStep:
		if len(o.inspect.Only) > 0 {
			return fmt.Sprintf("inspect(only: %v)", o.inspect.Only)
		}

		return "inspect"
	case model.ErrorStep:
		return fmt.Sprintf("error(%v)", o.err)
	}

	return string(o.kind)
}

// Step is a named operation.
type Step[K comparable, V any] struct {
	// Name is the zero value for inspect steps.
	Name K
	Op   Operation[K, V]
}

func (s Step[K, V]) String() string {
	if s.Op.kind == model.InspectStep {
		return s.Op.String()
	}

	return fmt.Sprintf("%v: %s", s.Name, s.Op)
}

// Validator is implemented by put values that carry their own validity, such as changesets.
// A put value whose Validate method returns an error fails the pipeline before any step runs.
// Nil values are not validated.
type Validator interface {
	Validate() error
}
