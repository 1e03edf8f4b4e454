package que

import (
	"maps"
	"slices"

	"github.com/pkg/errors"

	"github.com/gpedic/go-que/pkg/que/model"
)

type node[K comparable, V any] struct {
	step Step[K, V]
	next *node[K, V]
}

// Pipeline is an immutable, ordered list of uniquely named steps.
// The zero value is an empty pipeline.
type Pipeline[K comparable, V any] struct {
	// head is the most recently added step, steps are linked in reverse order.
	head  *node[K, V]
	names map[K]struct{}
	size  int
}

// New creates an empty pipeline.
func New[K comparable, V any]() Pipeline[K, V] {
	return Pipeline[K, V]{}
}

// Put returns a pipeline that stores value under name.
func (p Pipeline[K, V]) Put(name K, value V) Pipeline[K, V] {
	return p.add(Step[K, V]{Name: name, Op: Operation[K, V]{kind: model.PutStep, value: value}})
}

// Run returns a pipeline that stores the result of fn under name.
func (p Pipeline[K, V]) Run(name K, fn func(Changes[K, V]) (V, error)) Pipeline[K, V] {
	if fn == nil {
		panic(errors.Wrapf(ErrCallableMustBeSet, "step %v", name))
	}

	return p.RunCallable(name, Func[K, V](fn))
}

// RunTarget returns a pipeline that stores the result of target.method(changes, args...) under name.
// The method is resolved when the step runs. A nil target, typed or not, panics.
func (p Pipeline[K, V]) RunTarget(name K, target any, method string, args ...any) Pipeline[K, V] {
	if isNil(target) {
		panic(errors.Wrapf(ErrTargetMustBeSet, "step %v", name))
	}

	return p.RunCallable(name, Dispatch[K, V]{Target: target, Method: method, Args: args})
}

// RunCallable returns a pipeline that stores the result of call under name.
// The arguments of a Dispatch are copied.
func (p Pipeline[K, V]) RunCallable(name K, call Callable[K, V]) Pipeline[K, V] {
	if call == nil {
		panic(errors.Wrapf(ErrCallableMustBeSet, "step %v", name))
	}

	if d, ok := call.(Dispatch[K, V]); ok {
		d.Args = slices.Clone(d.Args)
		call = d
	}

	return p.add(Step[K, V]{Name: name, Op: Operation[K, V]{kind: model.RunStep, call: call}})
}

// Error returns a pipeline holding a step that already failed with err.
// Exec reports it before running anything.
func (p Pipeline[K, V]) Error(name K, err error) Pipeline[K, V] {
	if err == nil {
		panic(errors.Wrapf(ErrErrorMustBeSet, "step %v", name))
	}

	return p.add(Step[K, V]{Name: name, Op: Operation[K, V]{kind: model.ErrorStep, err: err}})
}

// Inspect returns a pipeline that logs the changes accumulated at this point.
func (p Pipeline[K, V]) Inspect(opts InspectOptions[K]) Pipeline[K, V] {
	opts.Only = slices.Clone(opts.Only)

	return p.prepend(Step[K, V]{Op: Operation[K, V]{kind: model.InspectStep, inspect: opts}}, p.names)
}

func (p Pipeline[K, V]) add(step Step[K, V]) Pipeline[K, V] {
	if _, ok := p.names[step.Name]; ok {
		panic(&DuplicateStepError[K]{Name: step.Name, Steps: p.describe()})
	}

	names := maps.Clone(p.names)
	if names == nil {
		names = make(map[K]struct{}, 1)
	}

	names[step.Name] = struct{}{}

	return p.prepend(step, names)
}

func (p Pipeline[K, V]) prepend(step Step[K, V], names map[K]struct{}) Pipeline[K, V] {
	return Pipeline[K, V]{
		head:  &node[K, V]{step: step, next: p.head},
		names: names,
		size:  p.size + 1,
	}
}

// Steps returns the steps in declaration order.
func (p Pipeline[K, V]) Steps() []Step[K, V] {
	steps := make([]Step[K, V], p.size)

	i := p.size - 1
	for n := p.head; n != nil; n = n.next {
		steps[i] = n.step
		i--
	}

	return steps
}

// Names returns the names of the named steps in declaration order.
func (p Pipeline[K, V]) Names() []K {
	names := make([]K, 0, len(p.names))

	for _, step := range p.Steps() {
		if step.Op.kind != model.InspectStep {
			names = append(names, step.Name)
		}
	}

	return names
}

// Len returns the number of steps, inspect steps included.
func (p Pipeline[K, V]) Len() int {
	return p.size
}

// Has reports whether a step is named name.
func (p Pipeline[K, V]) Has(name K) bool {
	_, ok := p.names[name]

	return ok
}

func (p Pipeline[K, V]) describe() []string {
	steps := p.Steps()
	desc := make([]string, len(steps))

	for i, step := range steps {
		desc[i] = step.String()
	}

	return desc
}
