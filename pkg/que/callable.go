package que

import (
	"fmt"
	"reflect"
)

// Changes maps step names to the values they produced.
type Changes[K comparable, V any] map[K]V

// Callable is the computation of a run step. It receives the changes produced so far
// and returns the value to store under the step name, or an error to stop the pipeline.
type Callable[K comparable, V any] interface {
	Invoke(changes Changes[K, V]) (V, error)
}

// Func adapts a plain function to a Callable.
type Func[K comparable, V any] func(changes Changes[K, V]) (V, error)

// Invoke calls f.
func (f Func[K, V]) Invoke(changes Changes[K, V]) (V, error) {
	return f(changes)
}

// Dispatch is a late-bound Callable. The exported method Method is looked up on Target
// when the step runs and called with the changes map followed by Args.
//
// The method must accept Changes[K, V] (or any type it is assignable to) as its first
// parameter and return exactly (V, error). Any other shape is a programming error and
// panics with a MalformedResultError.
type Dispatch[K comparable, V any] struct {
	Target any
	Method string
	Args   []any
}

// Invoke resolves and calls the method.
func (d Dispatch[K, V]) Invoke(changes Changes[K, V]) (V, error) {
	var step K

	return d.invokeStep(step, changes)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// isNil reports whether v is nil or holds a nil pointer, map, slice, func, channel or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // other kinds cannot be nil
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}

	return false
}

func (d Dispatch[K, V]) invokeStep(step K, changes Changes[K, V]) (V, error) {
	var value V

	if isNil(d.Target) {
		panic(&MalformedResultError[K]{Step: step, Reason: ErrTargetMustBeSet.Error()})
	}

	method := reflect.ValueOf(d.Target).MethodByName(d.Method)
	if !method.IsValid() {
		panic(&MalformedResultError[K]{
			Step:   step,
			Reason: fmt.Sprintf("%T has no exported method %q", d.Target, d.Method),
		})
	}

	in, reason := d.arguments(method.Type(), changes)
	if reason != "" {
		panic(&MalformedResultError[K]{Step: step, Reason: fmt.Sprintf("%T.%s: %s", d.Target, d.Method, reason)})
	}

	out := method.Call(in)

	valueType := reflect.TypeOf((*V)(nil)).Elem()
	if len(out) != 2 || !out[0].Type().AssignableTo(valueType) || out[1].Type() != errorType {
		result := make([]any, len(out))
		for i, o := range out {
			result[i] = o.Interface()
		}

		panic(&MalformedResultError[K]{
			Step:   step,
			Result: result,
			Reason: fmt.Sprintf("%T.%s must return (%v, error)", d.Target, d.Method, valueType),
		})
	}

	reflect.ValueOf(&value).Elem().Set(out[0])

	if out[1].IsNil() {
		return value, nil
	}

	return value, out[1].Interface().(error) //nolint:forcetypeassert // checked above
}

// arguments builds the call arguments, or returns why the method cannot take them.
func (d Dispatch[K, V]) arguments(methodType reflect.Type, changes Changes[K, V]) ([]reflect.Value, string) {
	total := len(d.Args) + 1
	numIn := methodType.NumIn()

	switch {
	case methodType.IsVariadic() && total < numIn-1:
		return nil, fmt.Sprintf("takes at least %d arguments, got %d", numIn-1, total)
	case !methodType.IsVariadic() && total != numIn:
		return nil, fmt.Sprintf("takes %d arguments, got %d", numIn, total)
	}

	paramType := func(i int) reflect.Type {
		if methodType.IsVariadic() && i >= numIn-1 {
			return methodType.In(numIn - 1).Elem()
		}

		return methodType.In(i)
	}

	in := make([]reflect.Value, 0, total)

	changesValue := reflect.ValueOf(changes)
	if !changesValue.Type().AssignableTo(paramType(0)) {
		return nil, fmt.Sprintf("first parameter must accept %v, has %v", changesValue.Type(), paramType(0))
	}

	in = append(in, changesValue)

	for i, arg := range d.Args {
		want := paramType(i + 1)

		if arg == nil {
			switch want.Kind() { //nolint:exhaustive // only nillable kinds accept nil
			case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
				in = append(in, reflect.Zero(want))

				continue
			}

			return nil, fmt.Sprintf("argument %d is nil, parameter is %v", i+1, want)
		}

		argValue := reflect.ValueOf(arg)
		if !argValue.Type().AssignableTo(want) {
			return nil, fmt.Sprintf("argument %d is %v, parameter is %v", i+1, argValue.Type(), want)
		}

		in = append(in, argValue)
	}

	return in, ""
}
