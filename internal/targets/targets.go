// Package targets holds the dispatch targets available to pipeline definitions.
//
// Every exported method takes the changes produced so far followed by the
// arguments given in the definition, and returns (any, error).
package targets

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/gpedic/go-que/pkg/que"
)

type Changes = que.Changes[string, any]

var (
	ErrMissingChange = errors.New("missing change")
	ErrNotANumber    = errors.New("not a number")
	ErrUnsetVariable = errors.New("environment variable is not set")
)

// Builtin returns the default targets by name.
func Builtin() map[string]any {
	return map[string]any{
		"env":   &Env{LookupEnv: os.LookupEnv},
		"text":  Text{},
		"math":  Math{},
		"check": Check{},
		"fail":  Fail{},
	}
}

// Methods returns the exported method names of target, sorted.
func Methods(target any) []string {
	typ := reflect.TypeOf(target)
	methods := make([]string, 0, typ.NumMethod())

	for i := range typ.NumMethod() {
		methods = append(methods, typ.Method(i).Name)
	}

	sort.Strings(methods)

	return methods
}

// Env reads environment variables.
type Env struct {
	LookupEnv func(key string) (string, bool)
}

// EnvFromFile returns an Env reading the variables of the dotenv file at path,
// then the process environment.
func EnvFromFile(path string) (*Env, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read env file %s", path)
	}

	return &Env{LookupEnv: func(key string) (string, bool) {
		if value, ok := vars[key]; ok {
			return value, true
		}

		return os.LookupEnv(key)
	}}, nil
}

// Lookup returns the value of the variable key.
func (e *Env) Lookup(_ Changes, key string) (any, error) {
	value, ok := e.LookupEnv(key)
	if !ok {
		return nil, errors.Wrap(ErrUnsetVariable, key)
	}

	return value, nil
}

// Text formats previous results.
type Text struct{}

// Format calls fmt.Sprintf with the results of names.
func (Text) Format(changes Changes, format string, names ...string) (any, error) {
	values, err := lookup(changes, names)
	if err != nil {
		return nil, err
	}

	return fmt.Sprintf(format, values...), nil
}

// Join prints the results of names separated by sep.
func (Text) Join(changes Changes, sep string, names ...string) (any, error) {
	values, err := lookup(changes, names)
	if err != nil {
		return nil, err
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}

	return strings.Join(parts, sep), nil
}

// Math computes over numeric results.
type Math struct{}

// Sum adds the results of names. The sum is an int unless one of them is a float.
func (Math) Sum(changes Changes, names ...string) (any, error) {
	values, err := lookup(changes, names)
	if err != nil {
		return nil, err
	}

	var (
		ints    int64
		floats  float64
		isFloat bool
	)

	for i, v := range values {
		switch n := v.(type) {
		case int:
			ints += int64(n)
		case int64:
			ints += n
		case uint64:
			ints += int64(n) //nolint:gosec // definitions hold small numbers
		case float64:
			floats += n
			isFloat = true
		default:
			return nil, errors.Wrapf(ErrNotANumber, "%s is %T", names[i], v)
		}
	}

	if isFloat {
		return floats + float64(ints), nil
	}

	return int(ints), nil
}

// Check asserts on previous results.
type Check struct{}

// Present fails unless every name has a result.
func (Check) Present(changes Changes, names ...string) (any, error) {
	if _, err := lookup(changes, names); err != nil {
		return nil, err
	}

	return true, nil
}

// Fail always fails.
type Fail struct{}

// Always fails with message.
func (Fail) Always(_ Changes, message string) (any, error) {
	return nil, errors.New(message)
}

func lookup(changes Changes, names []string) ([]any, error) {
	values := make([]any, len(names))

	for i, name := range names {
		value, ok := changes[name]
		if !ok {
			return nil, errors.Wrap(ErrMissingChange, name)
		}

		values[i] = value
	}

	return values, nil
}
