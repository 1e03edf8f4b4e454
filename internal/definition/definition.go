// Package definition decodes YAML pipeline definitions and builds them into pipelines.
package definition

import (
	"io"
	"os"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gpedic/go-que/pkg/que"
)

var (
	ErrAmbiguousStep = errors.New("step must hold exactly one of put, run, inspect, error")
	ErrDuplicateName = errors.New("duplicate step name")
	ErrUnknownTarget = errors.New("unknown target")
	ErrUnknownMethod = errors.New("unknown method")
)

// Definition is a named list of steps.
type Definition struct {
	Name  string `yaml:"name"  validate:"required"`
	Steps []Step `yaml:"steps" validate:"required,min=1,dive"`
}

// Step holds exactly one operation.
type Step struct {
	Put     *PutStep     `yaml:"put,omitempty"`
	Run     *RunStep     `yaml:"run,omitempty"`
	Inspect *InspectStep `yaml:"inspect,omitempty"`
	Error   *ErrorStep   `yaml:"error,omitempty"`
}

type PutStep struct {
	Name  string `yaml:"name"  validate:"required"`
	Value any    `yaml:"value"`
}

type RunStep struct {
	Name   string `yaml:"name"   validate:"required"`
	Target string `yaml:"target" validate:"required"`
	Method string `yaml:"method" validate:"required"`
	Args   []any  `yaml:"args,omitempty"`
}

type InspectStep struct {
	Only []string `yaml:"only,omitempty"`
}

type ErrorStep struct {
	Name    string `yaml:"name"    validate:"required"`
	Message string `yaml:"message" validate:"required"`
}

// name returns the step name, empty for inspect steps.
func (s Step) name() string {
	switch {
	case s.Put != nil:
		return s.Put.Name
	case s.Run != nil:
		return s.Run.Name
	case s.Error != nil:
		return s.Error.Name
	}

	return ""
}

func (s Step) operations() int {
	count := 0

	for _, set := range []bool{s.Put != nil, s.Run != nil, s.Inspect != nil, s.Error != nil} {
		if set {
			count++
		}
	}

	return count
}

// Decode reads a definition from r and validates it.
// Unknown fields are rejected.
func Decode(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(err, "unable to decode definition")
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// DecodeFile reads the definition stored at path.
func DecodeFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open definition %s", path)
	}
	defer f.Close()

	return Decode(f)
}

// Validate checks the struct constraints, that every step holds one operation,
// and that names are unique.
func (d *Definition) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(d); err != nil {
		return errors.Wrap(err, "invalid definition")
	}

	seen := make(map[string]int, len(d.Steps))

	for i, step := range d.Steps {
		if step.operations() != 1 {
			return errors.Wrapf(ErrAmbiguousStep, "step %d", i)
		}

		if step.Inspect != nil {
			continue
		}

		name := step.name()
		if first, ok := seen[name]; ok {
			return errors.Wrapf(ErrDuplicateName, "step %d: %q first defined at step %d", i, name, first)
		}

		seen[name] = i
	}

	return nil
}

// Build turns d into a pipeline. Run steps resolve their target in targets and
// must name one of its exported methods.
func Build(d *Definition, targets map[string]any) (que.Pipeline[string, any], error) {
	pipe := que.New[string, any]()

	if err := d.Validate(); err != nil {
		return pipe, err
	}

	for i, step := range d.Steps {
		switch {
		case step.Put != nil:
			pipe = pipe.Put(step.Put.Name, step.Put.Value)
		case step.Run != nil:
			target, ok := targets[step.Run.Target]
			if !ok {
				return pipe, errors.Wrapf(ErrUnknownTarget, "step %d: %s", i, step.Run.Target)
			}

			if !reflect.ValueOf(target).MethodByName(step.Run.Method).IsValid() {
				return pipe, errors.Wrapf(ErrUnknownMethod, "step %d: %s.%s", i, step.Run.Target, step.Run.Method)
			}

			pipe = pipe.RunTarget(step.Run.Name, target, step.Run.Method, step.Run.Args...)
		case step.Inspect != nil:
			pipe = pipe.Inspect(que.InspectOptions[string]{Only: step.Inspect.Only})
		case step.Error != nil:
			pipe = pipe.Error(step.Error.Name, errors.New(step.Error.Message))
		}
	}

	return pipe, nil
}
