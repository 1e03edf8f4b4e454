package main

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gpedic/go-que/internal/config"
	"github.com/gpedic/go-que/internal/definition"
	"github.com/gpedic/go-que/pkg/que"
)

var errPipelineFailed = errors.New("pipeline failed")

type report struct {
	Pipeline string         `yaml:"pipeline"          json:"pipeline"`
	ExecID   string         `yaml:"exec_id"           json:"exec_id"`
	Changes  map[string]any `yaml:"changes"           json:"changes"`
	Failure  *failure       `yaml:"failure,omitempty" json:"failure,omitempty"`
}

type failure struct {
	Step         string `yaml:"step"         json:"step"`
	Error        string `yaml:"error"        json:"error"`
	Prevalidated bool   `yaml:"prevalidated" json:"prevalidated"`
}

func newRunCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline definition",
		Long:  "Decode a pipeline definition, run it and print the changes it produced.",
		Example: `  que run -f pipeline.yaml
  que run -f pipeline.yaml --output json --log-level debug`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipe, def, err := a.build(file)
			if err != nil {
				return err
			}

			execID := uuid.NewString()
			logger := a.logger.With().Str("pipeline", def.Name).Str("exec_id", execID).Logger()

			changes, err := execute(pipe, que.WithLogger(logger))

			rep := report{Pipeline: def.Name, ExecID: execID, Changes: changes}

			var stepErr *que.StepError[string, any]
			switch {
			case errors.As(err, &stepErr):
				rep.Changes = stepErr.Changes
				rep.Failure = &failure{Step: stepErr.Step, Error: stepErr.Err.Error(), Prevalidated: stepErr.Prevalidated}
			case err != nil:
				return err
			}

			if err := encode(cmd.OutOrStdout(), a.cfg.Output, rep); err != nil {
				return err
			}

			if rep.Failure != nil {
				return errors.Wrapf(errPipelineFailed, "step %s", rep.Failure.Step)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "pipeline definition")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *app) build(file string) (que.Pipeline[string, any], *definition.Definition, error) {
	def, err := definition.DecodeFile(file)
	if err != nil {
		return que.Pipeline[string, any]{}, nil, err
	}

	pipe, err := definition.Build(def, a.targets)
	if err != nil {
		return pipe, nil, err
	}

	return pipe, def, nil
}

// execute runs pipe and turns a malformed dispatch into an error, since definitions
// come from the user.
func execute(pipe que.Pipeline[string, any], opts ...que.ExecOption) (changes que.Changes[string, any], err error) {
	defer func() {
		if r := recover(); r != nil {
			malformed, ok := r.(*que.MalformedResultError[string])
			if !ok {
				panic(r)
			}

			changes, err = nil, errors.Wrap(malformed, "malformed step")
		}
	}()

	return pipe.Exec(opts...)
}

func encode(w io.Writer, format string, v any) error {
	if format == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return errors.Wrap(enc.Encode(v), "unable to encode result")
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "unable to encode result")
	}

	return errors.Wrap(enc.Close(), "unable to encode result")
}
