package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gpedic/go-que/internal/definition"
	"github.com/gpedic/go-que/pkg/que"
	"github.com/gpedic/go-que/pkg/que/drawer"
	"github.com/gpedic/go-que/pkg/que/measure"
)

func newDrawCmd(a *app) *cobra.Command {
	var (
		file, output string
		graphAttrs   map[string]string
	)

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Run a pipeline definition and draw it as a DOT graph",
		Long: `Run a pipeline definition and write a Graphviz DOT graph of its steps,
coloured by outcome and labelled with their duration.`,
		Example: `  que draw -f pipeline.yaml -o pipeline.dot
  que draw -f pipeline.yaml | dot -Tsvg > pipeline.svg
  que draw -f pipeline.yaml --graph-attr rankdir=TB`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipe, def, err := a.build(file)
			if err != nil {
				return err
			}

			m := measure.NewDefaultMeasure()
			options := make([]drawer.DOTOption, 0, len(graphAttrs))
			for key, value := range graphAttrs {
				options = append(options, drawer.GraphAttribute(key, value))
			}

			recorder := drawer.PipelineDrawer(drawer.NewDOTDrawer(options...), m)
			logger := a.logger.With().Str("pipeline", def.Name).Logger()

			_, err = execute(pipe,
				que.WithLogger(logger),
				que.WithObserver(measure.PipelineMeasure(m)),
				que.WithObserver(recorder),
			)

			var stepErr *que.StepError[string, any]
			switch {
			case errors.As(err, &stepErr) && stepErr.Prevalidated:
				return errors.Wrap(err, "nothing ran")
			case errors.As(err, &stepErr):
				logger.Warn().Str("step", stepErr.Step).Err(stepErr.Err).Msg("pipeline failed")
			case err != nil:
				return err
			}

			if err := recorder.Err(); err != nil {
				return err
			}

			return writeGraph(cmd.OutOrStdout(), output, recorder)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "pipeline definition")
	flags.StringVarP(&output, "output-file", "o", "", "DOT file, stdout when empty")
	flags.StringToStringVar(&graphAttrs, "graph-attr", nil, "graph attribute as key=value, can be repeated")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func writeGraph(stdout io.Writer, path string, d drawer.Drawer) error {
	if path == "" {
		return d.Draw(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}

	if err := d.Draw(f); err != nil {
		_ = f.Close()

		return err
	}

	return errors.Wrapf(f.Close(), "unable to write %s", path)
}
