package main

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gpedic/go-que/internal/config"
	"github.com/gpedic/go-que/internal/logging"
	"github.com/gpedic/go-que/internal/targets"
)

// app holds what the subcommands share once the root command has loaded the configuration.
type app struct {
	v          *viper.Viper
	configFile string
	envFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	targets    map[string]any
}

func newRootCmd(available map[string]any) *cobra.Command {
	a := &app{v: viper.New(), targets: available, logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "que",
		Short: "Run sequential named-step pipelines",
		Long: `que builds pipelines of uniquely named steps from YAML definitions and
runs them in order. Every step sees the results of the steps before it, and
the first failing step stops the pipeline.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file read by the env target before the process environment")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	flags.String("log-format", "", "log format (console, json)")
	flags.String("output", "", "result format (yaml, json)")

	cmd.AddCommand(newRunCmd(a), newDrawCmd(a), newListCmd(a))

	return cmd
}

var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"output":     "output",
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	for flag, key := range flagKeys {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return errors.Wrapf(err, "unable to bind flag %s", flag)
		}
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	if a.envFile != "" {
		env, err := targets.EnvFromFile(a.envFile)
		if err != nil {
			return err
		}

		a.targets["env"] = env
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.Log, cmd.ErrOrStderr())

	return nil
}
