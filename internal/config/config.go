// Package config loads the configuration of the que command.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/gpedic/go-que/internal/logging"
)

const (
	OutputYAML = "yaml"
	OutputJSON = "json"

	envPrefix = "QUE"
)

// Config is the configuration of the que command.
type Config struct {
	Log    logging.Config `mapstructure:"log"`
	Output string         `mapstructure:"output" validate:"oneof=yaml json"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("log.timestamp", true)
	v.SetDefault("log.no_color", false)
	v.SetDefault("output", OutputYAML)
}

// Load reads the optional config file, the QUE_ environment variables and
// whatever v already holds (bound flags), then validates the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", configFile)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}
