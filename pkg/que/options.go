package que

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gpedic/go-que/pkg/que/model"
)

type ExecOption func(c *execConfig)

// WithLogger sets the logger used by inspect steps and step debug events.
func WithLogger(logger zerolog.Logger) ExecOption {
	return func(c *execConfig) {
		c.logger = logger
	}
}

// WithObserver adds an observer to the execution. It can be used several times.
func WithObserver(observer model.Observer) ExecOption {
	return func(c *execConfig) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

type execConfig struct {
	logger    zerolog.Logger
	observers []model.Observer
}

func newExecConfig(opts ...ExecOption) *execConfig {
	cfg := &execConfig{
		logger: zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

func (c *execConfig) start(steps []*model.StepInfo) {
	for _, o := range c.observers {
		o.Start(steps)
	}
}

func (c *execConfig) onStep(step *model.StepInfo, elapsed time.Duration, err error) {
	for _, o := range c.observers {
		o.OnStep(step, elapsed, err)
	}
}

func (c *execConfig) finish(total time.Duration, err error) {
	for _, o := range c.observers {
		o.Finish(total, err)
	}
}
