package que

import (
	"fmt"
	"maps"
	"time"

	"github.com/gpedic/go-que/pkg/que/model"
)

// Exec runs the steps in declaration order and returns the changes they produced.
//
// On failure the returned error is a *StepError and no changes are returned: the
// partial changes are carried by the error. Steps after the failing one never run.
//
// The pipeline is not modified, so it can be executed again or from several goroutines.
func (p Pipeline[K, V]) Exec(opts ...ExecOption) (Changes[K, V], error) {
	steps := p.Steps()

	if err := prevalidate(steps); err != nil {
		return nil, err
	}

	cfg := newExecConfig(opts...)
	infos := stepInfos(steps)
	cfg.start(infos)

	start := time.Now()
	changes := make(Changes[K, V], len(steps))

	for i, step := range steps {
		if step.Op.kind == model.InspectStep {
			inspect(cfg.logger, i, step.Op.inspect, changes)

			continue
		}

		stepStart := time.Now()
		value, err := runStep(step, changes)
		elapsed := time.Since(stepStart)

		cfg.logger.Debug().
			Str("step", infos[i].Name).
			Str("kind", string(step.Op.kind)).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("step done")
		cfg.onStep(infos[i], elapsed, err)

		if err != nil {
			stepErr := &StepError[K, V]{Step: step.Name, Err: err, Changes: changes}
			cfg.finish(time.Since(start), stepErr)

			return nil, stepErr
		}

		changes[step.Name] = value
	}

	cfg.finish(time.Since(start), nil)

	return changes, nil
}

// prevalidate returns the first step that is known to fail without running anything.
func prevalidate[K comparable, V any](steps []Step[K, V]) error {
	for _, step := range steps {
		var err error

		switch step.Op.kind { //nolint:exhaustive // only put and error steps can fail ahead of time
		case model.ErrorStep:
			err = step.Op.err
		case model.PutStep:
			if v, ok := any(step.Op.value).(Validator); ok && !isNil(v) {
				err = v.Validate()
			}
		}

		if err != nil {
			return &StepError[K, V]{Step: step.Name, Err: err, Changes: Changes[K, V]{}, Prevalidated: true}
		}
	}

	return nil
}

func runStep[K comparable, V any](step Step[K, V], changes Changes[K, V]) (V, error) {
	switch step.Op.kind { //nolint:exhaustive // inspect steps are handled by the caller
	case model.PutStep:
		return step.Op.value, nil
	case model.ErrorStep:
		var zero V

		return zero, step.Op.err
	}

	// the accumulator is only written by Exec
	snapshot := maps.Clone(changes)

	if d, ok := step.Op.call.(Dispatch[K, V]); ok {
		return d.invokeStep(step.Name, snapshot)
	}

	return step.Op.call.Invoke(snapshot)
}

func stepInfos[K comparable, V any](steps []Step[K, V]) []*model.StepInfo {
	infos := make([]*model.StepInfo, len(steps))

	for i, step := range steps {
		info := &model.StepInfo{Kind: step.Op.kind, Index: i}
		if step.Op.kind != model.InspectStep {
			info.Name = fmt.Sprint(step.Name)
		}

		infos[i] = info
	}

	return infos
}
