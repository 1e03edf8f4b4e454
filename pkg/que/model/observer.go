package model

import "time"

// Observer defines the lifecycle hooks called by an execution.
type Observer interface {
	// Start runs once before the first step, with every step in declaration order.
	// It is not called when pre-validation rejects the pipeline.
	Start(steps []*StepInfo)
	// OnStep runs every time a put or run step produced its outcome.
	OnStep(step *StepInfo, elapsed time.Duration, err error)
	// Finish runs after the last executed step.
	Finish(total time.Duration, err error)
}
