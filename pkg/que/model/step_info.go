package model

// StepKind tags the operation held by a step.
type StepKind string

const (
	PutStep     StepKind = "put"
	RunStep     StepKind = "run"
	InspectStep StepKind = "inspect"
	ErrorStep   StepKind = "error"
)

// StepInfo describes a step of an executing pipeline.
type StepInfo struct {
	Kind StepKind
	// Name is the printed step name. It is empty for inspect steps.
	Name string
	// Index is the position of the step in declaration order, starting at 0.
	Index int
}

// Named reports whether the step stores its result in the changes map.
func (s *StepInfo) Named() bool {
	return s.Kind != InspectStep
}

// Names of the virtual steps surrounding every pipeline in observers.
const (
	StartStepName = "start"
	EndStepName   = "end"
)
