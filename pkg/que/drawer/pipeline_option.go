package drawer

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/gpedic/go-que/pkg/que/measure"
	"github.com/gpedic/go-que/pkg/que/model"
)

// Vertex ids of the virtual steps. Step vertices are prefixed, so no step name maps to them.
const (
	startVertex = model.StartStepName
	endVertex   = model.EndStepName
)

// Recorder feeds a Drawer from the execution of a pipeline.
type Recorder struct {
	Drawer
	m       measure.Measure
	pending map[string]struct{}
	err     error
}

// PipelineDrawer returns an observer that draws the executed steps with drawer.
// When m is set, its measure observer must be registered before the recorder so the
// durations of the current execution are known when it finishes.
func PipelineDrawer(drawer Drawer, m measure.Measure) *Recorder {
	return &Recorder{Drawer: drawer, m: m}
}

func stepVertex(name string) string {
	return "step:" + name
}

// VertexID returns the id of the vertex drawn for step.
func VertexID(step *model.StepInfo) string {
	if step.Named() {
		return stepVertex(step.Name)
	}

	return fmt.Sprintf("inspect:%d", step.Index)
}

// VertexLabel returns the text shown on the vertex drawn for step.
func VertexLabel(step *model.StepInfo) string {
	if step.Named() {
		return step.Name
	}

	return fmt.Sprintf("inspect#%d", step.Index)
}

func (r *Recorder) Start(steps []*model.StepInfo) {
	r.pending = make(map[string]struct{}, len(steps))
	r.record(r.AddStep(startVertex, model.StartStepName, model.RunStep), "unable to add start step to drawer")

	parent := startVertex

	for _, step := range steps {
		id := VertexID(step)
		r.record(r.AddStep(id, VertexLabel(step), step.Kind), "unable to add step to drawer")
		r.record(r.AddLink(parent, id), "unable to link step")
		r.record(r.SetStatus(id, StatusPending), "unable to set step status")

		if step.Named() {
			r.pending[id] = struct{}{}
		}

		parent = id
	}

	r.record(r.AddStep(endVertex, model.EndStepName, model.RunStep), "unable to add end step to drawer")
	r.record(r.AddLink(parent, endVertex), "unable to link end step")
}

func (r *Recorder) OnStep(step *model.StepInfo, elapsed time.Duration, err error) {
	id := VertexID(step)
	delete(r.pending, id)

	status := StatusDone
	if err != nil {
		status = StatusFailed
	}

	r.record(r.SetStatus(id, status), "unable to set step status")
}

func (r *Recorder) Finish(total time.Duration, err error) {
	for id := range r.pending {
		r.record(r.SetStatus(id, StatusSkipped), "unable to set step status")
	}

	if err == nil {
		r.record(r.SetStatus(endVertex, StatusDone), "unable to set end status")
	}

	if r.m != nil {
		r.record(r.AddMeasure(r.m), "unable to add measure")
	}
}

// Err returns the first error met while recording.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) record(err error, msg string) {
	if err != nil && r.err == nil {
		r.err = errors.Wrap(err, msg)
	}
}

var _ model.Observer = (*Recorder)(nil)
