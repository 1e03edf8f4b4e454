package drawer

import (
	"io"

	"github.com/gpedic/go-que/pkg/que/measure"
	"github.com/gpedic/go-que/pkg/que/model"
)

// Status is the outcome of a step as shown by the drawer.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStep adds the step identified by id, shown as label. Adding a known step again is a no-op.
	AddStep(id, label string, kind model.StepKind) error
	// AddLink adds a link between parent and children steps.
	AddLink(parentID, childrenID string) error
	// SetStatus sets the outcome of the step.
	SetStatus(id string, status Status) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
	// Draw writes the pipeline graph.
	Draw(w io.Writer) error
}
