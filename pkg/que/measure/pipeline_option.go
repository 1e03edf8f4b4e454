package measure

import (
	"time"

	"github.com/gpedic/go-que/pkg/que/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) Start(steps []*model.StepInfo) {
	for _, step := range steps {
		if step.Named() {
			pm.AddMetric(step.Name)
		}
	}
}

func (pm *pipelineMeasure) OnStep(step *model.StepInfo, elapsed time.Duration, err error) {
	pm.AddMetric(step.Name).AddDuration(elapsed, err)
}

func (pm *pipelineMeasure) Finish(total time.Duration, err error) {
	t := pm.Total()
	t.AddDuration(total, err)
	t.SetTotalDuration(total)
}

// PipelineMeasure returns an observer that records every step outcome into measure.
func PipelineMeasure(measure Measure) model.Observer {
	return &pipelineMeasure{measure}
}
