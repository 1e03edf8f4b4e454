package drawer_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpedic/go-que/pkg/que"
	"github.com/gpedic/go-que/pkg/que/drawer"
	"github.com/gpedic/go-que/pkg/que/measure"
	"github.com/gpedic/go-que/pkg/que/model"
)

func TestVertexIDAndLabel(t *testing.T) {
	t.Parallel()

	read := &model.StepInfo{Kind: model.RunStep, Name: "read", Index: 2}
	assert.Equal(t, "step:read", drawer.VertexID(read))
	assert.Equal(t, "read", drawer.VertexLabel(read))

	inspect := &model.StepInfo{Kind: model.InspectStep, Index: 1}
	assert.Equal(t, "inspect:1", drawer.VertexID(inspect))
	assert.Equal(t, "inspect#1", drawer.VertexLabel(inspect))

	assert.NotEqual(t, drawer.VertexID(inspect), drawer.VertexID(&model.StepInfo{Kind: model.PutStep, Name: "inspect:1"}))
}

func TestDOTDrawer(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer()
	require.NoError(t, d.AddStep("a", "first", model.PutStep))
	require.NoError(t, d.AddStep("a", "first", model.PutStep))
	require.NoError(t, d.AddStep("b", "second", model.InspectStep))
	require.NoError(t, d.AddLink("a", "b"))
	require.NoError(t, d.AddLink("a", "b"))
	require.NoError(t, d.SetStatus("a", drawer.StatusFailed))
	require.Error(t, d.SetStatus("a", drawer.Status("unknown")))
	require.Error(t, d.SetStatus("missing", drawer.StatusDone))
	require.Error(t, d.AddLink("a", "missing"))

	var buf bytes.Buffer
	require.NoError(t, d.Draw(&buf))

	out := buf.String()
	assert.Contains(t, out, "strict digraph {")
	assert.Contains(t, out, `"a" -> "b"`)
	assert.Contains(t, out, `shape="note"`)
	assert.Contains(t, out, `fillcolor="#ff8a80"`)
	assert.Contains(t, out, `rankdir="LR"`)
	assert.Contains(t, out, `label="first"`)
}

func TestDOTDrawerGraphAttribute(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer(drawer.GraphAttribute("rankdir", "TB"), drawer.GraphAttribute("bgcolor", "white"))
	require.NoError(t, d.AddStep("a", "a", model.PutStep))

	var buf bytes.Buffer
	require.NoError(t, d.Draw(&buf))
	assert.Contains(t, buf.String(), `rankdir="TB"`)
	assert.Contains(t, buf.String(), `bgcolor="white"`)
	assert.NotContains(t, buf.String(), `rankdir="LR"`)
}

func TestDOTDrawerEscapesNames(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	dot := drawer.NewDOTDrawer()
	rec := drawer.PipelineDrawer(dot, msr)

	_, err := que.New[string, any]().
		Put(`say "hi"`, 1).
		Put("a<b>&c", 2).
		Put(`back\slash`, 3).
		Exec(que.WithObserver(measure.PipelineMeasure(msr)), que.WithObserver(rec))
	require.NoError(t, err)
	require.NoError(t, rec.Err())

	var buf bytes.Buffer
	require.NoError(t, dot.Draw(&buf))

	out := buf.String()
	assert.Contains(t, out, `"start" -> "step:say \"hi\""`)
	assert.Contains(t, out, `"step:say \"hi\"" -> "step:a<b>&c"`)
	assert.Contains(t, out, `"step:back\\slash" -> "end"`)
	assert.Contains(t, out, "<say &#34;hi&#34; <BR />")
	assert.Contains(t, out, "<a&lt;b&gt;&amp;c <BR />")
	assert.NotContains(t, out, `label="a<b>&c"`)
}

func TestPipelineDrawerReservedNames(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	dot := drawer.NewDOTDrawer()
	rec := drawer.PipelineDrawer(dot, msr)

	_, err := que.New[string, int]().
		Put("start", 1).
		Inspect(que.InspectOptions[string]{}).
		Put("inspect#1", 2).
		Put("end", 3).
		Exec(que.WithObserver(measure.PipelineMeasure(msr)), que.WithObserver(rec))
	require.NoError(t, err)
	require.NoError(t, rec.Err())

	var buf bytes.Buffer
	require.NoError(t, dot.Draw(&buf))

	out := buf.String()
	assert.Contains(t, out, `"start" -> "step:start"`)
	assert.Contains(t, out, `"step:start" -> "inspect:1"`)
	assert.Contains(t, out, `"inspect:1" -> "step:inspect#1"`)
	assert.Contains(t, out, `"step:end" -> "end"`)
	assert.NotContains(t, out, `"start" -> "start"`)
	assert.NotContains(t, out, `"end" -> "end"`)

	assert.Equal(t, int64(1), msr.GetMetric("end").Runs())
	assert.Equal(t, int64(1), msr.Total().Runs())
}

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	dot := drawer.NewDOTDrawer()
	rec := drawer.PipelineDrawer(dot, msr)

	_, err := que.New[string, any]().
		Put("init", "test").
		Inspect(que.InspectOptions[string]{}).
		Run("read", func(que.Changes[string, any]) (any, error) {
			time.Sleep(time.Millisecond)

			return "read", nil
		}).
		Run("write", func(que.Changes[string, any]) (any, error) {
			return nil, assert.AnError
		}).
		Put("never", "reached").
		Exec(que.WithObserver(measure.PipelineMeasure(msr)), que.WithObserver(rec))
	require.Error(t, err)
	require.NoError(t, rec.Err())

	var buf bytes.Buffer
	require.NoError(t, dot.Draw(&buf))

	out := buf.String()
	assert.Contains(t, out, `"start" -> "step:init"`)
	assert.Contains(t, out, `"step:init" -> "inspect:1"`)
	assert.Contains(t, out, `"inspect:1" -> "step:read"`)
	assert.Contains(t, out, `"step:never" -> "end"`)
	assert.Contains(t, out, `fillcolor="#c8e6c9"`)
	assert.Contains(t, out, `fillcolor="#ff8a80"`)
	assert.Contains(t, out, `fillcolor="#e0e0e0"`)
	assert.Contains(t, out, "total: ")
	assert.Contains(t, out, `fontcolor="blue"`)
}

func TestPipelineDrawerRepeated(t *testing.T) {
	t.Parallel()

	dot := drawer.NewDOTDrawer()
	rec := drawer.PipelineDrawer(dot, nil)
	pipe := que.New[string, int]().Put("a", 1).Put("b", 2)

	for range 2 {
		_, err := pipe.Exec(que.WithObserver(rec))
		require.NoError(t, err)
	}

	require.NoError(t, rec.Err())

	var buf bytes.Buffer
	require.NoError(t, dot.Draw(&buf))
	assert.Contains(t, buf.String(), `"step:b" -> "end"`)
}
