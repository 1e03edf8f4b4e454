package drawer

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/gpedic/go-que/pkg/que/measure"
	"github.com/gpedic/go-que/pkg/que/model"
)

// DOTDrawer draws the pipeline as a Graphviz DOT graph.
type DOTDrawer struct {
	graph   graph.Graph[string, string]
	parent  map[string]string
	options []DOTOption
}

// DOTOption customises the rendered graph.
type DOTOption func(*description)

// NewDOTDrawer creates a new DOT drawer.
func NewDOTDrawer(options ...DOTOption) *DOTDrawer {
	return &DOTDrawer{
		graph:   graph.New(graph.StringHash, graph.Directed()),
		parent:  make(map[string]string),
		options: options,
	}
}

// AddStep adds a step to the pipeline graph. The vertex is identified by id and shows label.
func (d *DOTDrawer) AddStep(id, label string, kind model.StepKind) error {
	shape := "box"
	if kind == model.InspectStep {
		shape = "note"
	}

	err := d.graph.AddVertex(id, graph.VertexAttribute("shape", shape), graph.VertexAttribute("label", label))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and children steps.
func (d *DOTDrawer) AddLink(parentName, childrenName string) error {
	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	d.parent[childrenName] = parentName

	return nil
}

var statusColors = map[Status][3]uint8{
	StatusPending: {255, 255, 255},
	StatusDone:    {200, 230, 201},
	StatusFailed:  {255, 138, 128},
	StatusSkipped: {224, 224, 224},
}

// SetStatus fills the step with the colour of its status.
func (d *DOTDrawer) SetStatus(stepName string, status Status) error {
	_, properties, err := d.graph.VertexWithProperties(stepName)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stepName)
	}

	rgb, ok := statusColors[status]
	if !ok {
		return errors.Errorf("unknown status %q", status)
	}

	fill, err := colors.RGB(rgb[0], rgb[1], rgb[2])
	if err != nil {
		return errors.Wrap(err, "unable to get colour")
	}

	properties.Attributes["style"] = "filled"
	properties.Attributes["fillcolor"] = fill.ToHEX().String()

	return nil
}

const maxRGB = 240

// AddMeasure labels every measured step with its average duration and colours the link
// leading to it from blue (fastest) to red (slowest).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := msr.AllMetrics()
	durations := []time.Duration{}

	for _, mt := range metrics {
		if mt.Runs() == 0 {
			continue
		}

		durations = append(durations, mt.AVGDuration())
	}

	sort.Slice(durations, func(i, j int) bool {
		return durations[i] > durations[j]
	})

	if total := msr.Total(); total.Runs() > 0 {
		_, properties, err := d.graph.VertexWithProperties(endVertex)
		if err == nil {
			properties.Attributes["xlabel"] = "total: " + total.GetTotalDuration().String()
		} else if !errors.Is(err, graph.ErrVertexNotFound) {
			return errors.Wrap(err, "unable to get vertex properties")
		}
	}

	for name, mt := range metrics {
		if mt.Runs() == 0 {
			continue
		}

		id := stepVertex(name)

		_, properties, err := d.graph.VertexWithProperties(id)
		if err != nil {
			if errors.Is(err, graph.ErrVertexNotFound) {
				continue
			}

			return errors.Wrap(err, "unable to get vertex properties")
		}

		stepAvg := mt.AVGDuration()
		properties.Attributes["xlabel"] = stepAvg.String()

		parent, ok := d.parent[id]
		if !ok {
			continue
		}

		edgeColor, err := gradient(stepAvg, durations[len(durations)-1], durations[0])
		if err != nil {
			return err
		}

		err = d.graph.UpdateEdge(parent, id,
			graph.EdgeAttribute("label", stepAvg.String()),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", edgeColor),
		)
		if err != nil {
			return errors.Wrap(err, "unable to update edge")
		}
	}

	return nil
}

func gradient(curr, minValue, maxValue time.Duration) (string, error) {
	fraction := 1.0
	if maxValue > minValue {
		fraction = float64(curr-minValue) / float64(maxValue-minValue)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	c, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return c.ToHEX().String(), nil
}

// Draw writes the pipeline graph in DOT format.
func (d *DOTDrawer) Draw(w io.Writer) error {
	err := dot(d.graph, w, d.options...)
	if err != nil {
		return errors.Wrap(err, "unable to draw dot graph")
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}={{quote $v}};
	{{end}}
	{{range $s := .Statements}}
		{{quote .Source}} {{if .Target}}{{$.EdgeOperator}} {{quote .Target}} [ {{range $k, $v := .EdgeAttributes}}{{$k}}={{quote $v}}, {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}={{quote $v}}, {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], wrt io.Writer, options ...DOTOption) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute sets a graph level attribute, such as rankdir or bgcolor.
func GraphAttribute(key, value string) DOTOption {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T], options ...DOTOption) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   map[string]string{"rankdir": "LR"},
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	// map iteration is random, sort for a stable output
	vertices := make([]K, 0, len(adjacencyMap))
	for vertex := range adjacencyMap {
		vertices = append(vertices, vertex)
	}

	sort.Slice(vertices, func(i, j int) bool {
		return fmt.Sprint(vertices[i]) < fmt.Sprint(vertices[j])
	})

	for _, vertex := range vertices {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))

		for k, v := range sourceProperties.Attributes {
			sourceAttributes[k] = v
		}

		if xlabel, ok := sourceAttributes["xlabel"]; ok {
			label, ok := sourceAttributes["label"]
			if !ok {
				label = fmt.Sprint(vertex)
			}

			htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`,
				html.EscapeString(label), html.EscapeString(xlabel))

			delete(sourceAttributes, "xlabel")
			delete(sourceAttributes, "label")
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		for adjacency, edge := range adjacencyMap[vertex] {
			stmt := statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Funcs(template.FuncMap{"quote": quote}).Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// quote returns v as a DOT double-quoted string.
func quote(v any) string {
	return `"` + dotEscaper.Replace(fmt.Sprint(v)) + `"`
}

var _ Drawer = (*DOTDrawer)(nil)
