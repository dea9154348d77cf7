// Package graphfile loads graph descriptions from YAML files.
//
// A file describes the render settings, JavaScript processors, nodes with
// their parameter schedules and connections:
//
//	sampleRate: 44100
//	channels: 2
//	duration: 1.5
//	backend: standard
//	processors:
//	  - name: noise
//	    script: |
//	      function process(inputs, outputs) { ... }
//	nodes:
//	  - id: osc
//	    kind: worklet
//	    processor: noise
//	    outputs: 1
//	  - id: amp
//	    kind: gain
//	    params:
//	      gain:
//	        value: 0.5
//	        events:
//	          - {type: linearRamp, value: 0, time: 1.5}
//	connections:
//	  - {from: osc, to: amp}
//	  - {from: amp, to: destination}
package graphfile

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"pipelined.dev/render"
	"pipelined.dev/render/native"
	"pipelined.dev/render/signal"
	"pipelined.dev/render/worklet/script"
)

// DestinationID references the destination node in connections.
const DestinationID = "destination"

// Backend names.
const (
	BackendNone     = "none"
	BackendStandard = "standard"
	BackendLegacy   = "legacy"
)

// ErrInvalidFile is returned when file content is not a valid graph.
var ErrInvalidFile = errors.New("invalid graph file")

// File is a graph description.
type File struct {
	SampleRate  int          `yaml:"sampleRate"`
	Channels    int          `yaml:"channels"`
	Length      int          `yaml:"length,omitempty"`
	Duration    float64      `yaml:"duration,omitempty"`
	Backend     string       `yaml:"backend,omitempty"`
	Processors  []Processor  `yaml:"processors,omitempty"`
	Nodes       []Node       `yaml:"nodes"`
	Connections []Connection `yaml:"connections"`

	// dir is used to resolve script paths.
	dir string
}

// Processor is a JavaScript processor. Script is the source, Path is a
// file with the source relative to the graph file.
type Processor struct {
	Name       string      `yaml:"name"`
	Script     string      `yaml:"script,omitempty"`
	Path       string      `yaml:"path,omitempty"`
	Parameters []Parameter `yaml:"parameters,omitempty"`
}

// Parameter declares a processor parameter.
type Parameter struct {
	Name    string  `yaml:"name"`
	Default float64 `yaml:"default"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// Node describes a node. Attributes are used according to kind.
type Node struct {
	ID                    string              `yaml:"id"`
	Kind                  string              `yaml:"kind"`
	ChannelCount          int                 `yaml:"channelCount,omitempty"`
	ChannelCountMode      string              `yaml:"channelCountMode,omitempty"`
	ChannelInterpretation string              `yaml:"channelInterpretation,omitempty"`
	Params                map[string]Schedule `yaml:"params,omitempty"`

	// delay
	MaxDelayTime float64 `yaml:"maxDelayTime,omitempty"`
	// merger inputs and splitter outputs
	Channels int `yaml:"channels,omitempty"`
	// buffer source
	Buffer    [][]float32 `yaml:"buffer,omitempty"`
	StartTime float64     `yaml:"startTime,omitempty"`
	// worklet
	Processor          string                 `yaml:"processor,omitempty"`
	Inputs             *int                   `yaml:"inputs,omitempty"`
	Outputs            *int                   `yaml:"outputs,omitempty"`
	OutputChannelCount []int                  `yaml:"outputChannelCount,omitempty"`
	Options            map[string]interface{} `yaml:"options,omitempty"`
}

// Schedule is an initial value and automation events of a parameter.
type Schedule struct {
	Value  *float64 `yaml:"value,omitempty"`
	Events []Event  `yaml:"events,omitempty"`
}

// Event is an automation event. Type is one of setValue, linearRamp,
// exponentialRamp, setTarget, setValueCurve, cancelScheduledValues and
// cancelAndHold.
type Event struct {
	Type         string    `yaml:"type"`
	Value        float64   `yaml:"value,omitempty"`
	Time         float64   `yaml:"time"`
	TimeConstant float64   `yaml:"timeConstant,omitempty"`
	Values       []float64 `yaml:"values,omitempty"`
	Duration     float64   `yaml:"duration,omitempty"`
}

// Connection connects output of node to input or parameter of another.
type Connection struct {
	From   string `yaml:"from"`
	Output int    `yaml:"output,omitempty"`
	To     string `yaml:"to"`
	Input  int    `yaml:"input,omitempty"`
	Param  string `yaml:"param,omitempty"`
}

// Graph is a graph built from a file.
type Graph struct {
	*render.Graph
	Nodes map[string]*render.Node
	// Length is the number of frames to render.
	Length int
}

// Load reads a file from path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	file, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	file.dir = filepath.Dir(path)
	return file, nil
}

// Decode reads a file from reader.
func Decode(r io.Reader) (*File, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var file File
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Encode writes file as YAML.
func (f *File) Encode(w io.Writer) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// FrameLength returns number of frames to render. Length has priority over
// duration.
func (f *File) FrameLength() int {
	if f.Length > 0 {
		return f.Length
	}
	return int(f.Duration * float64(f.SampleRate))
}

func (f *File) validate() error {
	if f.FrameLength() <= 0 {
		return fmt.Errorf("%w: length or duration must be positive", ErrInvalidFile)
	}
	ids := map[string]struct{}{DestinationID: {}}
	for _, n := range f.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node without id", ErrInvalidFile)
		}
		if _, ok := ids[n.ID]; ok {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidFile, n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	for _, c := range f.Connections {
		if _, ok := ids[c.From]; !ok {
			return fmt.Errorf("%w: connection from unknown node %q", ErrInvalidFile, c.From)
		}
		if _, ok := ids[c.To]; !ok {
			return fmt.Errorf("%w: connection to unknown node %q", ErrInvalidFile, c.To)
		}
	}
	return nil
}

// Build creates the graph described by file.
func (f *File) Build(options ...render.Option) (*Graph, error) {
	switch f.Backend {
	case "", BackendStandard:
		options = append([]render.Option{render.WithBackend(native.New())}, options...)
	case BackendLegacy:
		options = append([]render.Option{render.WithBackend(native.Legacy())}, options...)
	case BackendNone:
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidFile, f.Backend)
	}
	g, err := render.NewGraph(f.SampleRate, f.Channels, options...)
	if err != nil {
		return nil, err
	}
	for _, p := range f.Processors {
		if err := f.register(g, p); err != nil {
			return nil, err
		}
	}

	result := Graph{
		Graph:  g,
		Nodes:  map[string]*render.Node{DestinationID: g.Destination()},
		Length: f.FrameLength(),
	}
	for _, desc := range f.Nodes {
		n, err := f.build(g, desc)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", desc.ID, err)
		}
		result.Nodes[desc.ID] = n
	}
	for _, c := range f.Connections {
		from, to := result.Nodes[c.From], result.Nodes[c.To]
		if c.Param != "" {
			from.ConnectParam(c.Output, to, c.Param)
			continue
		}
		from.Connect(c.Output, to, c.Input)
	}
	return &result, nil
}

func (f *File) register(g *render.Graph, p Processor) error {
	source := p.Script
	if p.Path != "" {
		data, err := ioutil.ReadFile(filepath.Join(f.dir, p.Path))
		if err != nil {
			return fmt.Errorf("processor %q: %w", p.Name, err)
		}
		source = string(data)
	}
	params := make([]render.ParameterDescriptor, len(p.Parameters))
	for i, param := range p.Parameters {
		params[i] = render.ParameterDescriptor{
			Name:         param.Name,
			DefaultValue: param.Default,
			MinValue:     param.Min,
			MaxValue:     param.Max,
		}
	}
	def, err := script.Definition(p.Name, source, params)
	if err != nil {
		return fmt.Errorf("processor %q: %w", p.Name, err)
	}
	return g.RegisterProcessor(p.Name, def)
}

func (f *File) build(g *render.Graph, desc Node) (*render.Node, error) {
	kind, err := render.ParseKind(desc.Kind)
	if err != nil {
		return nil, err
	}
	n, err := f.create(g, kind, desc)
	if err != nil {
		return nil, err
	}
	if err := configure(n, desc); err != nil {
		return nil, err
	}
	for name, schedule := range desc.Params {
		p := n.Param(name)
		if p == nil {
			return nil, fmt.Errorf("%w: %v has no parameter %q", ErrInvalidFile, kind, name)
		}
		if err := apply(p, schedule); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (f *File) create(g *render.Graph, kind render.Kind, desc Node) (*render.Node, error) {
	switch kind {
	case render.KindGain:
		return g.NewGain(1)
	case render.KindDelay:
		maxDelayTime := desc.MaxDelayTime
		if maxDelayTime == 0 {
			maxDelayTime = 1
		}
		return g.NewDelay(maxDelayTime)
	case render.KindConstantSource:
		return g.NewConstantSource(1)
	case render.KindBufferSource:
		return g.NewBufferSource(signal.Float32(desc.Buffer), desc.StartTime)
	case render.KindAnalyser:
		return g.NewAnalyser(), nil
	case render.KindChannelMerger:
		return g.NewChannelMerger(channels(desc.Channels))
	case render.KindChannelSplitter:
		return g.NewChannelSplitter(channels(desc.Channels))
	case render.KindWorklet:
		options := render.DefaultWorkletOptions()
		if desc.ChannelCount > 0 {
			options.ChannelCount = desc.ChannelCount
		}
		if desc.Inputs != nil {
			options.NumberOfInputs = *desc.Inputs
		}
		if desc.Outputs != nil {
			options.NumberOfOutputs = *desc.Outputs
		}
		options.OutputChannelCount = desc.OutputChannelCount
		if desc.Options != nil {
			options.Options = desc.Options
		}
		return g.NewWorklet(desc.Processor, options)
	}
	return nil, fmt.Errorf("%w: %v can't be created", ErrInvalidFile, kind)
}

// configure applies channel attributes that are set in description.
func configure(n *render.Node, desc Node) error {
	if desc.ChannelCount > 0 && desc.ChannelCount != n.ChannelCount() {
		if err := n.SetChannelCount(desc.ChannelCount); err != nil {
			return err
		}
	}
	if desc.ChannelCountMode != "" {
		mode, err := render.ParseChannelCountMode(desc.ChannelCountMode)
		if err != nil {
			return err
		}
		if err := n.SetChannelCountMode(mode); err != nil {
			return err
		}
	}
	switch desc.ChannelInterpretation {
	case "":
	case "speakers":
		return n.SetChannelInterpretation(signal.Speakers)
	case "discrete":
		return n.SetChannelInterpretation(signal.Discrete)
	default:
		return fmt.Errorf("%w: unknown channel interpretation %q", ErrInvalidFile, desc.ChannelInterpretation)
	}
	return nil
}

func apply(p *render.Param, s Schedule) error {
	if s.Value != nil {
		if err := p.SetValue(*s.Value); err != nil {
			return err
		}
	}
	for _, e := range s.Events {
		var err error
		switch e.Type {
		case "setValue":
			err = p.SetValueAtTime(e.Value, e.Time)
		case "linearRamp":
			err = p.LinearRampToValueAtTime(e.Value, e.Time)
		case "exponentialRamp":
			err = p.ExponentialRampToValueAtTime(e.Value, e.Time)
		case "setTarget":
			err = p.SetTargetAtTime(e.Value, e.Time, e.TimeConstant)
		case "setValueCurve":
			err = p.SetValueCurveAtTime(e.Values, e.Time, e.Duration)
		case "cancelScheduledValues":
			err = p.CancelScheduledValues(e.Time)
		case "cancelAndHold":
			err = p.CancelAndHoldAtTime(e.Time)
		default:
			err = fmt.Errorf("%w: unknown event type %q", ErrInvalidFile, e.Type)
		}
		if err != nil {
			return fmt.Errorf("param %q: %w", p.Name(), err)
		}
	}
	return nil
}

func channels(n int) int {
	if n == 0 {
		return 6
	}
	return n
}
