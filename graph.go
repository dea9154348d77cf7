package render

import (
	"fmt"
	"math"

	"github.com/rs/xid"

	"pipelined.dev/render/signal"
)

const (
	// MinSampleRate is the lowest supported sample rate.
	MinSampleRate = 3000
	// MaxSampleRate is the highest supported sample rate.
	MaxSampleRate = 768000
	// MaxDelayTime is the upper limit of delay node max delay time.
	MaxDelayTime = 180
)

// Logger is a global interface for graph loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
}

// Graph is a set of connected nodes rendered into the destination node.
type Graph struct {
	uid         string
	sampleRate  int
	channels    int
	backend     Backend
	caps        Capabilities
	curves      CurveAdapter
	log         Logger
	metrics     bool
	onError     func(*ProcessorError)
	processors  map[string]ProcessorDefinition
	destination *Node
}

// Option provides a way to set functional parameters to graph.
type Option func(g *Graph) error

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// NewGraph creates a graph with a destination node of provided number of
// channels and applies options.
func NewGraph(sampleRate, channels int, options ...Option) (*Graph, error) {
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return nil, fmt.Errorf("%w: sample rate %d out of range [%d, %d]", ErrConfiguration, sampleRate, MinSampleRate, MaxSampleRate)
	}
	if channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: channels %d out of range [1, %d]", ErrConfiguration, channels, MaxChannels)
	}
	g := &Graph{
		uid:        newUID(),
		sampleRate: sampleRate,
		channels:   channels,
		backend:    noBackend{},
		log:        defaultLogger,
		processors: make(map[string]ProcessorDefinition),
	}
	for _, option := range options {
		if err := option(g); err != nil {
			return nil, err
		}
	}
	// capabilities are resolved once per graph.
	g.caps = g.backend.Capabilities()
	if adapter, ok := g.backend.(CurveAdapter); ok {
		g.curves = adapter
	}
	g.destination = g.newNode(KindDestination, 1, 1)
	g.destination.channelCount = channels
	g.destination.channelCountMode = Explicit
	g.destination.fixedCount = true
	g.destination.fixedMode = true
	return g, nil
}

// WithBackend sets backend that renders native node kinds. If this option
// is not provided, only destination and worklet nodes with registered
// processors can be rendered.
func WithBackend(b Backend) Option {
	return func(g *Graph) error {
		if b == nil {
			return fmt.Errorf("%w: nil backend", ErrConfiguration)
		}
		g.backend = b
		return nil
	}
}

// WithLogger sets logger to Graph. If this option is not provided, silent logger is used.
func WithLogger(logger Logger) Option {
	return func(g *Graph) error {
		g.log = logger
		return nil
	}
}

// WithMetrics enables expvar metrics per node kind.
func WithMetrics() Option {
	return func(g *Graph) error {
		g.metrics = true
		return nil
	}
}

// WithProcessorErrorHandler sets a function that receives processing
// errors. If this option is not provided, errors are logged as warnings.
func WithProcessorErrorHandler(fn func(*ProcessorError)) Option {
	return func(g *Graph) error {
		g.onError = fn
		return nil
	}
}

// SampleRate returns sample rate of graph.
func (g *Graph) SampleRate() int {
	return g.sampleRate
}

// Channels returns number of channels of destination.
func (g *Graph) Channels() int {
	return g.channels
}

// Capabilities returns capabilities of the graph backend.
func (g *Graph) Capabilities() Capabilities {
	return g.caps
}

// Destination returns the node which input is the result of the render.
func (g *Graph) Destination() *Node {
	return g.destination
}

// RegisterProcessor makes processor available to worklet nodes by name.
func (g *Graph) RegisterProcessor(name string, def ProcessorDefinition) error {
	if name == "" {
		return fmt.Errorf("%w: empty processor name", ErrConfiguration)
	}
	if _, ok := g.processors[name]; ok {
		return fmt.Errorf("%w: processor %q is already registered", ErrConfiguration, name)
	}
	if def.New == nil {
		return fmt.Errorf("%w: processor %q has no constructor", ErrConfiguration, name)
	}
	seen := make(map[string]struct{}, len(def.Parameters))
	for _, d := range def.Parameters {
		if _, ok := seen[d.Name]; ok || d.Name == "" {
			return fmt.Errorf("%w: processor %q has invalid parameter name %q", ErrConfiguration, name, d.Name)
		}
		seen[d.Name] = struct{}{}
		min, max := d.limits()
		if min > max || d.DefaultValue < min || d.DefaultValue > max {
			return fmt.Errorf("%w: processor %q parameter %q default %v out of range [%v, %v]", ErrConfiguration, name, d.Name, d.DefaultValue, min, max)
		}
	}
	g.processors[name] = def
	return nil
}

// NewGain creates a node that multiplies its input by gain parameter.
func (g *Graph) NewGain(gain float64) (*Node, error) {
	n := g.newNode(KindGain, 1, 1)
	p := n.addParam("gain", 1, -math.MaxFloat32, math.MaxFloat32)
	if err := p.SetValue(gain); err != nil {
		return nil, err
	}
	return n, nil
}

// NewDelay creates a node that delays its input by delayTime parameter.
func (g *Graph) NewDelay(maxDelayTime float64) (*Node, error) {
	if !(maxDelayTime > 0 && maxDelayTime < MaxDelayTime) {
		return nil, fmt.Errorf("%w: max delay time %v out of range (0, %d)", ErrConfiguration, maxDelayTime, MaxDelayTime)
	}
	n := g.newNode(KindDelay, 1, 1)
	n.addParam("delayTime", 0, 0, maxDelayTime)
	return n, nil
}

// NewConstantSource creates a mono source of offset parameter value.
func (g *Graph) NewConstantSource(offset float64) (*Node, error) {
	n := g.newNode(KindConstantSource, 0, 1)
	n.outputChannelCount = []int{1}
	p := n.addParam("offset", 1, -math.MaxFloat32, math.MaxFloat32)
	if err := p.SetValue(offset); err != nil {
		return nil, err
	}
	return n, nil
}

// NewBufferSource creates a node that plays buffer once at startTime.
func (g *Graph) NewBufferSource(buffer signal.Float32, startTime float64) (*Node, error) {
	if buffer.NumChannels() < 1 || buffer.NumChannels() > MaxChannels {
		return nil, fmt.Errorf("%w: buffer has %d channels", ErrConfiguration, buffer.NumChannels())
	}
	if startTime < 0 || math.IsNaN(startTime) || math.IsInf(startTime, 0) {
		return nil, fmt.Errorf("%w: start time %v", ErrConfiguration, startTime)
	}
	n := g.newNode(KindBufferSource, 0, 1)
	n.outputChannelCount = []int{buffer.NumChannels()}
	n.buffer = buffer.Slice(0, buffer.Size())
	n.startTime = startTime
	n.addParam("playbackRate", 1, -math.MaxFloat32, math.MaxFloat32)
	return n, nil
}

// NewAnalyser creates a node that passes its input through.
func (g *Graph) NewAnalyser() *Node {
	return g.newNode(KindAnalyser, 1, 1)
}

// NewChannelMerger creates a node that combines mono inputs into a single
// output with one channel per input.
func (g *Graph) NewChannelMerger(inputs int) (*Node, error) {
	if inputs < 1 || inputs > MaxChannels {
		return nil, fmt.Errorf("%w: merger inputs %d out of range [1, %d]", ErrConfiguration, inputs, MaxChannels)
	}
	n := g.newNode(KindChannelMerger, inputs, 1)
	n.channelCount = 1
	n.channelCountMode = Explicit
	n.fixedCount = true
	n.fixedMode = true
	n.outputChannelCount = []int{inputs}
	return n, nil
}

// NewChannelSplitter creates a node that splits channels of its input
// into mono outputs.
func (g *Graph) NewChannelSplitter(outputs int) (*Node, error) {
	if outputs < 1 || outputs > MaxChannels {
		return nil, fmt.Errorf("%w: splitter outputs %d out of range [1, %d]", ErrConfiguration, outputs, MaxChannels)
	}
	n := g.newNode(KindChannelSplitter, 1, outputs)
	n.channelCount = outputs
	n.channelCountMode = Explicit
	n.interpretation = signal.Discrete
	n.fixedCount = true
	n.fixedMode = true
	n.fixedInterpretation = true
	n.outputChannelCount = make([]int, outputs)
	for i := range n.outputChannelCount {
		n.outputChannelCount[i] = 1
	}
	return n, nil
}

// NewWorklet creates a node that runs processor registered with name. The
// processor is resolved when the graph is rendered, its parameters are
// declared if it's already registered.
func (g *Graph) NewWorklet(processor string, options WorkletOptions) (*Node, error) {
	if processor == "" {
		return nil, fmt.Errorf("%w: empty processor name", ErrConfiguration)
	}
	if options.NumberOfInputs < 0 || options.NumberOfOutputs < 0 {
		return nil, fmt.Errorf("%w: negative number of inputs or outputs", ErrConfiguration)
	}
	if options.NumberOfInputs == 0 && options.NumberOfOutputs == 0 {
		return nil, fmt.Errorf("%w: worklet must have inputs or outputs", ErrConfiguration)
	}
	outputChannels := options.OutputChannelCount
	switch {
	case len(outputChannels) > 0:
		if len(outputChannels) != options.NumberOfOutputs {
			return nil, fmt.Errorf("%w: %d output channel counts for %d outputs", ErrConfiguration, len(outputChannels), options.NumberOfOutputs)
		}
		for _, c := range outputChannels {
			if c < 1 || c > MaxChannels {
				return nil, fmt.Errorf("%w: output channel count %d out of range [1, %d]", ErrConfiguration, c, MaxChannels)
			}
		}
		outputChannels = append([]int(nil), outputChannels...)
	case options.NumberOfInputs == 1 && options.NumberOfOutputs == 1:
		outputChannels = []int{options.ChannelCount}
	default:
		outputChannels = make([]int, options.NumberOfOutputs)
		for i := range outputChannels {
			outputChannels[i] = 1
		}
	}

	n := g.newNode(KindWorklet, options.NumberOfInputs, options.NumberOfOutputs)
	if err := n.SetChannelCount(options.ChannelCount); err != nil {
		return nil, err
	}
	if err := n.SetChannelInterpretation(options.ChannelInterpretation); err != nil {
		return nil, err
	}
	n.channelCountMode = Explicit
	n.fixedMode = true
	n.outputChannelCount = outputChannels
	n.processor = processor
	n.options = options.Options

	if def, ok := g.processors[processor]; ok {
		for _, d := range def.Parameters {
			min, max := d.limits()
			n.addParam(d.Name, d.DefaultValue, min, max)
		}
	}
	for name, value := range options.ParameterData {
		p := n.Param(name)
		if p == nil {
			g.log.Debug(fmt.Sprintf("%v: ignore data of unknown parameter %q", n, name))
			continue
		}
		if err := p.SetValue(value); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (g *Graph) newNode(kind Kind, inputs, outputs int) *Node {
	return &Node{
		id:               newUID(),
		kind:             kind,
		graph:            g,
		channelCount:     2,
		channelCountMode: Max,
		interpretation:   signal.Speakers,
		numberOfInputs:   inputs,
		numberOfOutputs:  outputs,
	}
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

func (silentLogger) Warn(args ...interface{}) {}

var defaultLogger silentLogger
