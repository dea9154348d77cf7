package render

import (
	"fmt"

	"pipelined.dev/render/signal"
)

// MaxChannels is the maximum channel count of node inputs and outputs.
const MaxChannels = 32

// Node is a processing unit of a graph. Nodes are created with Graph
// constructors and belong to that graph.
type Node struct {
	id    string
	kind  Kind
	graph *Graph

	channelCount     int
	channelCountMode ChannelCountMode
	interpretation   signal.Interpretation
	numberOfInputs   int
	numberOfOutputs  int
	// outputChannelCount is set for nodes with static output layout.
	outputChannelCount []int

	// fixed attributes cannot be changed after construction.
	fixedCount, fixedMode, fixedInterpretation bool

	params   []*Param
	incoming []connection

	// buffer source
	buffer    signal.Float32
	startTime float64
	// worklet
	processor string
	options   interface{}
}

// connection is an edge from source output to node input or parameter.
type connection struct {
	source *Node
	output int
	input  int
	param  string
}

func (c connection) String() string {
	if c.param != "" {
		return fmt.Sprintf("%v[%d] -> param %q", c.source, c.output, c.param)
	}
	return fmt.Sprintf("%v[%d] -> input %d", c.source, c.output, c.input)
}

// ID returns unique node id.
func (n *Node) ID() string {
	return n.id
}

// Kind returns node kind.
func (n *Node) Kind() Kind {
	return n.kind
}

// ChannelCount returns the channel count used to compute input channels.
func (n *Node) ChannelCount() int {
	return n.channelCount
}

// ChannelCountMode returns the mode used to compute input channels.
func (n *Node) ChannelCountMode() ChannelCountMode {
	return n.channelCountMode
}

// ChannelInterpretation returns how inputs are mixed.
func (n *Node) ChannelInterpretation() signal.Interpretation {
	return n.interpretation
}

// NumberOfInputs returns number of inputs.
func (n *Node) NumberOfInputs() int {
	return n.numberOfInputs
}

// NumberOfOutputs returns number of outputs.
func (n *Node) NumberOfOutputs() int {
	return n.numberOfOutputs
}

// Processor returns registered processor name of worklet node.
func (n *Node) Processor() string {
	return n.processor
}

// Param returns parameter by name or nil if node has no such parameter.
func (n *Node) Param(name string) *Param {
	for _, p := range n.params {
		if p.name == name {
			return p
		}
	}
	return nil
}

// Params returns parameters in declaration order.
func (n *Node) Params() []*Param {
	return append([]*Param(nil), n.params...)
}

func (n *Node) String() string {
	return fmt.Sprintf("%v(%s)", n.kind, n.id)
}

// SetChannelCount sets the channel count of node.
func (n *Node) SetChannelCount(count int) error {
	if n.fixedCount && count != n.channelCount {
		return fmt.Errorf("%w: channel count of %v is fixed to %d", ErrConfiguration, n, n.channelCount)
	}
	if count < 1 || count > MaxChannels {
		return fmt.Errorf("%w: channel count %d out of range [1, %d]", ErrConfiguration, count, MaxChannels)
	}
	n.channelCount = count
	return nil
}

// SetChannelCountMode sets the channel count mode of node.
func (n *Node) SetChannelCountMode(mode ChannelCountMode) error {
	if n.fixedMode && mode != n.channelCountMode {
		return fmt.Errorf("%w: channel count mode of %v is fixed to %v", ErrConfiguration, n, n.channelCountMode)
	}
	switch mode {
	case Max, ClampedMax, Explicit:
	default:
		return fmt.Errorf("%w: unknown channel count mode %d", ErrConfiguration, mode)
	}
	n.channelCountMode = mode
	return nil
}

// SetChannelInterpretation sets the channel interpretation of node.
func (n *Node) SetChannelInterpretation(in signal.Interpretation) error {
	if n.fixedInterpretation && in != n.interpretation {
		return fmt.Errorf("%w: channel interpretation of %v is fixed", ErrConfiguration, n)
	}
	switch in {
	case signal.Speakers, signal.Discrete:
	default:
		return fmt.Errorf("%w: unknown channel interpretation %d", ErrConfiguration, in)
	}
	n.interpretation = in
	return nil
}

// Connect connects output of node to input of destination. Connecting the
// same pair twice has no effect. Connections are validated when the graph
// is rendered.
func (n *Node) Connect(output int, dst *Node, input int) {
	dst.connect(connection{source: n, output: output, input: input})
}

// ConnectParam connects output of node to named parameter of destination.
// Signal is down-mixed to mono and added to the parameter value.
func (n *Node) ConnectParam(output int, dst *Node, param string) {
	dst.connect(connection{source: n, output: output, param: param})
}

// Disconnect removes all connections from node to destination.
func (n *Node) Disconnect(dst *Node) {
	kept := dst.incoming[:0]
	for _, c := range dst.incoming {
		if c.source != n {
			kept = append(kept, c)
		}
	}
	dst.incoming = kept
}

func (n *Node) connect(c connection) {
	for _, existing := range n.incoming {
		if existing == c {
			return
		}
	}
	n.incoming = append(n.incoming, c)
}

// addParam declares a new parameter of node.
func (n *Node) addParam(name string, defaultValue, minValue, maxValue float64) *Param {
	p := newParam(n, name, defaultValue, minValue, maxValue)
	n.params = append(n.params, p)
	return p
}

// staticChannels returns the number of channels of every output that
// doesn't depend on inputs.
func (n *Node) staticChannels() []int {
	if n.outputChannelCount != nil {
		return n.outputChannelCount
	}
	channels := make([]int, n.numberOfOutputs)
	for i := range channels {
		channels[i] = n.channelCount
	}
	return channels
}

// outputChannels returns the number of channels of every output when the
// node is rendered with provided inputs.
func (n *Node) outputChannels(inputs []input) []int {
	switch n.kind {
	case KindGain, KindDelay, KindAnalyser:
		return []int{inputs[0].NumChannels()}
	}
	return n.staticChannels()
}

// silence returns zero-filled outputs.
func (n *Node) silence(length int) []signal.Float32 {
	channels := n.staticChannels()
	outputs := make([]signal.Float32, len(channels))
	for i, c := range channels {
		outputs[i] = signal.EmptyFloat32(c, length)
	}
	return outputs
}
