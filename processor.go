package render

import (
	"math"

	"pipelined.dev/render/signal"
)

// Processor is a custom block processing callback. It's invoked once per
// quantum with non-interleaved buffers:
//
//	inputs[input][channel][frame]
//	outputs[output][channel][frame]
//	params[name][frame]
//
// Inputs that have no connections are empty. Returning false stops the
// processing and the rest of the output is silent. Returning error is
// reported with ProcessorError and has the same effect.
type Processor interface {
	Process(inputs, outputs [][][]float32, params map[string][]float32) (bool, error)
}

// Clocked processors receive the position of the quantum before every
// Process call.
type Clocked interface {
	Clock(currentFrame int64, currentTime float64)
}

// ProcessorDefinition describes a registered processor.
type ProcessorDefinition struct {
	Parameters []ParameterDescriptor
	New        func(ProcessorOptions) (Processor, error)
}

// ParameterDescriptor declares a parameter of processor. If both MinValue
// and MaxValue are zero, parameter is not limited.
type ParameterDescriptor struct {
	Name         string
	DefaultValue float64
	MinValue     float64
	MaxValue     float64
}

// ProcessorOptions are passed to processor constructor.
type ProcessorOptions struct {
	NodeID             string
	SampleRate         int
	NumberOfInputs     int
	NumberOfOutputs    int
	OutputChannelCount []int
	ParameterData      map[string]float64
	Options            interface{}
}

// WorkletOptions configure a worklet node. Use DefaultWorkletOptions to
// get the defaults.
type WorkletOptions struct {
	ChannelCount          int
	ChannelInterpretation signal.Interpretation
	NumberOfInputs        int
	NumberOfOutputs       int
	// OutputChannelCount is computed when empty: a node with one input and
	// one output has ChannelCount channels, any other has mono outputs.
	OutputChannelCount []int
	ParameterData      map[string]float64
	// Options are passed to processor as is.
	Options interface{}
}

// DefaultWorkletOptions returns options of a node with one input and one
// stereo output.
func DefaultWorkletOptions() WorkletOptions {
	return WorkletOptions{
		ChannelCount:    2,
		NumberOfInputs:  1,
		NumberOfOutputs: 1,
	}
}

func (d ParameterDescriptor) limits() (float64, float64) {
	if d.MinValue == 0 && d.MaxValue == 0 {
		return -math.MaxFloat32, math.MaxFloat32
	}
	return d.MinValue, d.MaxValue
}
