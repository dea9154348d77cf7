package render

import (
	"pipelined.dev/render/automation"
	"pipelined.dev/render/signal"
)

// Backend renders native node kinds. The renderer only relies on the
// capabilities reported by backend and never inspects its internals.
type Backend interface {
	Capabilities() Capabilities
	Render(NativeRequest) ([]signal.Float32, error)
}

// CurveAdapter is implemented by backends that need value curves to be
// rewritten before they are scheduled.
type CurveAdapter interface {
	AdaptValueCurve(values []float64, startTime, duration float64, sampleRate int) []automation.Event
}

// Capabilities describes what a backend is able to render.
type Capabilities struct {
	Kinds []Kind
	// PerSampleAutomation is false when parameter values are evaluated
	// once per quantum.
	PerSampleAutomation bool
}

// Supports returns true if kind can be rendered.
func (c Capabilities) Supports(k Kind) bool {
	for _, kind := range c.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// NativeRequest contains everything a backend needs to render a node for
// the whole length of the session.
type NativeRequest struct {
	NodeID     string
	Kind       Kind
	SampleRate int
	Length     int
	// Inputs are summed and mixed inputs of the node.
	Inputs []signal.Float32
	// Params are computed parameter values, one per frame.
	Params map[string][]float32
	// OutputChannels is the expected number of channels per output.
	OutputChannels []int

	// Buffer and StartTime are set for buffer sources.
	Buffer    signal.Float32
	StartTime float64
	// Processor is the processor name of worklet nodes.
	Processor string
	Options   interface{}
}

// noBackend is used when graph has no backend configured.
type noBackend struct{}

func (noBackend) Capabilities() Capabilities {
	return Capabilities{PerSampleAutomation: true}
}

func (noBackend) Render(req NativeRequest) ([]signal.Float32, error) {
	return nil, ErrUnsupported
}
