// Package mock provides mocks for render processors and backends.
package mock

import (
	"pipelined.dev/render"
	"pipelined.dev/render/signal"
)

// Processor mocks a render.Processor interface. Every output sample is
// Value plus, if Passthrough is set, the sample of matching input channel.
type Processor struct {
	counter
	Value       float32
	Passthrough bool
	// Limit is the call that returns false. Zero means never.
	Limit int
	// ErrorOnCall is returned on call ErrorAt or on every call if ErrorAt
	// is zero.
	ErrorOnCall error
	ErrorAt     int
	// PanicAt is the call that panics. Zero means never.
	PanicAt int
	// ErrorOnNew is returned by constructor.
	ErrorOnNew error
	// Overwrite writes into inputs and parameters after processing.
	Overwrite bool
	// Reshape appends a channel to every input on every call and drops
	// all outputs on the first call.
	Reshape bool

	// Options passed to the constructor.
	Options render.ProcessorOptions
	// InputChannels is the number of channels of every input per call.
	InputChannels [][]int
	// Params contains values of all calls per parameter.
	Params map[string][]float32
	// Frames contains current frame per call if clocked.
	Frames []int64
	// Times contains current time per call if clocked.
	Times []float64
}

// Definition returns a definition with provided parameters that
// constructs this processor.
func (m *Processor) Definition(params ...render.ParameterDescriptor) render.ProcessorDefinition {
	return render.ProcessorDefinition{
		Parameters: params,
		New: func(options render.ProcessorOptions) (render.Processor, error) {
			if m.ErrorOnNew != nil {
				return nil, m.ErrorOnNew
			}
			m.Options = options
			m.Params = make(map[string][]float32)
			return m, nil
		},
	}
}

// Process implements render.Processor.
func (m *Processor) Process(inputs, outputs [][][]float32, params map[string][]float32) (bool, error) {
	m.advance()
	if m.PanicAt == m.calls {
		panic("mock panic")
	}
	if m.ErrorOnCall != nil && (m.ErrorAt == 0 || m.ErrorAt == m.calls) {
		return false, m.ErrorOnCall
	}

	channels := make([]int, len(inputs))
	for i := range inputs {
		channels[i] = len(inputs[i])
	}
	m.InputChannels = append(m.InputChannels, channels)
	if m.Params == nil {
		m.Params = make(map[string][]float32)
	}
	for name, values := range params {
		m.Params[name] = append(m.Params[name], values...)
	}

	if m.Reshape {
		for i := range inputs {
			inputs[i] = append(inputs[i], make([]float32, signal.Quantum))
		}
		if m.calls == 1 {
			for i := range outputs {
				outputs[i] = nil
			}
		}
	}

	for i := range outputs {
		for c := range outputs[i] {
			for j := range outputs[i][c] {
				outputs[i][c][j] = m.Value
				if m.Passthrough && i < len(inputs) && c < len(inputs[i]) {
					outputs[i][c][j] += inputs[i][c][j]
				}
			}
		}
	}

	if m.Overwrite {
		for i := range inputs {
			for c := range inputs[i] {
				for j := range inputs[i][c] {
					inputs[i][c][j] = -1
				}
			}
		}
		for _, values := range params {
			for j := range values {
				values[j] = -1
			}
		}
	}
	return m.Limit == 0 || m.calls < m.Limit, nil
}

// Calls returns number of Process calls.
func (m *Processor) Calls() int {
	return m.calls
}

// ClockedProcessor is a processor that records the clock.
type ClockedProcessor struct {
	Processor
}

// Definition returns a definition that constructs this processor.
func (m *ClockedProcessor) Definition(params ...render.ParameterDescriptor) render.ProcessorDefinition {
	def := m.Processor.Definition(params...)
	newProcessor := def.New
	def.New = func(options render.ProcessorOptions) (render.Processor, error) {
		if _, err := newProcessor(options); err != nil {
			return nil, err
		}
		return m, nil
	}
	return def
}

// Clock implements render.Clocked.
func (m *ClockedProcessor) Clock(currentFrame int64, currentTime float64) {
	m.Frames = append(m.Frames, currentFrame)
	m.Times = append(m.Times, currentTime)
}

// Backend mocks a render.Backend interface. It renders outputs filled with
// Value and records requests.
type Backend struct {
	counter
	Caps        render.Capabilities
	Value       float32
	ErrorOnCall error
	Requests    []render.NativeRequest
}

// Capabilities implements render.Backend.
func (m *Backend) Capabilities() render.Capabilities {
	return m.Caps
}

// Render implements render.Backend.
func (m *Backend) Render(req render.NativeRequest) ([]signal.Float32, error) {
	m.advance()
	m.Requests = append(m.Requests, req)
	if m.ErrorOnCall != nil {
		return nil, m.ErrorOnCall
	}
	outputs := make([]signal.Float32, len(req.OutputChannels))
	for i, c := range req.OutputChannels {
		outputs[i] = signal.EmptyFloat32(c, req.Length)
		for j := range outputs[i] {
			for k := range outputs[i][j] {
				outputs[i][j][k] = m.Value
			}
		}
	}
	return outputs, nil
}

// Calls returns number of Render calls.
func (m *Backend) Calls() int {
	return m.calls
}

// counter counts calls of mocks.
type counter struct {
	calls int
}

func (c *counter) advance() {
	c.calls++
}
