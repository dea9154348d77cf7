package render

import (
	"fmt"

	"pipelined.dev/render/signal"
)

// input is a summed and mixed input of a node.
type input struct {
	signal.Float32
	connected bool
}

// renderer renders a node of some kind with its inputs and parameter
// values already computed.
type renderer interface {
	render(s *Session, n *Node, inputs []input, params map[string][]float32) ([]signal.Float32, error)
}

// renderers is the dispatch table of node kinds.
var renderers = map[Kind]renderer{
	KindDestination:     destinationRenderer{},
	KindGain:            nativeRenderer{},
	KindDelay:           nativeRenderer{},
	KindConstantSource:  nativeRenderer{},
	KindBufferSource:    nativeRenderer{},
	KindAnalyser:        nativeRenderer{},
	KindChannelMerger:   nativeRenderer{},
	KindChannelSplitter: nativeRenderer{},
	KindWorklet:         workletRenderer{},
}

// render returns outputs of the node. Results are cached for the session.
// A node that is already being rendered is part of a cycle: it's rendered
// as silence and the result is not cached.
func (s *Session) render(n *Node) ([]signal.Float32, error) {
	if outputs, ok := s.cache[n]; ok {
		return outputs, nil
	}
	if n.graph != s.graph {
		return nil, fmt.Errorf("%w: %v belongs to another graph", ErrGraph, n)
	}
	if s.trace.contains(n) {
		s.graph.log.Debug(fmt.Sprintf("cycle at %v: %v", n, s.trace.String()))
		return n.silence(s.length), nil
	}
	r, ok := renderers[n.kind]
	if !ok {
		return nil, fmt.Errorf("%w: no renderer for %v", ErrUnsupported, n)
	}

	s.trace.push(n)
	defer s.trace.pop()
	measure := s.meter(n)

	// parameter curves are computed while inputs are rendered.
	perSample := s.graph.caps.PerSampleAutomation
	tasks := make([]*task, len(n.params))
	for i, p := range n.params {
		tasks[i] = s.startAutomation(p.events.Clone(), perSample)
	}

	inputs, err := s.renderInputs(n)
	if err != nil {
		return nil, err
	}
	params, err := s.renderParams(n, tasks)
	if err != nil {
		return nil, err
	}
	outputs, err := r.render(s, n, inputs, params)
	if err != nil {
		return nil, err
	}
	for i := range outputs {
		if outputs[i].Size() != s.length {
			outputs[i] = outputs[i].Resize(s.length)
		}
	}
	s.cache[n] = outputs
	measure(int64(s.length))
	return outputs, nil
}

// renderInputs renders all nodes connected to inputs of n and sums them
// per input.
func (s *Session) renderInputs(n *Node) ([]input, error) {
	for _, c := range n.incoming {
		if c.param == "" && (c.input < 0 || c.input >= n.numberOfInputs) {
			return nil, fmt.Errorf("%w: %v: %v has %d inputs", ErrGraph, c, n, n.numberOfInputs)
		}
	}
	sources := make([][]signal.Float32, n.numberOfInputs)
	for i := range sources {
		for _, c := range n.incoming {
			if c.param != "" || c.input != i {
				continue
			}
			out, err := s.renderSource(c)
			if err != nil {
				return nil, err
			}
			sources[i] = append(sources[i], out)
		}
	}

	inputs := make([]input, n.numberOfInputs)
	for i := range inputs {
		channels := make([]int, len(sources[i]))
		for j, src := range sources[i] {
			channels[j] = src.NumChannels()
		}
		buf := signal.EmptyFloat32(n.channelCountMode.channels(n.channelCount, channels), s.length)
		for _, src := range sources[i] {
			signal.Mix(buf, src, n.interpretation)
		}
		inputs[i] = input{Float32: buf, connected: len(sources[i]) > 0}
	}
	return inputs, nil
}

// renderParams awaits automation curves and adds signals connected to
// parameters. Values are clamped to parameter range.
func (s *Session) renderParams(n *Node, tasks []*task) (map[string][]float32, error) {
	for _, c := range n.incoming {
		if c.param != "" && n.Param(c.param) == nil {
			return nil, fmt.Errorf("%w: %v: %v has no such parameter", ErrGraph, c, n)
		}
	}
	params := make(map[string][]float32, len(n.params))
	for i, p := range n.params {
		for _, c := range n.incoming {
			if c.param != p.name {
				continue
			}
			out, err := s.renderSource(c)
			if err != nil {
				return nil, err
			}
			// connected signals are summed first and added to automation
			// values when they are ready.
			if params[p.name] == nil {
				params[p.name] = make([]float32, s.length)
			}
			mono := out.Mono()
			sum := params[p.name]
			for j := range mono {
				sum[j] += mono[j]
			}
		}
		values, err := tasks[i].await(s.ctx)
		if err != nil {
			return nil, err
		}
		if sum := params[p.name]; sum != nil {
			for j := range values {
				values[j] += sum[j]
			}
		}
		min, max := float32(p.minValue), float32(p.maxValue)
		for j, v := range values {
			if v < min {
				values[j] = min
			} else if v > max {
				values[j] = max
			}
		}
		params[p.name] = values
	}
	return params, nil
}

// renderSource renders the source of connection and returns the connected
// output.
func (s *Session) renderSource(c connection) (signal.Float32, error) {
	if c.source.graph != s.graph {
		return nil, fmt.Errorf("%w: %v: source belongs to another graph", ErrGraph, c)
	}
	if c.output < 0 || c.output >= c.source.numberOfOutputs {
		return nil, fmt.Errorf("%w: %v: source has %d outputs", ErrGraph, c, c.source.numberOfOutputs)
	}
	outputs, err := s.render(c.source)
	if err != nil {
		return nil, err
	}
	return outputs[c.output], nil
}

// destinationRenderer passes its input through.
type destinationRenderer struct{}

func (destinationRenderer) render(s *Session, n *Node, inputs []input, params map[string][]float32) ([]signal.Float32, error) {
	return []signal.Float32{inputs[0].Float32}, nil
}

// nativeRenderer delegates rendering to backend.
type nativeRenderer struct{}

func (nativeRenderer) render(s *Session, n *Node, inputs []input, params map[string][]float32) ([]signal.Float32, error) {
	if !s.graph.caps.Supports(n.kind) {
		return nil, fmt.Errorf("%w: backend can't render %v", ErrUnsupported, n)
	}
	req := NativeRequest{
		NodeID:         n.id,
		Kind:           n.kind,
		SampleRate:     s.graph.sampleRate,
		Length:         s.length,
		Inputs:         make([]signal.Float32, len(inputs)),
		Params:         params,
		OutputChannels: n.outputChannels(inputs),
		Buffer:         n.buffer,
		StartTime:      n.startTime,
		Processor:      n.processor,
		Options:        n.options,
	}
	for i := range inputs {
		req.Inputs[i] = inputs[i].Float32
	}
	outputs, err := s.graph.backend.Render(req)
	if err != nil {
		return nil, fmt.Errorf("render %v: %w", n, err)
	}
	if len(outputs) != n.numberOfOutputs {
		return nil, fmt.Errorf("render %v: backend returned %d outputs instead of %d", n, len(outputs), n.numberOfOutputs)
	}
	return outputs, nil
}

// workletRenderer uses backend if it supports worklets and simulates the
// processor otherwise.
type workletRenderer struct{}

func (workletRenderer) render(s *Session, n *Node, inputs []input, params map[string][]float32) ([]signal.Float32, error) {
	if s.graph.caps.Supports(KindWorklet) {
		return nativeRenderer{}.render(s, n, inputs, params)
	}
	def, ok := s.graph.processors[n.processor]
	if !ok {
		return nil, fmt.Errorf("%w: processor %q of %v is not registered", ErrUnsupported, n.processor, n)
	}
	return s.simulate(n, def, inputs, params), nil
}
