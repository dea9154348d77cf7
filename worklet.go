package render

import (
	"fmt"

	"pipelined.dev/render/metric"
	"pipelined.dev/render/signal"
)

// simulate runs processor quantum by quantum. Processing errors are
// reported and stop the processing, the rest of outputs stays silent.
func (s *Session) simulate(n *Node, def ProcessorDefinition, inputs []input, params map[string][]float32) []signal.Float32 {
	outputs := make([]signal.Float32, len(n.outputChannelCount))
	for i, c := range n.outputChannelCount {
		outputs[i] = signal.EmptyFloat32(c, s.length)
	}

	proc, err := newProcessor(def, ProcessorOptions{
		NodeID:             n.id,
		SampleRate:         s.graph.sampleRate,
		NumberOfInputs:     n.numberOfInputs,
		NumberOfOutputs:    n.numberOfOutputs,
		OutputChannelCount: append([]int(nil), n.outputChannelCount...),
		ParameterData:      parameterData(n),
		Options:            n.options,
	})
	if err != nil {
		s.notify(n, err)
		return outputs
	}
	clock, clocked := proc.(Clocked)

	// scratch buffers are private, processor gets slices rebuilt for every
	// quantum so it can't change their layout.
	inScratch := make([]signal.Float32, len(inputs))
	in := make([][][]float32, len(inputs))
	for i := range inputs {
		if inputs[i].connected {
			inScratch[i] = signal.EmptyFloat32(inputs[i].NumChannels(), signal.Quantum)
		}
		in[i] = make([][]float32, 0, inScratch[i].NumChannels())
	}
	outScratch := make([]signal.Float32, len(outputs))
	out := make([][][]float32, len(outputs))
	for i := range outputs {
		outScratch[i] = signal.EmptyFloat32(outputs[i].NumChannels(), signal.Quantum)
		out[i] = make([][]float32, 0, outputs[i].NumChannels())
	}
	blocks := make(map[string][]float32, len(def.Parameters))

	quanta := 0
	for offset := 0; offset < s.length; offset += signal.Quantum {
		for i := range in {
			in[i] = in[i][:0]
			for c := range inScratch[i] {
				copy(inScratch[i][c], inputs[i].Float32[c][offset:offset+signal.Quantum])
				in[i] = append(in[i], inScratch[i][c])
			}
		}
		for i := range out {
			out[i] = out[i][:0]
			for _, block := range outScratch[i] {
				for j := range block {
					block[j] = 0
				}
				out[i] = append(out[i], block)
			}
		}
		for _, d := range def.Parameters {
			blocks[d.Name] = parameterBlock(blocks[d.Name], params[d.Name], offset, d.DefaultValue)
		}
		if clocked {
			clock.Clock(int64(offset), float64(offset)/float64(s.graph.sampleRate))
		}

		active, err := process(proc, in, out, blocks)
		quanta++
		if err != nil {
			s.notify(n, err)
			break
		}
		for i := range out {
			for c := range out[i] {
				if c < outputs[i].NumChannels() && len(out[i][c]) > 0 {
					copy(outputs[i][c][offset:offset+signal.Quantum], out[i][c])
				}
			}
		}
		if !active {
			break
		}
	}
	if s.graph.metrics {
		metric.AddQuanta(n.kind.String(), int64(quanta))
	}
	return outputs
}

// parameterBlock copies quantum of values into block. If parameter has no
// values, block is filled with default value.
func parameterBlock(block, values []float32, offset int, defaultValue float64) []float32 {
	if len(block) != signal.Quantum {
		block = make([]float32, signal.Quantum)
	}
	if values == nil {
		for i := range block {
			block[i] = float32(defaultValue)
		}
		return block
	}
	copy(block, values[offset:offset+signal.Quantum])
	return block
}

func parameterData(n *Node) map[string]float64 {
	data := make(map[string]float64, len(n.params))
	for _, p := range n.params {
		data[p.name] = p.Value()
	}
	return data
}

func newProcessor(def ProcessorDefinition, options ProcessorOptions) (p Processor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	p, err = def.New(options)
	if err == nil && p == nil {
		err = fmt.Errorf("processor constructor returned nil")
	}
	return p, err
}

func process(p Processor, inputs, outputs [][][]float32, params map[string][]float32) (active bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			active, err = false, panicError{value: r}
		}
	}()
	return p.Process(inputs, outputs, params)
}
