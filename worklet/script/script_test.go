package script_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"pipelined.dev/render"
	"pipelined.dev/render/worklet/script"
)

const (
	constant = `
function process(inputs, outputs, parameters) {
	for (var c = 0; c < outputs[0].length; c++) {
		for (var i = 0; i < outputs[0][c].length; i++) {
			outputs[0][c][i] = options.value;
		}
	}
	return true;
}`
	gain = `
function process(inputs, outputs, parameters) {
	var input = inputs[0], output = outputs[0];
	for (var c = 0; c < input.length; c++) {
		for (var i = 0; i < input[c].length; i++) {
			output[c][i] = input[c][i] * parameters.gain[i];
		}
	}
	return false;
}`
	clock = `
function process(inputs, outputs) {
	outputs[0][0][0] = currentFrame;
	outputs[0][0][1] = currentTime;
	outputs[0][0][2] = sampleRate;
	outputs[0][0][3] = parameterData.gain;
	return true;
}`
	throwing = `
function process() {
	throw new Error("boom");
}`
	empty = `
function process(inputs, outputs) {
	outputs[0][0] = [];
	return true;
}`
	frozenClock = `
Object.defineProperty(this, "currentFrame", {value: 0, writable: false});
function process() {
	return true;
}`
	endless = `
function process() {
	while (true) {}
}`
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newProcessor(t *testing.T, source string, options render.ProcessorOptions, opts ...script.Option) render.Processor {
	t.Helper()
	def, err := script.Definition("test.js", source, nil, opts...)
	assert.NoError(t, err)
	p, err := def.New(options)
	assert.NoError(t, err)
	return p
}

func TestProcess(t *testing.T) {
	tests := []struct {
		description string
		source      string
		options     render.ProcessorOptions
		inputs      [][][]float32
		outputs     [][][]float32
		params      map[string][]float32
		expected    [][][]float32
		active      bool
	}{
		{
			description: "constant",
			source:      constant,
			options:     render.ProcessorOptions{Options: map[string]interface{}{"value": 0.5}},
			inputs:      [][][]float32{},
			outputs:     [][][]float32{{make([]float32, 3), make([]float32, 3)}},
			expected:    [][][]float32{{{0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}}},
			active:      true,
		},
		{
			description: "gain",
			source:      gain,
			inputs:      [][][]float32{{{1, 2, 3}}},
			outputs:     [][][]float32{{make([]float32, 3)}},
			params:      map[string][]float32{"gain": {0.5, 0.5, 2}},
			expected:    [][][]float32{{{0.5, 1, 6}}},
			active:      false,
		},
		{
			description: "empty channel",
			source:      empty,
			outputs:     [][][]float32{{make([]float32, 3)}},
			expected:    [][][]float32{{{}}},
			active:      true,
		},
	}
	for _, test := range tests {
		p := newProcessor(t, test.source, test.options)
		active, err := p.Process(test.inputs, test.outputs, test.params)
		assert.NoError(t, err, test.description)
		assert.Equal(t, test.active, active, test.description)
		assert.Equal(t, test.expected, test.outputs, test.description)
	}
}

func TestClock(t *testing.T) {
	p := newProcessor(t, clock, render.ProcessorOptions{
		SampleRate:    8000,
		ParameterData: map[string]float64{"gain": 0.25},
	})
	clocked, ok := p.(render.Clocked)
	assert.True(t, ok)
	clocked.Clock(256, 0.032)
	outputs := [][][]float32{{make([]float32, 4)}}
	_, err := p.Process(nil, outputs, nil)
	assert.NoError(t, err)
	assert.Equal(t, []float32{256, 0.032, 8000, 0.25}, outputs[0][0])
}

func TestClockError(t *testing.T) {
	p := newProcessor(t, frozenClock, render.ProcessorOptions{SampleRate: 8000})
	clocked, ok := p.(render.Clocked)
	assert.True(t, ok)
	clocked.Clock(128, 0.016)
	active, err := p.Process(nil, nil, nil)
	assert.False(t, active)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "currentFrame")

	// error is reported once
	active, err = p.Process(nil, nil, nil)
	assert.True(t, active)
	assert.NoError(t, err)
}

func TestErrors(t *testing.T) {
	_, err := script.Definition("broken.js", "function process( {", nil)
	assert.Error(t, err)

	def, err := script.Definition("none.js", "var x = 1;", nil)
	assert.NoError(t, err)
	_, err = def.New(render.ProcessorOptions{})
	assert.True(t, errors.Is(err, script.ErrNoProcess))

	p := newProcessor(t, throwing, render.ProcessorOptions{})
	active, err := p.Process(nil, nil, nil)
	assert.False(t, active)
	var scriptErr *script.Error
	assert.True(t, errors.As(err, &scriptErr))
	assert.Contains(t, scriptErr.Message, "boom")

	p = newProcessor(t, endless, render.ProcessorOptions{}, script.WithTimeout(10*time.Millisecond))
	_, err = p.Process(nil, nil, nil)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	var reported *render.ProcessorError
	g, err := render.NewGraph(8000, 1, render.WithProcessorErrorHandler(func(e *render.ProcessorError) {
		reported = e
	}))
	assert.NoError(t, err)

	def, err := script.Definition("constant.js", constant, nil)
	assert.NoError(t, err)
	assert.NoError(t, g.RegisterProcessor("constant", def))
	options := render.DefaultWorkletOptions()
	options.NumberOfInputs = 0
	options.Options = map[string]interface{}{"value": 0.25}
	src, err := g.NewWorklet("constant", options)
	assert.NoError(t, err)

	def, err = script.Definition("gain.js", gain, []render.ParameterDescriptor{{Name: "gain", DefaultValue: 2}})
	assert.NoError(t, err)
	assert.NoError(t, g.RegisterProcessor("gain", def))
	options = render.DefaultWorkletOptions()
	options.ChannelCount = 1
	amp, err := g.NewWorklet("gain", options)
	assert.NoError(t, err)

	def, err = script.Definition("throwing.js", throwing, nil)
	assert.NoError(t, err)
	assert.NoError(t, g.RegisterProcessor("throwing", def))
	options = render.DefaultWorkletOptions()
	options.NumberOfInputs = 0
	failing, err := g.NewWorklet("throwing", options)
	assert.NoError(t, err)

	src.Connect(0, amp, 0)
	amp.Connect(0, g.Destination(), 0)
	failing.Connect(0, g.Destination(), 0)

	result, err := g.Render(context.Background(), 200)
	assert.NoError(t, err)
	// gain returns false after the first quantum.
	for i := 0; i < 128; i++ {
		assert.Equal(t, float32(0.5), result[0][i])
	}
	for i := 128; i < 200; i++ {
		assert.Equal(t, float32(0), result[0][i])
	}
	assert.NotNil(t, reported)
	assert.Equal(t, failing.ID(), reported.NodeID)
	var scriptErr *script.Error
	assert.True(t, errors.As(reported, &scriptErr))
}
