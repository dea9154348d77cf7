package mock_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/render"
	"pipelined.dev/render/mock"
)

var errTest = errors.New("test error")

func TestProcessor(t *testing.T) {
	tests := []struct {
		description string
		processor   mock.Processor
		calls       int
		active      []bool
		err         error
	}{
		{
			description: "always active",
			processor:   mock.Processor{Value: 1},
			calls:       3,
			active:      []bool{true, true, true},
		},
		{
			description: "limit",
			processor:   mock.Processor{Limit: 2},
			calls:       2,
			active:      []bool{true, false},
		},
		{
			description: "error at call",
			processor:   mock.Processor{ErrorOnCall: errTest, ErrorAt: 2},
			calls:       2,
			active:      []bool{true, false},
			err:         errTest,
		},
	}
	for _, test := range tests {
		m := test.processor
		p, err := m.Definition().New(render.ProcessorOptions{})
		assert.NoError(t, err)
		var lastErr error
		for i := 0; i < test.calls; i++ {
			out := [][][]float32{{make([]float32, 2)}}
			active, err := p.Process([][][]float32{{}}, out, nil)
			assert.Equal(t, test.active[i], active, test.description)
			lastErr = err
		}
		assert.Equal(t, test.err, lastErr, test.description)
		assert.Equal(t, test.calls, m.Calls(), test.description)
	}
}

func TestPassthrough(t *testing.T) {
	m := mock.Processor{Value: 1, Passthrough: true}
	in := [][][]float32{{{1, 2}}}
	out := [][][]float32{{make([]float32, 2), make([]float32, 2)}}
	_, err := m.Process(in, out, map[string][]float32{"p": {3, 4}})
	assert.NoError(t, err)
	assert.Equal(t, [][][]float32{{{2, 3}, {1, 1}}}, out)
	assert.Equal(t, [][]int{{1}}, m.InputChannels)
	assert.Equal(t, []float32{3, 4}, m.Params["p"])
}

func TestConstructorError(t *testing.T) {
	m := mock.Processor{ErrorOnNew: errTest}
	_, err := m.Definition().New(render.ProcessorOptions{})
	assert.Equal(t, errTest, err)
}

func TestClockedProcessor(t *testing.T) {
	m := mock.ClockedProcessor{}
	p, err := m.Definition().New(render.ProcessorOptions{})
	assert.NoError(t, err)
	clocked, ok := p.(render.Clocked)
	assert.True(t, ok)
	clocked.Clock(128, 0.5)
	assert.Equal(t, []int64{128}, m.Frames)
	assert.Equal(t, []float64{0.5}, m.Times)
}

func TestBackend(t *testing.T) {
	m := mock.Backend{Value: 0.5}
	outputs, err := m.Render(render.NativeRequest{Length: 2, OutputChannels: []int{1, 2}})
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, 2, len(outputs))
	assert.Equal(t, []float32{0.5, 0.5}, outputs[1][1])

	m.ErrorOnCall = errTest
	_, err = m.Render(render.NativeRequest{})
	assert.Equal(t, errTest, err)
	assert.Equal(t, 2, len(m.Requests))
}
