package native_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/render"
	"pipelined.dev/render/automation"
	"pipelined.dev/render/native"
	"pipelined.dev/render/signal"
)

func constant(v float32, length int) []float32 {
	values := make([]float32, length)
	for i := range values {
		values[i] = v
	}
	return values
}

func TestRender(t *testing.T) {
	tests := []struct {
		description string
		req         render.NativeRequest
		expected    []signal.Float32
	}{
		{
			description: "gain",
			req: render.NativeRequest{
				Kind:   render.KindGain,
				Length: 3,
				Inputs: []signal.Float32{{{1, 2, 3}, {-1, -2, -3}}},
				Params: map[string][]float32{"gain": {0.5, 1, 2}},
			},
			expected: []signal.Float32{{{0.5, 2, 6}, {-0.5, -2, -6}}},
		},
		{
			description: "delay by two frames",
			req: render.NativeRequest{
				Kind:       render.KindDelay,
				SampleRate: 4,
				Length:     4,
				Inputs:     []signal.Float32{{{1, 2, 3, 4}}},
				Params:     map[string][]float32{"delayTime": constant(0.5, 4)},
			},
			expected: []signal.Float32{{{0, 0, 1, 2}}},
		},
		{
			description: "delay by half frame",
			req: render.NativeRequest{
				Kind:       render.KindDelay,
				SampleRate: 4,
				Length:     3,
				Inputs:     []signal.Float32{{{2, 4, 6}}},
				Params:     map[string][]float32{"delayTime": constant(0.125, 3)},
			},
			expected: []signal.Float32{{{1, 3, 5}}},
		},
		{
			description: "constant source",
			req: render.NativeRequest{
				Kind:   render.KindConstantSource,
				Length: 2,
				Params: map[string][]float32{"offset": {0.25, 0.75}},
			},
			expected: []signal.Float32{{{0.25, 0.75}}},
		},
		{
			description: "buffer source with start",
			req: render.NativeRequest{
				Kind:           render.KindBufferSource,
				SampleRate:     2,
				Length:         5,
				Buffer:         signal.Float32{{1, 2}, {3, 4}},
				StartTime:      1,
				Params:         map[string][]float32{"playbackRate": constant(1, 5)},
				OutputChannels: []int{2},
			},
			expected: []signal.Float32{{{0, 0, 1, 2, 0}, {0, 0, 3, 4, 0}}},
		},
		{
			description: "buffer source at half speed",
			req: render.NativeRequest{
				Kind:           render.KindBufferSource,
				SampleRate:     2,
				Length:         4,
				Buffer:         signal.Float32{{2, 4}},
				Params:         map[string][]float32{"playbackRate": constant(0.5, 4)},
				OutputChannels: []int{1},
			},
			expected: []signal.Float32{{{2, 3, 4, 0}}},
		},
		{
			description: "analyser",
			req: render.NativeRequest{
				Kind:   render.KindAnalyser,
				Length: 2,
				Inputs: []signal.Float32{{{1, 2}}},
			},
			expected: []signal.Float32{{{1, 2}}},
		},
		{
			description: "merger",
			req: render.NativeRequest{
				Kind:   render.KindChannelMerger,
				Length: 2,
				Inputs: []signal.Float32{{{1, 2}}, {{3, 4}}, {{0, 0}}},
			},
			expected: []signal.Float32{{{1, 2}, {3, 4}, {0, 0}}},
		},
		{
			description: "splitter",
			req: render.NativeRequest{
				Kind:           render.KindChannelSplitter,
				Length:         2,
				Inputs:         []signal.Float32{{{1, 2}, {3, 4}}},
				OutputChannels: []int{1, 1, 1},
			},
			expected: []signal.Float32{{{1, 2}}, {{3, 4}}, {{0, 0}}},
		},
	}
	b := native.New()
	for _, test := range tests {
		outputs, err := b.Render(test.req)
		assert.NoError(t, err, test.description)
		assert.Equal(t, test.expected, outputs, test.description)
	}
}

func TestInputsAreNotModified(t *testing.T) {
	in := signal.Float32{{1, 2}}
	outputs, err := native.New().Render(render.NativeRequest{
		Kind:   render.KindAnalyser,
		Length: 2,
		Inputs: []signal.Float32{in},
	})
	assert.NoError(t, err)
	outputs[0][0][0] = 10
	assert.Equal(t, float32(1), in[0][0])
}

func TestCapabilities(t *testing.T) {
	caps := native.New().Capabilities()
	assert.True(t, caps.PerSampleAutomation)
	assert.True(t, caps.Supports(render.KindGain))
	assert.True(t, caps.Supports(render.KindChannelSplitter))
	assert.False(t, caps.Supports(render.KindWorklet))
	assert.False(t, caps.Supports(render.KindDestination))

	caps = native.New(render.KindGain, render.KindWorklet).Capabilities()
	assert.Equal(t, []render.Kind{render.KindGain}, caps.Kinds)

	legacy := native.Legacy()
	assert.False(t, legacy.Capabilities().PerSampleAutomation)
	assert.Equal(t, native.New().Capabilities().Kinds, legacy.Capabilities().Kinds)
}

func TestUnknownKind(t *testing.T) {
	_, err := native.New(render.KindGain).Render(render.NativeRequest{Kind: render.KindDelay})
	assert.True(t, errors.Is(err, native.ErrUnknownKind))
}

func TestAdaptValueCurve(t *testing.T) {
	tests := []struct {
		description string
		values      []float64
		start       float64
		duration    float64
		sampleRate  int
		expected    []automation.Event
	}{
		{
			description: "resampled per frame",
			values:      []float64{0, 1},
			start:       0,
			duration:    1,
			sampleRate:  4,
			expected: []automation.Event{
				automation.SetValueCurveAt([]float64{0, 0.25, 0.5, 0.75}, 0, 1),
				automation.SetValueAt(1, 1),
			},
		},
		{
			description: "starts between frames",
			values:      []float64{0, 2, 4},
			start:       0.125,
			duration:    1,
			sampleRate:  4,
			expected: []automation.Event{
				automation.SetValueCurveAt([]float64{0.5, 1.5, 2.5}, 0.125, 1),
				automation.SetValueAt(4, 1.125),
			},
		},
		{
			description: "too short to resample",
			values:      []float64{1, 2},
			start:       0,
			duration:    0.25,
			sampleRate:  4,
			expected: []automation.Event{
				automation.SetValueCurveAt([]float64{1, 2}, 0, 0.25),
			},
		},
	}
	legacy := native.Legacy()
	for _, test := range tests {
		events := legacy.AdaptValueCurve(test.values, test.start, test.duration, test.sampleRate)
		assert.Equal(t, test.expected, events, test.description)
	}
}
