package metric_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/render/metric"
)

func TestMeter(t *testing.T) {
	sampleRate := 44100
	// test cases
	var tests = []struct {
		kind            string
		routines        int
		renders         int
		samples         int64
		expectedSamples string
		expectedRenders string
	}{
		{
			kind:            "test-gain",
			routines:        2,
			renders:         10,
			samples:         128,
			expectedSamples: "2560",
			expectedRenders: "20",
		},
		{
			kind:            "test-gain",
			routines:        2,
			renders:         10,
			samples:         128,
			expectedSamples: "5120",
			expectedRenders: "40",
		},
		{
			kind:            "test-delay",
			routines:        1,
			renders:         1,
			samples:         44100,
			expectedSamples: "44100",
			expectedRenders: "1",
		},
	}
	// function to test meter.
	testFn := func(kind string, wg *sync.WaitGroup, renders int, samples int64) {
		for i := 0; i < renders; i++ {
			metric.Meter(kind, sampleRate)(samples)
		}
		wg.Done()
	}

	for _, c := range tests {
		wg := &sync.WaitGroup{}
		wg.Add(c.routines)
		for i := 0; i < c.routines; i++ {
			go testFn(c.kind, wg, c.renders, c.samples)
		}
		// check if no data race.
		wg.Wait()
		values := metric.Get(c.kind)
		assert.Equal(t, c.expectedSamples, values[metric.SampleCounter])
		assert.Equal(t, c.expectedRenders, values[metric.RenderCounter])
	}
	assert.Equal(t, `"1s"`, metric.Get("test-delay")[metric.DurationCounter])
}

func TestCounters(t *testing.T) {
	metric.AddQuanta("test-worklet", 3)
	metric.AddQuanta("test-worklet", 2)
	metric.AddError("test-worklet")

	values := metric.Get("test-worklet")
	assert.Equal(t, "5", values[metric.QuantumCounter])
	assert.Equal(t, "1", values[metric.ErrorCounter])
	assert.Contains(t, metric.GetAll(), "test-worklet")
	assert.Empty(t, metric.Get("test-unknown"))
}
