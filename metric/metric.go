// Package metric publishes expvar counters of rendered nodes grouped by
// node kind.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pipelined.dev/render/signal"
)

const nodesLabel = "render.nodes"

const (
	// RenderCounter counts number of rendered nodes.
	RenderCounter = "Renders"
	// SampleCounter measures number of rendered samples per channel.
	SampleCounter = "Samples"
	// LatencyCounter measures how long the last node render took.
	LatencyCounter = "Latency"
	// DurationCounter counts what's the duration of rendered signal.
	DurationCounter = "Duration"
	// QuantumCounter counts quanta processed by simulated processors.
	QuantumCounter = "Quanta"
	// ErrorCounter counts processing errors.
	ErrorCounter = "Errors"
)

var (
	kinds = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		RenderCounter,
		SampleCounter,
		LatencyCounter,
		DurationCounter,
		QuantumCounter,
		ErrorCounter,
	}
)

// Get metrics values for provided node kind.
func Get(kind string) map[string]string {
	return getCounters(kind)
}

// GetAll returns counters for all measured node kinds.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	kinds.Lock()
	defer kinds.Unlock()
	for kind := range kinds.m {
		m[kind] = getCounters(kind)
	}
	return m
}

func getCounters(kind string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(kind, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// MeasureFunc captures metrics when node render is done.
type MeasureFunc func(samples int64)

// Meter counts a node render and returns a closure that captures its
// latency and rendered samples.
func Meter(kind string, sampleRate int) MeasureFunc {
	metric := kinds.get(kind)
	metric.renders.Add(1)
	startedAt := time.Now()
	return func(s int64) {
		metric.latency.set(time.Since(startedAt))
		metric.samples.Add(s)
		metric.duration.add(signal.DurationOf(sampleRate, s))
	}
}

// AddQuanta increments number of simulated quanta of node kind.
func AddQuanta(kind string, n int64) {
	kinds.get(kind).quanta.Add(n)
}

// AddError increments number of processing errors of node kind.
func AddError(kind string) {
	kinds.get(kind).errors.Add(1)
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(kind string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[kind]; ok {
		// return existing metric if available
		return metric
	}
	// create new metric
	metric := newMetric(kind)
	m.m[kind] = metric
	return metric
}

type metric struct {
	renders  *expvar.Int
	samples  *expvar.Int
	quanta   *expvar.Int
	errors   *expvar.Int
	latency  *duration
	duration *duration
}

func newMetric(kind string) metric {
	m := metric{
		renders:  expvar.NewInt(key(kind, RenderCounter)),
		samples:  expvar.NewInt(key(kind, SampleCounter)),
		quanta:   expvar.NewInt(key(kind, QuantumCounter)),
		errors:   expvar.NewInt(key(kind, ErrorCounter)),
		latency:  &duration{},
		duration: &duration{},
	}
	expvar.Publish(key(kind, LatencyCounter), m.latency)
	expvar.Publish(key(kind, DurationCounter), m.duration)
	return m
}

func key(kind, counter string) string {
	return fmt.Sprintf("%s.%s.%s", nodesLabel, kind, counter)
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
